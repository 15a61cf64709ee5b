package relay

import (
	"errors"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"mutant-life/internal/net/proto"
)

// DefaultReadLimit bounds a single inbound frame. It fits the game_state of a
// grid of roughly 800x800 cells.
const DefaultReadLimit = 4 << 20

// Config configures a Relay. Nil fields get fresh defaults.
type Config struct {
	Registry *Registry
	Tracker  *Tracker
	Logger   logrus.FieldLogger
	// ReadLimit is the largest frame in bytes a peer may send; larger frames
	// close the connection. Zero means DefaultReadLimit.
	ReadLimit int64
}

// Stats counts relay traffic.
type Stats struct {
	Connections atomic.Uint64
	Messages    atomic.Uint64
	Forwarded   atomic.Uint64
	Malformed   atomic.Uint64
	WriteErrors atomic.Uint64
}

// Diagnostics is a point-in-time view of the relay.
type Diagnostics struct {
	Peers       int            `json:"peers"`
	Rooms       map[string]int `json:"rooms"`
	Swarms      int            `json:"swarms"`
	Connections uint64         `json:"connections"`
	Messages    uint64         `json:"messages"`
	Forwarded   uint64         `json:"forwarded"`
	Malformed   uint64         `json:"malformed"`
	WriteErrors uint64         `json:"writeErrors"`
}

// Relay fans room messages out between websocket peers.
type Relay struct {
	registry  *Registry
	tracker   *Tracker
	log       logrus.FieldLogger
	readLimit int64
	upgrader  websocket.Upgrader
	stats     Stats
}

// New builds a relay.
func New(cfg Config) *Relay {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	tracker := cfg.Tracker
	if tracker == nil {
		tracker = NewTracker()
	}
	readLimit := cfg.ReadLimit
	if readLimit <= 0 {
		readLimit = DefaultReadLimit
	}
	return &Relay{
		registry:  registry,
		tracker:   tracker,
		readLimit: readLimit,
		log:       logger.WithField("component", "relay"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Registry exposes the peer registry.
func (r *Relay) Registry() *Registry { return r.registry }

// ServeHTTP upgrades the request and serves the connection until it closes.
func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	r.Serve(conn, remoteHost(req.RemoteAddr))
}

// Serve runs the read loop for an upgraded connection.
func (r *Relay) Serve(conn *websocket.Conn, addr string) {
	defer conn.Close()
	conn.SetReadLimit(r.readLimit)
	p := r.Connect(conn, addr)
	defer r.Disconnect(p)
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				r.log.WithField("peer", p.ID).WithField("limit", r.readLimit).Warn("frame exceeds read limit")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.log.WithField("peer", p.ID).WithError(err).Warn("connection closed")
			}
			return
		}
		r.Dispatch(p, payload)
	}
}

// Connect registers a new peer.
func (r *Relay) Connect(conn Sender, addr string) *Peer {
	p := r.registry.Add(conn, addr)
	r.stats.Connections.Add(1)
	r.log.WithFields(logrus.Fields{"peer": p.ID, "addr": addr}).Info("peer connected")
	return p
}

// Disconnect removes p from its room and swarms and tells the remaining room
// members.
func (r *Relay) Disconnect(p *Peer) {
	room, remaining := r.registry.Remove(p)
	r.tracker.Drop(p)
	r.log.WithFields(logrus.Fields{"peer": p.ID, "room": room}).Info("peer disconnected")
	if room == "" {
		return
	}
	r.notify(remaining, proto.NewPeerLeft(p.ID))
}

// Dispatch handles one inbound frame from p. Failures are logged and never
// terminate the connection.
func (r *Relay) Dispatch(p *Peer, data []byte) {
	r.stats.Messages.Add(1)
	entry := r.log.WithField("peer", p.ID)

	typ, err := proto.PeekType(data)
	if err != nil {
		r.stats.Malformed.Add(1)
		entry.WithError(err).Debug("dropping message")
		return
	}

	switch typ {
	case proto.TypeJoin:
		msg, err := proto.Decode(data)
		join, ok := msg.(*proto.Join)
		if err != nil || !ok || join.RoomID == "" {
			r.stats.Malformed.Add(1)
			entry.WithError(err).Debug("dropping join without room")
			return
		}
		r.join(p, join.RoomID)
	case proto.TypeGameState, proto.TypeSettings:
		room := r.registry.RoomOf(p)
		if room == "" {
			entry.WithField("type", typ).Debug("dropping broadcast from peer outside any room")
			return
		}
		members := r.registry.Members(room, p)
		for _, m := range members {
			r.send(m, data)
		}
		r.stats.Forwarded.Add(uint64(len(members)))
	case proto.TypeAnnounce:
		msg, err := proto.Decode(data)
		if err != nil {
			r.stats.Malformed.Add(1)
			entry.WithError(err).Debug("dropping announce")
			return
		}
		r.reply(p, r.tracker.Announce(p, msg.(*proto.Announce)))
	case proto.TypeScrape:
		msg, err := proto.Decode(data)
		if err != nil {
			r.stats.Malformed.Add(1)
			entry.WithError(err).Debug("dropping scrape")
			return
		}
		r.reply(p, r.tracker.Scrape(msg.(*proto.Scrape).InfoHash))
	default:
		entry.WithField("type", typ).Debug("unknown message type")
	}
}

// Diagnostics snapshots the relay counters.
func (r *Relay) Diagnostics() Diagnostics {
	return Diagnostics{
		Peers:       r.registry.PeerCount(),
		Rooms:       r.registry.Rooms(),
		Swarms:      r.tracker.Swarms(),
		Connections: r.stats.Connections.Load(),
		Messages:    r.stats.Messages.Load(),
		Forwarded:   r.stats.Forwarded.Load(),
		Malformed:   r.stats.Malformed.Load(),
		WriteErrors: r.stats.WriteErrors.Load(),
	}
}

func (r *Relay) join(p *Peer, room string) {
	res := r.registry.Join(p, room)
	r.log.WithFields(logrus.Fields{"peer": p.ID, "room": room, "members": len(res.Members)}).Info("peer joined room")
	if res.Previous != "" {
		r.notify(res.PreviousMembers, proto.NewPeerLeft(p.ID))
	}
	r.reply(p, proto.NewPeersList(p.ID, peerIDs(res.Members)))
	r.notify(res.Members, proto.NewPeerJoined(p.ID))
}

func (r *Relay) notify(peers []*Peer, msg proto.Message) {
	if len(peers) == 0 {
		return
	}
	data, err := proto.Encode(msg)
	if err != nil {
		r.log.WithError(err).Error("encode notification")
		return
	}
	for _, m := range peers {
		r.send(m, data)
	}
}

func (r *Relay) reply(p *Peer, msg proto.Message) {
	data, err := proto.Encode(msg)
	if err != nil {
		r.log.WithError(err).Error("encode reply")
		return
	}
	r.send(p, data)
}

func (r *Relay) send(p *Peer, data []byte) {
	if err := p.Send(data); err != nil {
		r.stats.WriteErrors.Add(1)
		r.log.WithField("peer", p.ID).WithError(err).Warn("write failed")
	}
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
