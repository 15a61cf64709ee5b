// Package peer connects a session to a relay room.
package peer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"mutant-life/internal/net/proto"
	"mutant-life/internal/replication"
	"mutant-life/internal/session"
	"mutant-life/internal/sims/life"
)

// DefaultRoom is the room joined when none is configured.
const DefaultRoom = "game-of-life-room"

const defaultQueueSize = 64

// Session is the part of a session loop the client drives.
type Session interface {
	MergeState(ctx context.Context, in replication.Timestamped[life.State]) (bool, error)
	MergeSettings(ctx context.Context, in replication.Timestamped[life.Config]) (bool, error)
	Latest() life.Snapshot
}

// Config configures a Client.
type Config struct {
	URL       string
	Room      string
	Session   Session
	Stamper   *replication.Stamper
	Dialer    *websocket.Dialer
	QueueSize int
	Logger    logrus.FieldLogger
}

// Client relays a session's steps and settings to a room and merges what the
// other members send. Register it as a session listener.
type Client struct {
	cfg     Config
	log     logrus.FieldLogger
	stamper *replication.Stamper
	out     chan []byte
	dropped atomic.Uint64

	mu    sync.Mutex
	self  string
	peers map[string]struct{}
}

// New builds a client. Run connects it.
func New(cfg Config) *Client {
	if cfg.Room == "" {
		cfg.Room = DefaultRoom
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	stamper := cfg.Stamper
	if stamper == nil {
		stamper = replication.NewStamper(nil)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		cfg:     cfg,
		log:     logger.WithFields(logrus.Fields{"component": "peer", "room": cfg.Room}),
		stamper: stamper,
		out:     make(chan []byte, cfg.QueueSize),
		peers:   make(map[string]struct{}),
	}
}

// Run dials the relay, joins the room and pumps messages until ctx is
// cancelled or the connection fails.
func (c *Client) Run(ctx context.Context) error {
	conn, resp, err := c.cfg.Dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial relay %s: %w", c.cfg.URL, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()
	defer c.resetPeers()

	join, err := proto.Encode(proto.NewJoin(c.cfg.Room))
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, join); err != nil {
		return fmt.Errorf("join room: %w", err)
	}
	c.log.WithField("url", c.cfg.URL).Info("connected to relay")

	ctx, cancel := context.WithCancel(ctx)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop(ctx, cancel, conn)
	}()
	defer func() {
		cancel()
		<-writerDone
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read relay: %w", err)
		}
		c.Handle(ctx, data)
	}
}

func (c *Client) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			conn.Close()
			return
		case data := <-c.out:
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.WithError(err).Warn("write to relay failed")
				cancel()
				conn.Close()
				return
			}
		}
	}
}

// Handle processes one inbound relay message. Bad payloads are logged and
// dropped.
func (c *Client) Handle(ctx context.Context, data []byte) {
	msg, err := proto.Decode(data)
	if err != nil {
		c.log.WithError(err).Debug("dropping relay message")
		return
	}
	switch m := msg.(type) {
	case *proto.PeersList:
		c.mu.Lock()
		c.self = m.PeerID
		for _, id := range m.Peers {
			c.peers[id] = struct{}{}
		}
		c.mu.Unlock()
		c.log.WithFields(logrus.Fields{"peer": m.PeerID, "others": len(m.Peers)}).Info("joined room")
	case *proto.PeerEvent:
		c.mu.Lock()
		if m.Type == proto.TypePeerLeft {
			delete(c.peers, m.PeerID)
		} else {
			c.peers[m.PeerID] = struct{}{}
		}
		c.mu.Unlock()
		if m.Type == proto.TypePeerJoined {
			c.sendState(c.cfg.Session.Latest())
		}
	case *proto.GameState:
		in, err := DecodeState(m.State, c.cfg.Session.Latest().Config.EdgePolicy)
		if err != nil {
			c.log.WithError(err).Debug("dropping game state")
			return
		}
		if _, err := c.cfg.Session.MergeState(ctx, in); err != nil && !errors.Is(err, context.Canceled) {
			c.log.WithError(err).Debug("game state rejected")
		}
	case *proto.Settings:
		in, err := DecodeSettings(m.Settings)
		if err != nil {
			c.log.WithError(err).Debug("dropping settings")
			return
		}
		if _, err := c.cfg.Session.MergeSettings(ctx, in); err != nil && !errors.Is(err, context.Canceled) {
			c.log.WithError(err).Debug("settings rejected")
		}
	default:
		c.log.WithField("type", msg.MessageType()).Debug("ignoring relay message")
	}
}

// StateChanged broadcasts every stepped snapshot.
func (c *Client) StateChanged(snap life.Snapshot, origin session.Origin) {
	if origin != session.OriginStep {
		return
	}
	c.sendState(snap)
}

// SettingsChanged broadcasts settings changed locally.
func (c *Client) SettingsChanged(cfg life.Config, origin session.Origin) {
	if origin != session.OriginLocal {
		return
	}
	c.enqueue(proto.NewSettings(EncodeSettings(cfg, c.stamper.Next())))
}

// PeerID returns the id assigned by the relay, or "" before joining.
func (c *Client) PeerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.self
}

// Peers lists the other members of the room.
func (c *Client) Peers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.peers))
	for id := range c.peers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dropped reports how many outbound messages were discarded on a full queue.
func (c *Client) Dropped() uint64 { return c.dropped.Load() }

func (c *Client) sendState(snap life.Snapshot) {
	if snap.Grid == nil {
		return
	}
	c.enqueue(proto.NewGameState(EncodeState(snap, c.stamper.Next())))
}

func (c *Client) enqueue(msg proto.Message) {
	data, err := proto.Encode(msg)
	if err != nil {
		c.log.WithError(err).Error("encode outbound message")
		return
	}
	select {
	case c.out <- data:
	default:
		c.dropped.Add(1)
		c.log.WithField("type", msg.MessageType()).Debug("outbound queue full, dropping")
	}
}

func (c *Client) resetPeers() {
	c.mu.Lock()
	c.self = ""
	c.peers = make(map[string]struct{})
	c.mu.Unlock()
}
