// Package relay implements the room-based websocket relay and the tracker
// compatibility endpoints.
package relay

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Sender writes a single websocket frame. *websocket.Conn satisfies it.
type Sender interface {
	WriteMessage(messageType int, data []byte) error
}

// Peer is a connected relay client.
type Peer struct {
	ID   string
	Addr string

	mu   sync.Mutex
	conn Sender
}

// Send writes a text frame. Writes to the same peer are serialized.
func (p *Peer) Send(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

// JoinResult describes the membership change caused by a join.
type JoinResult struct {
	// Previous is the room the peer left, if any.
	Previous string
	// PreviousMembers are the members remaining in Previous.
	PreviousMembers []*Peer
	// Members are the other members of the joined room.
	Members []*Peer
}

// Registry tracks peers and room membership for the lifetime of a relay.
type Registry struct {
	nextID atomic.Uint64

	mu     sync.Mutex
	peers  map[string]*Peer
	roomOf map[string]string
	rooms  map[string]map[string]*Peer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		peers:  make(map[string]*Peer),
		roomOf: make(map[string]string),
		rooms:  make(map[string]map[string]*Peer),
	}
}

// Add registers a connection and assigns it the next peer id.
func (r *Registry) Add(conn Sender, addr string) *Peer {
	p := &Peer{
		ID:   fmt.Sprintf("peer-%d", r.nextID.Add(1)),
		Addr: addr,
		conn: conn,
	}
	r.mu.Lock()
	r.peers[p.ID] = p
	r.mu.Unlock()
	return p
}

// Join places p in room, leaving its previous room first. Joining the room it
// is already in only reports the other members.
func (r *Registry) Join(p *Peer, room string) JoinResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res JoinResult
	if prev, ok := r.roomOf[p.ID]; ok && prev != room {
		res.Previous = prev
		res.PreviousMembers = r.leaveLocked(p, prev)
	}
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]*Peer)
		r.rooms[room] = members
	}
	res.Members = sortedExcept(members, p)
	members[p.ID] = p
	r.roomOf[p.ID] = room
	return res
}

// Remove forgets p and returns the room it was in with the remaining members.
// Empty rooms are deleted.
func (r *Registry) Remove(p *Peer) (string, []*Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, p.ID)
	room, ok := r.roomOf[p.ID]
	if !ok {
		return "", nil
	}
	return room, r.leaveLocked(p, room)
}

// RoomOf returns the room p has joined, or "".
func (r *Registry) RoomOf(p *Peer) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roomOf[p.ID]
}

// Members copies the members of room other than except.
func (r *Registry) Members(room string, except *Peer) []*Peer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedExcept(r.rooms[room], except)
}

// Rooms reports the member count of every room.
func (r *Registry) Rooms() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.rooms))
	for name, members := range r.rooms {
		out[name] = len(members)
	}
	return out
}

// PeerCount reports the number of connected peers.
func (r *Registry) PeerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.peers)
}

func (r *Registry) leaveLocked(p *Peer, room string) []*Peer {
	delete(r.roomOf, p.ID)
	members := r.rooms[room]
	delete(members, p.ID)
	if len(members) == 0 {
		delete(r.rooms, room)
		return nil
	}
	return sortedExcept(members, p)
}

func sortedExcept(members map[string]*Peer, except *Peer) []*Peer {
	out := make([]*Peer, 0, len(members))
	for _, m := range members {
		if m == except {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func peerIDs(peers []*Peer) []string {
	ids := make([]string, len(peers))
	for i, p := range peers {
		ids[i] = p.ID
	}
	return ids
}
