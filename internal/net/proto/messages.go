// Package proto defines the JSON messages exchanged with the relay.
package proto

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformedMessage reports a payload that is not valid for its type.
	ErrMalformedMessage = errors.New("malformed message")
	// ErrUnknownType reports a message whose type discriminator is not handled.
	ErrUnknownType = errors.New("unknown message type")
)

// Message type discriminators.
const (
	TypeJoin             = "join"
	TypePeersList        = "peers_list"
	TypePeerJoined       = "peer_joined"
	TypePeerLeft         = "peer_left"
	TypeGameState        = "game_state"
	TypeSettings         = "settings"
	TypeAnnounce         = "announce"
	TypeAnnounceResponse = "announce_response"
	TypeScrape           = "scrape"
	TypeScrapeResponse   = "scrape_response"
)

// AnnounceInterval is the re-announce period, in seconds, handed to tracker
// clients.
const AnnounceInterval = 60

// Message is implemented by every decoded message.
type Message interface {
	MessageType() string
}

// Envelope carries only the type discriminator.
type Envelope struct {
	Type string `json:"type"`
}

// Join asks the relay to place the sender in a room.
type Join struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// PeersList answers a join with the assigned id and the other members.
type PeersList struct {
	Type   string   `json:"type"`
	PeerID string   `json:"peerId"`
	Peers  []string `json:"peers"`
}

// PeerEvent announces a member joining or leaving a room.
type PeerEvent struct {
	Type   string `json:"type"`
	PeerID string `json:"peerId"`
}

// StatePayload is a grid snapshot as [y][x] booleans.
type StatePayload struct {
	Grid       [][]bool `json:"grid"`
	Generation int      `json:"generation"`
	Timestamp  int64    `json:"timestamp"`
}

// GameState broadcasts a snapshot to the room.
type GameState struct {
	Type  string       `json:"type"`
	State StatePayload `json:"state"`
}

// SettingsPayload carries the shared simulation settings. UpdateFrequency is
// in milliseconds and MutationChance in percent.
type SettingsPayload struct {
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	UpdateFrequency float64 `json:"updateFrequency"`
	MutationChance  float64 `json:"mutationChance"`
	MutationType    string  `json:"mutationType,omitempty"`
	EdgeLooping     bool    `json:"edgeLooping"`
	Timestamp       int64   `json:"timestamp"`
}

// Settings broadcasts a settings change to the room.
type Settings struct {
	Type     string          `json:"type"`
	Settings SettingsPayload `json:"settings"`
}

// Announce registers a tracker peer in a swarm.
type Announce struct {
	Type       string `json:"type"`
	InfoHash   string `json:"info_hash"`
	PeerID     string `json:"peer_id"`
	Port       int    `json:"port"`
	Uploaded   int64  `json:"uploaded"`
	Downloaded int64  `json:"downloaded"`
	Left       int64  `json:"left"`
}

// TrackerPeer is one swarm entry in an announce response.
type TrackerPeer struct {
	PeerID string `json:"peer_id"`
	IP     string `json:"ip"`
	Port   int    `json:"port"`
}

// AnnounceResponse lists the other peers of a swarm.
type AnnounceResponse struct {
	Type     string        `json:"type"`
	Interval int           `json:"interval"`
	Peers    []TrackerPeer `json:"peers"`
}

// Scrape requests swarm statistics.
type Scrape struct {
	Type     string `json:"type"`
	InfoHash string `json:"info_hash"`
}

// ScrapeFile holds the statistics of a single swarm.
type ScrapeFile struct {
	Complete   int   `json:"complete"`
	Incomplete int   `json:"incomplete"`
	Downloaded int64 `json:"downloaded"`
}

// ScrapeResponse answers a scrape keyed by info hash.
type ScrapeResponse struct {
	Type  string                `json:"type"`
	Files map[string]ScrapeFile `json:"files"`
}

func (m *Join) MessageType() string             { return TypeJoin }
func (m *PeersList) MessageType() string        { return TypePeersList }
func (m *PeerEvent) MessageType() string        { return m.Type }
func (m *GameState) MessageType() string        { return TypeGameState }
func (m *Settings) MessageType() string         { return TypeSettings }
func (m *Announce) MessageType() string         { return TypeAnnounce }
func (m *AnnounceResponse) MessageType() string { return TypeAnnounceResponse }
func (m *Scrape) MessageType() string           { return TypeScrape }
func (m *ScrapeResponse) MessageType() string   { return TypeScrapeResponse }

// NewJoin builds a join request.
func NewJoin(room string) *Join { return &Join{Type: TypeJoin, RoomID: room} }

// NewPeersList builds a join reply. A nil peer slice encodes as [].
func NewPeersList(self string, peers []string) *PeersList {
	if peers == nil {
		peers = []string{}
	}
	return &PeersList{Type: TypePeersList, PeerID: self, Peers: peers}
}

// NewPeerJoined builds a membership notification.
func NewPeerJoined(id string) *PeerEvent { return &PeerEvent{Type: TypePeerJoined, PeerID: id} }

// NewPeerLeft builds a departure notification.
func NewPeerLeft(id string) *PeerEvent { return &PeerEvent{Type: TypePeerLeft, PeerID: id} }

// NewGameState wraps a state payload.
func NewGameState(p StatePayload) *GameState { return &GameState{Type: TypeGameState, State: p} }

// NewSettings wraps a settings payload.
func NewSettings(p SettingsPayload) *Settings { return &Settings{Type: TypeSettings, Settings: p} }

// PeekType extracts the type discriminator without decoding the body.
func PeekType(data []byte) (string, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if env.Type == "" {
		return "", fmt.Errorf("%w: missing type", ErrMalformedMessage)
	}
	return env.Type, nil
}

// Decode parses a message according to its type discriminator.
func Decode(data []byte) (Message, error) {
	typ, err := PeekType(data)
	if err != nil {
		return nil, err
	}
	var msg Message
	switch typ {
	case TypeJoin:
		msg = &Join{}
	case TypePeersList:
		msg = &PeersList{}
	case TypePeerJoined, TypePeerLeft:
		msg = &PeerEvent{}
	case TypeGameState:
		msg = &GameState{}
	case TypeSettings:
		msg = &Settings{}
	case TypeAnnounce:
		msg = &Announce{}
	case TypeAnnounceResponse:
		msg = &AnnounceResponse{}
	case TypeScrape:
		msg = &Scrape{}
	case TypeScrapeResponse:
		msg = &ScrapeResponse{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedMessage, typ, err)
	}
	return msg, nil
}

// Encode serializes a message.
func Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
