package relay

import (
	"sync"

	"mutant-life/internal/net/proto"
)

type swarmEntry struct {
	owner      *Peer
	peerID     string
	port       int
	downloaded int64
}

// Tracker keeps announce swarms keyed by info hash.
type Tracker struct {
	mu     sync.Mutex
	swarms map[string][]*swarmEntry
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{swarms: make(map[string][]*swarmEntry)}
}

// Announce records or refreshes the announcing peer and lists the others.
func (t *Tracker) Announce(from *Peer, a *proto.Announce) *proto.AnnounceResponse {
	t.mu.Lock()
	defer t.mu.Unlock()

	swarm := t.swarms[a.InfoHash]
	var entry *swarmEntry
	for _, e := range swarm {
		if e.peerID == a.PeerID {
			entry = e
			break
		}
	}
	if entry == nil {
		entry = &swarmEntry{peerID: a.PeerID}
		swarm = append(swarm, entry)
		t.swarms[a.InfoHash] = swarm
	}
	entry.owner = from
	entry.port = a.Port
	entry.downloaded = a.Downloaded

	peers := make([]proto.TrackerPeer, 0, len(swarm))
	for _, e := range swarm {
		if e.peerID == a.PeerID {
			continue
		}
		ip := ""
		if e.owner != nil {
			ip = e.owner.Addr
		}
		peers = append(peers, proto.TrackerPeer{PeerID: e.peerID, IP: ip, Port: e.port})
	}
	return &proto.AnnounceResponse{
		Type:     proto.TypeAnnounceResponse,
		Interval: proto.AnnounceInterval,
		Peers:    peers,
	}
}

// Scrape summarizes the swarm for hash. Unknown hashes report zeros.
func (t *Tracker) Scrape(hash string) *proto.ScrapeResponse {
	t.mu.Lock()
	defer t.mu.Unlock()

	swarm := t.swarms[hash]
	var downloaded int64
	for _, e := range swarm {
		downloaded += e.downloaded
	}
	return &proto.ScrapeResponse{
		Type: proto.TypeScrapeResponse,
		Files: map[string]proto.ScrapeFile{
			hash: {Complete: len(swarm), Incomplete: 0, Downloaded: downloaded},
		},
	}
}

// Drop removes every entry announced over p's connection and deletes swarms
// left empty.
func (t *Tracker) Drop(p *Peer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for hash, swarm := range t.swarms {
		kept := swarm[:0]
		for _, e := range swarm {
			if e.owner != p {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(t.swarms, hash)
			continue
		}
		t.swarms[hash] = kept
	}
}

// Swarms reports the number of active swarms.
func (t *Tracker) Swarms() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.swarms)
}
