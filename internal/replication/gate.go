// Package replication orders remote updates with per-channel last-write-wins
// watermarks.
package replication

import (
	"sync"
	"time"

	"mutant-life/internal/sims/life"
)

// Timestamped pairs a payload with its origin time in milliseconds since the
// Unix epoch.
type Timestamped[T any] struct {
	Value     T
	Timestamp int64
}

// Target receives accepted remote updates.
type Target interface {
	ReplaceState(life.State) error
	ReplaceConfig(life.Config) error
}

// Gate admits a remote update only when its timestamp is strictly newer than
// the last one accepted on the same channel. State and settings keep
// independent watermarks. Gate is not safe for concurrent use.
type Gate struct {
	target  Target
	restart func()

	lastState    int64
	lastSettings int64
}

// NewGate builds a gate writing into target. restart, if non-nil, runs after
// every accepted settings update.
func NewGate(target Target, restart func()) *Gate {
	return &Gate{target: target, restart: restart}
}

// MergeState applies in when it is newer than every state accepted before.
// A stale update reports false with no error. A rejected payload leaves the
// watermark unchanged.
func (g *Gate) MergeState(in Timestamped[life.State]) (bool, error) {
	if in.Timestamp <= g.lastState {
		return false, nil
	}
	if err := g.target.ReplaceState(in.Value); err != nil {
		return false, err
	}
	g.lastState = in.Timestamp
	return true, nil
}

// MergeSettings applies in when it is newer than every settings update
// accepted before, then restarts the scheduler. It never reseeds.
func (g *Gate) MergeSettings(in Timestamped[life.Config]) (bool, error) {
	if in.Timestamp <= g.lastSettings {
		return false, nil
	}
	if err := g.target.ReplaceConfig(in.Value); err != nil {
		return false, err
	}
	g.lastSettings = in.Timestamp
	if g.restart != nil {
		g.restart()
	}
	return true, nil
}

// Watermarks returns the last accepted state and settings timestamps.
func (g *Gate) Watermarks() (state, settings int64) {
	return g.lastState, g.lastSettings
}

// Clock reports the current time.
type Clock func() time.Time

// Stamper issues strictly increasing millisecond timestamps for outbound
// updates, even when the clock stalls or steps backwards.
type Stamper struct {
	mu    sync.Mutex
	clock Clock
	last  int64
}

// NewStamper returns a stamper reading clock; nil uses time.Now.
func NewStamper(clock Clock) *Stamper {
	if clock == nil {
		clock = time.Now
	}
	return &Stamper{clock: clock}
}

// Next returns a timestamp greater than every previous one.
func (s *Stamper) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := s.clock().UnixMilli()
	if ms <= s.last {
		ms = s.last + 1
	}
	s.last = ms
	return ms
}
