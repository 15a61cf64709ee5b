// Package session runs a simulation engine inside a single goroutine and
// schedules its steps.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"mutant-life/internal/core"
	"mutant-life/internal/replication"
	"mutant-life/internal/sims/life"
)

// ErrClosed is returned by operations issued after Run has returned.
var ErrClosed = errors.New("session closed")

// Origin tells listeners what caused a change.
type Origin int

const (
	// OriginStep marks a snapshot produced by advancing a generation.
	OriginStep Origin = iota
	// OriginLocal marks a change made by a local control.
	OriginLocal
	// OriginRemote marks a change accepted from a peer.
	OriginRemote
)

func (o Origin) String() string {
	switch o {
	case OriginStep:
		return "step"
	case OriginLocal:
		return "local"
	case OriginRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Listener observes the loop. Callbacks run on the loop goroutine and must not
// call back into the loop.
type Listener interface {
	StateChanged(snap life.Snapshot, origin Origin)
	SettingsChanged(cfg life.Config, origin Origin)
}

// Config configures a Loop.
type Config struct {
	Engine    life.Config
	Seed      string
	RNG       *core.RNG
	AutoStart bool
	Logger    logrus.FieldLogger
}

// Loop owns an engine and serializes every operation on it. Steps are
// scheduled with a timer armed after the previous step completes, so steps
// never overlap.
type Loop struct {
	engine *life.Engine
	gate   *replication.Gate
	log    logrus.FieldLogger

	cmds chan func()
	done chan struct{}

	timer  *time.Timer
	timerC <-chan time.Time

	latest atomic.Pointer[life.Snapshot]

	mu        sync.Mutex
	listeners []Listener
}

// New builds a loop around a freshly seeded engine. Call Run to start
// processing.
func New(cfg Config) (*Loop, error) {
	engine, err := life.New(cfg.Engine, cfg.Seed, cfg.RNG)
	if err != nil {
		return nil, err
	}
	if cfg.AutoStart {
		engine.Start()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	l := &Loop{
		engine: engine,
		log:    logger.WithField("component", "session"),
		cmds:   make(chan func()),
		done:   make(chan struct{}),
	}
	l.gate = replication.NewGate(engine, l.restart)
	snap := engine.Snapshot()
	l.latest.Store(&snap)
	return l, nil
}

// AddListener registers a listener for subsequent changes.
func (l *Loop) AddListener(ln Listener) {
	l.mu.Lock()
	l.listeners = append(l.listeners, ln)
	l.mu.Unlock()
}

// Latest returns the most recently published snapshot without blocking.
func (l *Loop) Latest() life.Snapshot {
	return *l.latest.Load()
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Run processes operations and scheduled steps until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	defer l.disarm()
	if l.engine.Running() {
		l.arm()
	}
	l.log.WithField("running", l.engine.Running()).Info("session loop started")
	for {
		select {
		case <-ctx.Done():
			l.log.Info("session loop stopped")
			return nil
		case fn := <-l.cmds:
			fn()
		case <-l.timerC:
			l.timer, l.timerC = nil, nil
			if ctx.Err() != nil {
				l.log.Info("session loop stopped")
				return nil
			}
			l.tick()
		}
	}
}

// Start resumes scheduled stepping. Starting a running loop is a no-op.
func (l *Loop) Start(ctx context.Context) error {
	return l.do(ctx, func() {
		if l.engine.Running() {
			return
		}
		l.engine.Start()
		l.arm()
		l.publish(l.engine.Snapshot(), OriginLocal)
	})
}

// Stop halts scheduled stepping. Stopping a stopped loop is a no-op.
func (l *Loop) Stop(ctx context.Context) error {
	return l.do(ctx, func() {
		if !l.engine.Running() {
			return
		}
		l.engine.Stop()
		l.disarm()
		l.publish(l.engine.Snapshot(), OriginLocal)
	})
}

// Step advances exactly one generation regardless of the running state.
func (l *Loop) Step(ctx context.Context) (life.Snapshot, error) {
	var snap life.Snapshot
	err := l.do(ctx, func() {
		snap = l.engine.Step()
		l.publish(snap, OriginStep)
	})
	return snap, err
}

// Reseed replaces the grid with the named layout and resets the generation.
func (l *Loop) Reseed(ctx context.Context, name string) error {
	var opErr error
	err := l.do(ctx, func() {
		if opErr = l.engine.Reseed(name); opErr != nil {
			return
		}
		l.log.WithField("seed", name).Info("reseeded")
		l.publish(l.engine.Snapshot(), OriginLocal)
	})
	if err != nil {
		return err
	}
	return opErr
}

// Apply installs a local configuration change. See life.Engine.Apply.
func (l *Loop) Apply(ctx context.Context, cfg life.Config, seed string) (bool, error) {
	var (
		reseeded bool
		opErr    error
	)
	err := l.do(ctx, func() {
		reseeded, opErr = l.engine.Apply(cfg, seed)
		if opErr != nil {
			return
		}
		l.restart()
		l.notifySettings(l.engine.Config(), OriginLocal)
		l.publish(l.engine.Snapshot(), OriginLocal)
	})
	if err != nil {
		return false, err
	}
	return reseeded, opErr
}

// MergeState offers a remote state to the replication gate.
func (l *Loop) MergeState(ctx context.Context, in replication.Timestamped[life.State]) (bool, error) {
	var (
		applied bool
		opErr   error
	)
	err := l.do(ctx, func() {
		applied, opErr = l.gate.MergeState(in)
		if opErr != nil || !applied {
			l.log.WithField("timestamp", in.Timestamp).WithError(opErr).Debug("remote state not applied")
			return
		}
		l.publish(l.engine.Snapshot(), OriginRemote)
	})
	if err != nil {
		return false, err
	}
	return applied, opErr
}

// MergeSettings offers remote settings to the replication gate. Accepted
// settings restart the scheduler with the new interval.
func (l *Loop) MergeSettings(ctx context.Context, in replication.Timestamped[life.Config]) (bool, error) {
	var (
		applied bool
		opErr   error
	)
	err := l.do(ctx, func() {
		applied, opErr = l.gate.MergeSettings(in)
		if opErr != nil || !applied {
			l.log.WithField("timestamp", in.Timestamp).WithError(opErr).Debug("remote settings not applied")
			return
		}
		l.notifySettings(l.engine.Config(), OriginRemote)
		l.publish(l.engine.Snapshot(), OriginRemote)
	})
	if err != nil {
		return false, err
	}
	return applied, opErr
}

// Snapshot returns the engine state as seen by the loop goroutine.
func (l *Loop) Snapshot(ctx context.Context) (life.Snapshot, error) {
	var snap life.Snapshot
	err := l.do(ctx, func() { snap = l.engine.Snapshot() })
	return snap, err
}

// Watermarks reports the replication gate watermarks.
func (l *Loop) Watermarks(ctx context.Context) (state, settings int64, err error) {
	err = l.do(ctx, func() { state, settings = l.gate.Watermarks() })
	return state, settings, err
}

func (l *Loop) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case l.cmds <- func() { fn(); close(finished) }:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) tick() {
	if !l.engine.Running() {
		return
	}
	snap := l.engine.Step()
	l.log.WithFields(logrus.Fields{
		"generation": snap.Generation,
		"living":     snap.Living,
	}).Trace("step")
	l.publish(snap, OriginStep)
	if l.engine.Running() {
		l.arm()
	}
}

// restart disarms any pending step and, when running, arms a new timer using
// the current interval.
func (l *Loop) restart() {
	l.disarm()
	if !l.engine.Running() {
		return
	}
	l.arm()
	l.log.WithField("interval", l.engine.Config().Interval()).Info("scheduler restarted")
}

func (l *Loop) arm() {
	l.disarm()
	l.timer = time.NewTimer(l.engine.Config().Interval())
	l.timerC = l.timer.C
}

func (l *Loop) disarm() {
	if l.timer == nil {
		return
	}
	l.timer.Stop()
	l.timer, l.timerC = nil, nil
}

func (l *Loop) snapshotListeners() []Listener {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Listener, len(l.listeners))
	copy(out, l.listeners)
	return out
}

func (l *Loop) publish(snap life.Snapshot, origin Origin) {
	l.latest.Store(&snap)
	for _, ln := range l.snapshotListeners() {
		ln.StateChanged(snap, origin)
	}
}

func (l *Loop) notifySettings(cfg life.Config, origin Origin) {
	for _, ln := range l.snapshotListeners() {
		ln.SettingsChanged(cfg, origin)
	}
}
