package peer

import (
	"fmt"

	"mutant-life/internal/core"
	"mutant-life/internal/net/proto"
	"mutant-life/internal/replication"
	"mutant-life/internal/sims/life"
)

// EncodeState converts a snapshot to its wire form.
func EncodeState(snap life.Snapshot, ts int64) proto.StatePayload {
	return proto.StatePayload{
		Grid:       snap.Grid.Rows(),
		Generation: snap.Generation,
		Timestamp:  ts,
	}
}

// DecodeState rebuilds a timestamped state. The grid takes the given edge
// policy since the wire form does not carry one.
func DecodeState(p proto.StatePayload, edge core.EdgePolicy) (replication.Timestamped[life.State], error) {
	var out replication.Timestamped[life.State]
	grid, err := core.GridFromRows(p.Grid, edge)
	if err != nil {
		return out, fmt.Errorf("%w: %w", proto.ErrMalformedMessage, err)
	}
	if p.Generation < 0 {
		return out, fmt.Errorf("%w: negative generation %d", proto.ErrMalformedMessage, p.Generation)
	}
	out.Value = life.State{Grid: grid, Generation: p.Generation}
	out.Timestamp = p.Timestamp
	return out, nil
}

// EncodeSettings converts a configuration to its wire form.
func EncodeSettings(cfg life.Config, ts int64) proto.SettingsPayload {
	return proto.SettingsPayload{
		Width:           cfg.Width,
		Height:          cfg.Height,
		UpdateFrequency: cfg.UpdateIntervalMs,
		MutationChance:  cfg.MutationChancePercent,
		MutationType:    string(cfg.MutationKind),
		EdgeLooping:     cfg.EdgePolicy.Looping(),
		Timestamp:       ts,
	}
}

// DecodeSettings rebuilds a timestamped configuration. A missing mutation
// type means single-cell mutation.
func DecodeSettings(p proto.SettingsPayload) (replication.Timestamped[life.Config], error) {
	var out replication.Timestamped[life.Config]
	kind, err := life.ParseMutationKind(p.MutationType)
	if err != nil {
		return out, fmt.Errorf("%w: %w", proto.ErrMalformedMessage, err)
	}
	cfg := life.Config{
		Width:                 p.Width,
		Height:                p.Height,
		UpdateIntervalMs:      p.UpdateFrequency,
		MutationChancePercent: p.MutationChance,
		MutationKind:          kind,
		EdgePolicy:            core.EdgePolicyFromLooping(p.EdgeLooping),
	}
	if err := cfg.Validate(); err != nil {
		return out, fmt.Errorf("%w: %w", proto.ErrMalformedMessage, err)
	}
	out.Value = cfg
	out.Timestamp = p.Timestamp
	return out, nil
}
