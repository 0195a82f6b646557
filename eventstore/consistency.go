package eventstore

import "context"

// ConsistencyLevel tells an engine whether a Query may be served by a replica.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary. Command handlers need it for read-decide-append.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows replica reads. Read-side projections use it.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key carrying the ConsistencyLevel.
const ConsistencyLevelKey contextKey = "eventstore.consistency_level"

// WithStrongConsistency marks ctx for primary reads.
//
//	ctx = eventstore.WithStrongConsistency(ctx)
//	events, maxSeq, err := store.Query(ctx, filter)
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency marks ctx as tolerant to slightly stale reads.
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// PreferEventualConsistency marks ctx for eventual consistency unless the caller already chose a level.
// Read-side handlers use it so a caller that just wrote can still ask for a primary read.
func PreferEventualConsistency(ctx context.Context) context.Context {
	if _, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return ctx
	}

	return WithEventualConsistency(ctx)
}

// GetConsistencyLevel returns the level stored in ctx, StrongConsistency if none is set.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
