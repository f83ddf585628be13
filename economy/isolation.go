package economy

import (
	"context"
	"fmt"
	"strings"
)

// IsolationLevel defines how strongly a store isolates concurrent transaction scopes.
// Exposing lost updates under weak isolation is what the workload is built for,
// so the level is a knob, not a fixed assumption.
type IsolationLevel int

const (
	// Serializable makes concurrent scopes behave as if they ran one after another.
	Serializable IsolationLevel = iota

	// ReadCommitted only shows committed data to reads, but two scopes may read the same
	// balance and both write back, losing one of the updates.
	ReadCommitted

	// ReadUncommitted applies writes immediately; Abort can not undo them.
	ReadUncommitted
)

// contextKey is a private type to prevent context key collisions.
type contextKey string

// IsolationLevelKey is the context key used to override the isolation level of a single scope.
const IsolationLevelKey contextKey = "economy.isolation_level"

// WithIsolationLevel returns a context that asks the store to run the next Start with the given level.
func WithIsolationLevel(ctx context.Context, level IsolationLevel) context.Context {
	return context.WithValue(ctx, IsolationLevelKey, level)
}

// GetIsolationLevel extracts the isolation level from the context, or returns the fallback.
func GetIsolationLevel(ctx context.Context, fallback IsolationLevel) IsolationLevel {
	if level, ok := ctx.Value(IsolationLevelKey).(IsolationLevel); ok {
		return level
	}

	return fallback
}

// ParseIsolationLevel parses the configuration spelling of an isolation level.
func ParseIsolationLevel(s string) (IsolationLevel, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "")) {
	case "serializable", "":
		return Serializable, nil
	case "readcommitted":
		return ReadCommitted, nil
	case "readuncommitted", "none":
		return ReadUncommitted, nil
	default:
		return Serializable, fmt.Errorf("unknown isolation level %q", s)
	}
}

// String provides a string representation of IsolationLevel for logging and debugging.
func (l IsolationLevel) String() string {
	switch l {
	case Serializable:
		return "serializable"
	case ReadCommitted:
		return "read_committed"
	case ReadUncommitted:
		return "read_uncommitted"
	default:
		return "unknown"
	}
}
