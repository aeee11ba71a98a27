package manager

import (
	"context"

	"github.com/matgreaves/evtrace/evtid"
)

// activityIDKey is the context key for the activity-ID slot. §4.4 describes
// this as a thread-local GUID; Go has no goroutine-local storage, so the
// slot is carried explicitly through context.Context, the same mechanism
// connect.WithLogWriter/LogWriter uses for the manager's diagnostics log
// writer. Callers that want the set/clear/swap semantics across a call
// chain pass the returned context onward exactly as they would a logger.
type activityIDKey struct{}

// WithActivityID returns a context carrying id as the active activity-ID.
// The zero GUID clears the slot, matching §3's "all-zero = none" rule.
func WithActivityID(ctx context.Context, id evtid.GUID) context.Context {
	return context.WithValue(ctx, activityIDKey{}, id)
}

// ActivityID returns the activity-ID carried by ctx, or the zero GUID if
// none was set.
func ActivityID(ctx context.Context) evtid.GUID {
	if id, ok := ctx.Value(activityIDKey{}).(evtid.GUID); ok {
		return id
	}
	return evtid.Nil
}

// ClearActivityID returns a context with the activity-ID slot cleared.
func ClearActivityID(ctx context.Context) context.Context {
	return WithActivityID(ctx, evtid.Nil)
}

// NewActivityID generates a random GUID, installs it as ctx's activity-ID,
// and returns both the new context and the generated id.
func NewActivityID(ctx context.Context) (context.Context, evtid.GUID) {
	id := evtid.New()
	return WithActivityID(ctx, id), id
}

// SwapActivityID installs next as ctx's activity-ID and returns the new
// context along with whatever activity-ID ctx carried before the swap.
func SwapActivityID(ctx context.Context, next evtid.GUID) (context.Context, evtid.GUID) {
	prev := ActivityID(ctx)
	return WithActivityID(ctx, next), prev
}
