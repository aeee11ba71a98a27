// Package reader implements the consumption side of the runtime: file and
// realtime trace processors (§4.6) and the expiring composite-event
// collection correlation readers build on top of them (§4.5).
package reader

import (
	"container/list"
	"sync"
	"time"

	"github.com/matgreaves/evtrace/evtspec"
)

// Value is the capability set §4.5 requires of a composite-collection
// entry: it consumes events, reports whether it has reached a terminal
// state, and reports when it was last touched.
type Value interface {
	ProcessEvent(ev evtspec.Event)
	IsComplete() bool
	LastModified() time.Time
}

// ExpiringCompositeCollection correlates events into Value entries keyed
// by K, evicting entries that have gone untouched past their complete or
// incomplete age limit. Entries are kept in last-modified order (a
// container/list, moved to the back on every touch); a sweep walks the
// whole list.
type ExpiringCompositeCollection[K comparable, V Value] struct {
	mu sync.Mutex

	newValue func() V

	maxIncompleteAge time.Duration
	maxCompleteAge   time.Duration
	onIncompleteExp  func(V)
	onCompleteExp    func(V)

	order *list.List
	nodes map[K]*list.Element
}

type entry[K comparable, V Value] struct {
	key   K
	value V
}

// NewExpiringCompositeCollection constructs a collection. maxIncompleteAge
// and maxCompleteAge must be nonzero; a negative duration is treated as
// its absolute value, per §4.5. onIncompleteExpired/onCompleteExpired must
// be non-nil.
func NewExpiringCompositeCollection[K comparable, V Value](
	newValue func() V,
	maxIncompleteAge, maxCompleteAge time.Duration,
	onIncompleteExpired, onCompleteExpired func(V),
) (*ExpiringCompositeCollection[K, V], error) {
	const op = "ExpiringCompositeCollection.New"
	if maxIncompleteAge == 0 || maxCompleteAge == 0 {
		return nil, evtspec.NewError(evtspec.InvalidArgument, op, "max ages must not be zero", nil)
	}
	if onIncompleteExpired == nil || onCompleteExpired == nil {
		return nil, evtspec.NewError(evtspec.InvalidArgument, op, "expiry callbacks must not be nil", nil)
	}
	if maxIncompleteAge < 0 {
		maxIncompleteAge = -maxIncompleteAge
	}
	if maxCompleteAge < 0 {
		maxCompleteAge = -maxCompleteAge
	}
	return &ExpiringCompositeCollection[K, V]{
		newValue:         newValue,
		maxIncompleteAge: maxIncompleteAge,
		maxCompleteAge:   maxCompleteAge,
		onIncompleteExp:  onIncompleteExpired,
		onCompleteExp:    onCompleteExpired,
		order:            list.New(),
		nodes:            make(map[K]*list.Element),
	}, nil
}

// Process routes ev to the Value for key, allocating one if absent. It
// first lazily sweeps entries that have expired relative to ev.Timestamp,
// so expiry callbacks fire from event-time rather than wall-time.
func (c *ExpiringCompositeCollection[K, V]) Process(key K, ev evtspec.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepLocked(ev.Timestamp)

	el, ok := c.nodes[key]
	if !ok {
		v := c.newValue()
		el = c.order.PushBack(&entry[K, V]{key: key, value: v})
		c.nodes[key] = el
	}
	e := el.Value.(*entry[K, V])
	e.value.ProcessEvent(ev)
	c.order.MoveToBack(el)
}

// TryGet returns the current value for key, or the zero Value and false
// if absent.
func (c *ExpiringCompositeCollection[K, V]) TryGet(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.nodes[key]
	if !ok {
		var zero V
		return zero, false
	}
	return el.Value.(*entry[K, V]).value, true
}

// Expire evicts every entry whose age limit has elapsed as of now, firing
// the matching callback once per entry. An entry whose elapsed time
// exactly equals its limit is not expired; only strictly-beyond entries
// are evicted, per §4.5.
func (c *ExpiringCompositeCollection[K, V]) Expire(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked(now)
}

// sweepLocked walks every entry, evicting anything whose age limit has
// elapsed relative to asOf. Caller must hold c.mu. The list is kept in
// last-modified order for Process's O(1) touch, but complete and
// incomplete entries carry different limits, so a completed entry
// touched after an older incomplete one can expire first; the sweep
// cannot stop at the first live entry and must walk the whole list.
func (c *ExpiringCompositeCollection[K, V]) sweepLocked(asOf time.Time) {
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*entry[K, V])
		limit := c.maxIncompleteAge
		if e.value.IsComplete() {
			limit = c.maxCompleteAge
		}
		if asOf.Sub(e.value.LastModified()) > limit {
			c.evictLocked(el, e)
		}
		el = next
	}
}

// FlushComplete forcibly evicts and fires the complete-callback for every
// currently-complete entry regardless of age. It runs synchronously on
// the caller's goroutine, per §5.
func (c *ExpiringCompositeCollection[K, V]) FlushComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*entry[K, V])
		if e.value.IsComplete() {
			c.evictLocked(el, e)
		}
		el = next
	}
}

func (c *ExpiringCompositeCollection[K, V]) evictLocked(el *list.Element, e *entry[K, V]) {
	c.order.Remove(el)
	delete(c.nodes, e.key)
	if e.value.IsComplete() {
		c.onCompleteExp(e.value)
	} else {
		c.onIncompleteExp(e.value)
	}
}

// Len returns the number of entries currently tracked.
func (c *ExpiringCompositeCollection[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}
