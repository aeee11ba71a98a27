package manager

import (
	"sync"
	"time"
)

const (
	// MinRotationInterval is the floor §4.3 places on rotation_interval_s.
	MinRotationInterval = 60 * time.Second

	// MinDemandRotationDelta throttles Manager.RotateFiles: a second call
	// before this much time has passed since the last one is a no-op, per
	// §4.3's "Manual rotation" rule. It must not exceed MinRotationInterval.
	MinDemandRotationDelta = 30 * time.Second
)

// rotationThrottle tracks the last time a manual rotation actually ran.
type rotationThrottle struct {
	mu   sync.Mutex
	last time.Time
}

// allow reports whether a manual rotation may proceed at now, and if so
// records now as the new last-rotation time. Calling it a second time
// before MinDemandRotationDelta has elapsed returns false and must not
// perform any I/O, per §4.3.
func (t *rotationThrottle) allow(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.last.IsZero() && now.Sub(t.last) < MinDemandRotationDelta {
		return false
	}
	t.last = now
	return true
}
