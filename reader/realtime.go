package reader

import (
	"context"
	"sync"
)

// RealtimeProcessor attaches to a live named session and delivers events
// through the configured callback until stopped, per §4.6.
type RealtimeProcessor struct {
	onEvent Callback

	mu       sync.Mutex
	stopCh   chan struct{}
	stopOnce *sync.Once
}

// NewRealtimeProcessor constructs a processor that will deliver admitted
// events through onEvent once attached and started.
func NewRealtimeProcessor(onEvent Callback) *RealtimeProcessor {
	return &RealtimeProcessor{onEvent: onEvent}
}

// CreateProcessingTask attaches to the named session and starts draining
// it in the background, returning a handle whose Done channel closes when
// StopProcessing is called (or the session is closed). If the session
// already exists and is attached, reclaim controls whether this call may
// take it over or must fail with a Cancelled error, per §4.6.
func (p *RealtimeProcessor) CreateProcessingTask(ctx context.Context, sessionName string, reclaim bool) (*ProcessingTask, error) {
	s, err := defaultRegistry.openOrReclaim(sessionName, reclaim)
	if err != nil {
		return nil, err
	}

	stopCh := make(chan struct{})
	stopOnce := &sync.Once{}
	p.mu.Lock()
	p.stopCh = stopCh
	p.stopOnce = stopOnce
	p.mu.Unlock()

	s.mu.Lock()
	s.attached = true
	s.mu.Unlock()

	done := make(chan struct{})
	go p.drain(ctx, s, stopCh, done)

	return &ProcessingTask{done: done}, nil
}

func (p *RealtimeProcessor) drain(ctx context.Context, s *session, stopCh, done chan struct{}) {
	defer close(done)
	defer func() {
		s.mu.Lock()
		s.attached = false
		s.mu.Unlock()
	}()
	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				return
			}
			if p.onEvent != nil {
				p.onEvent(ev)
			}
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		}
	}
}

// StopProcessing ends draining. The task's Done channel returned by
// CreateProcessingTask closes once the background goroutine observes the
// stop signal.
func (p *RealtimeProcessor) StopProcessing() {
	p.mu.Lock()
	stopCh, once := p.stopCh, p.stopOnce
	p.mu.Unlock()
	if stopCh != nil {
		once.Do(func() { close(stopCh) })
	}
}

// ProcessingTask is the handle CreateProcessingTask returns.
type ProcessingTask struct {
	done chan struct{}
}

// Done returns a channel that closes when the task completes, whether
// because StopProcessing was called or the session ended.
func (t *ProcessingTask) Done() <-chan struct{} { return t.done }
