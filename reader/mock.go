package reader

import (
	"sync"

	"github.com/matgreaves/evtrace/evtspec"
)

// mockQueueCapacity bounds how many injected events Run can buffer
// before Inject blocks; generous enough that tests never need to size it.
const mockQueueCapacity = 4096

// MockProcessor is a reusable test double sharing the file/realtime
// processors' callback shape: it accepts injected Events and replays them
// through onEvent, bracketed by session-start/session-end notifications,
// per §4.6. Useful for exercising an ExpiringCompositeCollection or a
// subscriber without standing up a real file or session.
type MockProcessor struct {
	onEvent         Callback
	onSessionStart  func()
	onSessionEnd    func(count int)
	stopWhenDrained bool

	queue    chan evtspec.Event
	stopCh   chan struct{}
	stopOnce sync.Once

	mu    sync.Mutex
	count int
}

// NewMockProcessor constructs a mock processor. stopWhenDrained, when
// true, makes Run return once the injection queue empties rather than
// waiting indefinitely for Stop.
func NewMockProcessor(onEvent Callback, onSessionStart func(), onSessionEnd func(count int), stopWhenDrained bool) *MockProcessor {
	return &MockProcessor{
		onEvent:         onEvent,
		onSessionStart:  onSessionStart,
		onSessionEnd:    onSessionEnd,
		stopWhenDrained: stopWhenDrained,
		queue:           make(chan evtspec.Event, mockQueueCapacity),
		stopCh:          make(chan struct{}),
	}
}

// Inject enqueues events for delivery. Safe to call before or during Run.
func (m *MockProcessor) Inject(events ...evtspec.Event) {
	for _, ev := range events {
		m.queue <- ev
	}
}

// Run fires the session-start callback, then delivers queued events one
// at a time through onEvent. If stopWhenDrained is set, Run returns as
// soon as the queue is empty; otherwise it blocks until Stop is called,
// then fires session-end with the count of events delivered.
func (m *MockProcessor) Run() {
	if m.onSessionStart != nil {
		m.onSessionStart()
	}

	delivered := 0
	deliver := func(ev evtspec.Event) {
		if m.onEvent != nil {
			m.onEvent(ev)
		}
		delivered++
		m.mu.Lock()
		m.count = delivered
		m.mu.Unlock()
	}

loop:
	for {
		if m.stopWhenDrained {
			select {
			case ev := <-m.queue:
				deliver(ev)
				continue
			default:
				break loop
			}
		}
		select {
		case ev := <-m.queue:
			deliver(ev)
		case <-m.stopCh:
			break loop
		}
	}

	if m.onSessionEnd != nil {
		m.onSessionEnd(delivered)
	}
}

// Stop ends a running Run loop at the next opportunity. Safe to call
// multiple times or before Run starts.
func (m *MockProcessor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Count returns the number of events delivered so far.
func (m *MockProcessor) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}
