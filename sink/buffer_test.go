package sink

import (
	"sync"
	"testing"

	"github.com/matgreaves/evtrace/evtspec"
)

// fakeBufSink is a Sink double that can block its Emit behind a gate so
// tests can control exactly when the drain goroutine is mid-call.
type fakeBufSink struct {
	mu      sync.Mutex
	emitted []evtspec.Event
	closed  bool

	gate     chan struct{}
	entered  chan struct{}
	enterOne sync.Once
}

func (f *fakeBufSink) ID() string         { return "fake" }
func (f *fakeBufSink) Kind() evtspec.Kind { return evtspec.KindText }

func (f *fakeBufSink) Emit(ev evtspec.Event) error {
	if f.entered != nil {
		f.enterOne.Do(func() { close(f.entered) })
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.emitted = append(f.emitted, ev)
	f.mu.Unlock()
	return nil
}

func (f *fakeBufSink) Close() error {
	f.closed = true
	return nil
}

func (f *fakeBufSink) Rotate() error { return nil }

func (f *fakeBufSink) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.emitted)
}

func TestBufferCapacity_FloorsAtSixtyFour(t *testing.T) {
	if got := bufferCapacity(0); got != 64 {
		t.Fatalf("bufferCapacity(0) = %d, want 64", got)
	}
	if got := bufferCapacity(-5); got != 64 {
		t.Fatalf("bufferCapacity(-5) = %d, want 64", got)
	}
}

func TestBufferCapacity_ScalesWithMB(t *testing.T) {
	small := bufferCapacity(1)
	large := bufferCapacity(8)
	if large <= small {
		t.Fatalf("bufferCapacity(8) = %d, want more than bufferCapacity(1) = %d", large, small)
	}
}

// TestBuffered_EmitNonBlockingAndOverflowDrops fills a buffered wrapper's
// queue while its drain goroutine is stalled mid-Emit, confirming Emit
// never blocks the caller and that exceeding capacity drops the event
// and increments DroppedCount, per spec.md §5.
func TestBuffered_EmitNonBlockingAndOverflowDrops(t *testing.T) {
	inner := &fakeBufSink{gate: make(chan struct{}), entered: make(chan struct{})}
	b := &buffered{inner: inner, queue: make(chan evtspec.Event, 2), done: make(chan struct{})}
	b.wg.Add(1)
	go b.drain()

	if err := b.Emit(sampleEvent("a")); err != nil {
		t.Fatalf("Emit(a): %v", err)
	}
	<-inner.entered // drain has pulled "a" into inner.Emit and is now blocked on the gate

	if err := b.Emit(sampleEvent("b")); err != nil {
		t.Fatalf("Emit(b): %v", err)
	}
	if err := b.Emit(sampleEvent("c")); err != nil {
		t.Fatalf("Emit(c): %v", err)
	}
	err := b.Emit(sampleEvent("d"))
	if err == nil {
		t.Fatal("Emit(d) on a full queue = nil error, want ResourceExhausted")
	}
	if !evtspec.Is(err, evtspec.ResourceExhausted) {
		t.Fatalf("Emit(d) error kind = %v, want ResourceExhausted", err)
	}
	if got := b.DroppedCount(); got != 1 {
		t.Fatalf("DroppedCount() = %d, want 1", got)
	}

	close(inner.gate)
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if inner.len() != 3 {
		t.Fatalf("inner emitted %d events, want 3 (a, b, c)", inner.len())
	}
	if !inner.closed {
		t.Fatal("Close did not close the wrapped sink")
	}
}

func TestBuffered_CloseDrainsQueuedEvents(t *testing.T) {
	inner := &fakeBufSink{}
	b := NewBuffered(inner, 4)
	for _, name := range []string{"a", "b", "c"} {
		if err := b.Emit(sampleEvent(name)); err != nil {
			t.Fatalf("Emit(%s): %v", name, err)
		}
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if inner.len() != 3 {
		t.Fatalf("inner emitted %d events, want 3", inner.len())
	}
}

func TestBuffered_DoesNotSatisfyRotatable(t *testing.T) {
	b := NewBuffered(&fakeBufSink{}, 4)
	defer b.Close()
	if _, ok := interface{}(b).(Rotatable); ok {
		t.Fatal("buffered satisfies Rotatable, want it not to (Network sinks don't rotate)")
	}
}

func TestBufferedFile_ForwardsRotate(t *testing.T) {
	inner := &fakeBufSink{}
	bf := NewBufferedFile(inner, 4)
	defer bf.Close()
	if err := bf.Rotate(); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	var _ Rotatable = bf
}

func TestBufferedFile_PanicsWithoutRotatableInner(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewBufferedFile did not panic on a non-Rotatable inner sink")
		}
	}()
	NewBufferedFile(&nonRotatingSink{}, 4)
}

// nonRotatingSink satisfies Sink but not Rotatable.
type nonRotatingSink struct{}

func (nonRotatingSink) ID() string                  { return "nr" }
func (nonRotatingSink) Kind() evtspec.Kind          { return evtspec.KindNetwork }
func (nonRotatingSink) Emit(ev evtspec.Event) error { return nil }
func (nonRotatingSink) Close() error                { return nil }
