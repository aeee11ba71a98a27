package sink

import (
	"sync"
	"sync/atomic"

	"github.com/matgreaves/evtrace/evtspec"
)

// bytesPerEventEstimate is the assumed average size of one formatted or
// serialized event record, used to translate a LogConfig's byte-oriented
// BufferSizeMB into a channel depth. The config carries no field for
// actual event size, so this mirrors Memory's own documented
// approximation ("BufferSizeMB does not translate directly to a count of
// events") rather than inventing a precise conversion the spec never
// specifies.
const bytesPerEventEstimate = 512

func bufferCapacity(bufferSizeMB int) int {
	if bufferSizeMB <= 0 {
		bufferSizeMB = 1
	}
	n := (bufferSizeMB * 1024 * 1024) / bytesPerEventEstimate
	if n < 64 {
		n = 64
	}
	return n
}

// buffered wraps a Sink so the emission hot path never blocks on I/O, per
// §5: "sinks buffer internally up to buffer_size_mb and drop with a
// counter increment on overflow." Emit enqueues onto a bounded channel; a
// background goroutine drains it into the wrapped sink's own Emit, where
// the actual file write or network send happens.
type buffered struct {
	inner Sink
	queue chan evtspec.Event
	done  chan struct{}
	wg    sync.WaitGroup

	dropped int64
}

func NewBuffered(inner Sink, bufferSizeMB int) *buffered {
	b := &buffered{
		inner: inner,
		queue: make(chan evtspec.Event, bufferCapacity(bufferSizeMB)),
		done:  make(chan struct{}),
	}
	b.wg.Add(1)
	go b.drain()
	return b
}

func (b *buffered) ID() string         { return b.inner.ID() }
func (b *buffered) Kind() evtspec.Kind { return b.inner.Kind() }

// Emit never blocks: a full queue drops ev and increments droppedCount
// instead of waiting on the drain goroutine.
func (b *buffered) Emit(ev evtspec.Event) error {
	select {
	case b.queue <- ev:
		return nil
	default:
		atomic.AddInt64(&b.dropped, 1)
		return evtspec.NewError(evtspec.ResourceExhausted, "buffered.Emit", "buffer full for sink "+b.inner.ID(), nil)
	}
}

func (b *buffered) drain() {
	defer b.wg.Done()
	for {
		select {
		case ev := <-b.queue:
			b.inner.Emit(ev)
		case <-b.done:
			b.drainRemaining()
			return
		}
	}
}

// drainRemaining flushes whatever was already queued before Close was
// called, rather than silently discarding it.
func (b *buffered) drainRemaining() {
	for {
		select {
		case ev := <-b.queue:
			b.inner.Emit(ev)
		default:
			return
		}
	}
}

// Close stops accepting new events, waits for the drain goroutine to
// flush the queue, then closes the wrapped sink.
func (b *buffered) Close() error {
	close(b.done)
	b.wg.Wait()
	return b.inner.Close()
}

// Flush forwards to the wrapped sink if it implements Flusher.
func (b *buffered) Flush() error {
	if f, ok := b.inner.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// DroppedCount returns the number of events dropped for buffer overflow
// since construction.
func (b *buffered) DroppedCount() int64 { return atomic.LoadInt64(&b.dropped) }

// bufferedFile additionally forwards Rotatable, for Text/Trace sinks,
// which are rotatable even when wrapped.
type bufferedFile struct {
	*buffered
	rotatable Rotatable
}

// NewBufferedFile wraps a file-backed (Text or Trace) sink. Panics if
// inner does not implement Rotatable, which would be a construction bug
// in buildSink, not a runtime condition callers need to handle.
func NewBufferedFile(inner Sink, bufferSizeMB int) *bufferedFile {
	r, ok := inner.(Rotatable)
	if !ok {
		panic("sink: NewBufferedFile requires a Rotatable inner sink")
	}
	return &bufferedFile{buffered: NewBuffered(inner, bufferSizeMB), rotatable: r}
}

func (b *bufferedFile) Rotate() error { return b.rotatable.Rotate() }
