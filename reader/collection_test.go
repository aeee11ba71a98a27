package reader

import (
	"testing"
	"time"

	"github.com/matgreaves/evtrace/evtspec"
)

type fakeValue struct {
	events   []evtspec.Event
	complete bool
	modified time.Time
}

func (v *fakeValue) ProcessEvent(ev evtspec.Event) {
	v.events = append(v.events, ev)
	v.modified = ev.Timestamp
	if ev.EventName == "Complete" {
		v.complete = true
	}
}
func (v *fakeValue) IsComplete() bool        { return v.complete }
func (v *fakeValue) LastModified() time.Time { return v.modified }

func newCollection(t *testing.T, incomplete, complete time.Duration) (*ExpiringCompositeCollection[string, *fakeValue], *[]string, *[]string) {
	t.Helper()
	var incompleteExpired, completeExpired []string
	c, err := NewExpiringCompositeCollection[string, *fakeValue](
		func() *fakeValue { return &fakeValue{} },
		incomplete, complete,
		func(v *fakeValue) { incompleteExpired = append(incompleteExpired, v.events[0].EventName) },
		func(v *fakeValue) { completeExpired = append(completeExpired, v.events[0].EventName) },
	)
	if err != nil {
		t.Fatalf("NewExpiringCompositeCollection() = %v", err)
	}
	return c, &incompleteExpired, &completeExpired
}

func TestCollection_RejectsZeroAges(t *testing.T) {
	_, err := NewExpiringCompositeCollection[string, *fakeValue](
		func() *fakeValue { return &fakeValue{} }, 0, time.Second,
		func(*fakeValue) {}, func(*fakeValue) {},
	)
	if err == nil {
		t.Fatalf("zero maxIncompleteAge accepted, want error")
	}
}

func TestCollection_RejectsNilCallbacks(t *testing.T) {
	_, err := NewExpiringCompositeCollection[string, *fakeValue](
		func() *fakeValue { return &fakeValue{} }, time.Second, time.Second,
		nil, func(*fakeValue) {},
	)
	if err == nil {
		t.Fatalf("nil onIncompleteExpired accepted, want error")
	}
}

func TestCollection_NegativeAgeTreatedAsAbsolute(t *testing.T) {
	c, _, _ := newCollection(t, -time.Minute, time.Minute)
	base := time.Unix(1000, 0)
	c.Process("k", evtspec.Event{EventName: "Start", Timestamp: base})
	c.Expire(base.Add(59 * time.Second))
	if c.Len() != 1 {
		t.Fatalf("entry expired before the (absolute) 1-minute limit")
	}
	c.Expire(base.Add(61 * time.Second))
	if c.Len() != 0 {
		t.Fatalf("entry survived past the 1-minute limit")
	}
}

func TestCollection_ProcessReusesExistingEntry(t *testing.T) {
	c, _, _ := newCollection(t, time.Minute, time.Minute)
	base := time.Unix(1000, 0)
	c.Process("k", evtspec.Event{EventName: "A", Timestamp: base})
	c.Process("k", evtspec.Event{EventName: "B", Timestamp: base.Add(time.Second)})

	v, ok := c.TryGet("k")
	if !ok || len(v.events) != 2 {
		t.Fatalf("TryGet(k) = %v, %v, want one entry with 2 events", v, ok)
	}
}

func TestCollection_ExpireBoundaryExact(t *testing.T) {
	c, incompleteExp, _ := newCollection(t, time.Minute, time.Minute)
	base := time.Unix(1000, 0)
	c.Process("k", evtspec.Event{EventName: "A", Timestamp: base})

	c.Expire(base.Add(time.Minute))
	if len(*incompleteExp) != 0 {
		t.Fatalf("entry expired at exactly the age limit, want strictly-beyond semantics")
	}

	c.Expire(base.Add(time.Minute + time.Nanosecond))
	if len(*incompleteExp) != 1 {
		t.Fatalf("entry did not expire just beyond the age limit")
	}
}

func TestCollection_CompleteAndIncompleteUseDifferentLimits(t *testing.T) {
	c, incompleteExp, completeExp := newCollection(t, 10*time.Minute, time.Second)
	base := time.Unix(1000, 0)

	c.Process("incomplete", evtspec.Event{EventName: "A", Timestamp: base})
	c.Process("complete", evtspec.Event{EventName: "Complete", Timestamp: base})

	c.Expire(base.Add(2 * time.Second))
	if len(*completeExp) != 1 || (*completeExp)[0] != "Complete" {
		t.Fatalf("completeExp = %v, want [Complete]", *completeExp)
	}
	if len(*incompleteExp) != 0 {
		t.Fatalf("incompleteExp = %v, want none (still under its 10m limit)", *incompleteExp)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (incomplete entry still live)", c.Len())
	}
}

func TestCollection_FlushCompleteIgnoresAge(t *testing.T) {
	c, _, completeExp := newCollection(t, time.Minute, time.Hour)
	base := time.Unix(1000, 0)
	c.Process("k", evtspec.Event{EventName: "Complete", Timestamp: base})

	c.FlushComplete()
	if len(*completeExp) != 1 {
		t.Fatalf("FlushComplete did not fire callback for a fresh complete entry")
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after FlushComplete, want 0", c.Len())
	}
}

func TestCollection_ProcessSweepsRelativeToEventTime(t *testing.T) {
	c, incompleteExp, _ := newCollection(t, time.Minute, time.Minute)
	base := time.Unix(1000, 0)
	c.Process("old", evtspec.Event{EventName: "A", Timestamp: base})

	// a later arrival, far beyond old's limit relative to its own timestamp,
	// must sweep "old" out before inserting "new".
	c.Process("new", evtspec.Event{EventName: "B", Timestamp: base.Add(2 * time.Minute)})

	if len(*incompleteExp) != 1 {
		t.Fatalf("arrival-driven sweep did not expire the stale entry")
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (only the new entry)", c.Len())
	}
}
