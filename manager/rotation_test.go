package manager

import (
	"testing"
	"time"
)

func TestRotationThrottle_FirstCallAlways(t *testing.T) {
	var th rotationThrottle
	if !th.allow(time.Now()) {
		t.Fatalf("first allow() call returned false, want true")
	}
}

func TestRotationThrottle_SecondCallWithinDeltaDenied(t *testing.T) {
	var th rotationThrottle
	now := time.Now()
	if !th.allow(now) {
		t.Fatalf("allow(now) = false, want true")
	}
	if th.allow(now.Add(MinDemandRotationDelta - time.Second)) {
		t.Fatalf("allow() within MinDemandRotationDelta returned true, want false")
	}
}

func TestRotationThrottle_AfterDeltaAllowed(t *testing.T) {
	var th rotationThrottle
	now := time.Now()
	th.allow(now)
	if !th.allow(now.Add(MinDemandRotationDelta + time.Second)) {
		t.Fatalf("allow() after MinDemandRotationDelta returned false, want true")
	}
}
