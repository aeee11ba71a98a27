package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matgreaves/evtrace/evtspec"
)

func TestConsole_SingleInstanceEnforced(t *testing.T) {
	var buf bytes.Buffer
	c1, err := NewConsole(&buf, nil)
	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}
	defer c1.Close()

	_, err = NewConsole(&buf, nil)
	if !evtspec.Is(err, evtspec.ConflictingState) {
		t.Fatalf("second NewConsole = %v, want ConflictingState", err)
	}
}

func TestConsole_CloseReleasesSlot(t *testing.T) {
	var buf bytes.Buffer
	c1, err := NewConsole(&buf, nil)
	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}
	if err := c1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	c2, err := NewConsole(&buf, nil)
	if err != nil {
		t.Fatalf("NewConsole after close: %v", err)
	}
	c2.Close()
}

func TestConsole_EmitWritesLine(t *testing.T) {
	var buf bytes.Buffer
	c, err := NewConsole(&buf, nil)
	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}
	defer c.Close()
	if err := c.Emit(sampleEvent("hello")); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("output = %q, want it to contain hello", buf.String())
	}
}

func TestConsole_UnnamedAndConsoleKind(t *testing.T) {
	var buf bytes.Buffer
	c, err := NewConsole(&buf, nil)
	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}
	defer c.Close()
	if c.ID() != "" {
		t.Fatalf("ID() = %q, want empty", c.ID())
	}
	if c.Kind() != evtspec.KindConsole {
		t.Fatalf("Kind() = %v, want Console", c.Kind())
	}
}
