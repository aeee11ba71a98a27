package configstore

import (
	"testing"
	"time"

	"github.com/matgreaves/evtrace/evtid"
	"github.com/matgreaves/evtrace/evtspec"
	"github.com/matgreaves/evtrace/manager"
)

func testManager(t *testing.T) *manager.Manager {
	t.Helper()
	reg := evtspec.NewProviderRegistry()
	reg.Register("TestProvider", evtid.New())
	m := manager.New(reg)
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { m.Shutdown() })
	return m
}

func TestNew_DefaultsTableAndInterval(t *testing.T) {
	s := New(nil, testManager(t))
	if s.table != "evtrace_configs" {
		t.Errorf("table = %q, want evtrace_configs", s.table)
	}
	if s.interval != DefaultPollInterval {
		t.Errorf("interval = %v, want %v", s.interval, DefaultPollInterval)
	}
}

func TestNew_OptionsOverrideDefaults(t *testing.T) {
	s := New(nil, testManager(t), WithTable("custom_configs"), WithPollInterval(500*time.Millisecond))
	if s.table != "custom_configs" {
		t.Errorf("table = %q, want custom_configs", s.table)
	}
	if s.interval != 500*time.Millisecond {
		t.Errorf("interval = %v, want 500ms", s.interval)
	}
}

func TestStore_StopIsIdempotent(t *testing.T) {
	s := New(nil, testManager(t))
	s.Stop()
	s.Stop()
}

func TestStore_CountersStartAtZero(t *testing.T) {
	s := New(nil, testManager(t))
	if s.ReloadCount() != 0 || s.ErrorCount() != 0 {
		t.Fatalf("ReloadCount/ErrorCount = %d/%d, want 0/0", s.ReloadCount(), s.ErrorCount())
	}
}
