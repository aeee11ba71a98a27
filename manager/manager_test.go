package manager

import (
	"testing"
	"time"

	"github.com/matgreaves/evtrace/evtid"
	"github.com/matgreaves/evtrace/evtspec"
	"github.com/matgreaves/evtrace/sink"
)

func testRegistry(t *testing.T) (*evtspec.ProviderRegistry, evtid.GUID) {
	t.Helper()
	reg := evtspec.NewProviderRegistry()
	id := evtid.New()
	reg.Register("TestProvider", id)
	return reg, id
}

func textLogConfig(t *testing.T, name string) evtspec.LogConfig {
	t.Helper()
	return evtspec.LogConfig{
		Name: name,
		Kind: evtspec.KindText,
		Subscriptions: []evtspec.Subscription{
			{ProviderName: "TestProvider", MinLevel: evtspec.LevelVerbose},
		},
		BufferSizeMB:     1,
		Directory:        t.TempDir(),
		FilenameTemplate: "{0}",
		RotationInterval: 60,
	}
}

func TestManager_StartIsIdempotent(t *testing.T) {
	reg, _ := testRegistry(t)
	m := New(reg)
	if err := m.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("second Start() = %v, want nil (idempotent)", err)
	}
}

func TestManager_ShutdownBeforeStartIsNoop(t *testing.T) {
	reg, _ := testRegistry(t)
	m := New(reg)
	if err := m.Shutdown(); err != nil {
		t.Fatalf("Shutdown() before Start = %v, want nil", err)
	}
}

func TestManager_SetConfigurationRequiresStart(t *testing.T) {
	reg, _ := testRegistry(t)
	m := New(reg)
	err := m.SetConfiguration(evtspec.Config{Logs: []evtspec.LogConfig{textLogConfig(t, "app")}})
	if err == nil {
		t.Fatalf("SetConfiguration before Start = nil, want error")
	}
}

func TestManager_SetConfigurationCreatesAndRemovesSinks(t *testing.T) {
	reg, _ := testRegistry(t)
	m := New(reg)
	if err := m.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer m.Shutdown()

	cfg := evtspec.Config{Logs: []evtspec.LogConfig{textLogConfig(t, "app")}}
	if err := m.SetConfiguration(cfg); err != nil {
		t.Fatalf("SetConfiguration(app) = %v", err)
	}
	if len(m.sinks) != 1 {
		t.Fatalf("len(sinks) = %d, want 1", len(m.sinks))
	}

	if err := m.SetConfiguration(evtspec.Config{}); err != nil {
		t.Fatalf("SetConfiguration(empty) = %v", err)
	}
	if len(m.sinks) != 0 {
		t.Fatalf("len(sinks) = %d after removal, want 0", len(m.sinks))
	}
}

func TestManager_SetConfigurationInvalidRejected(t *testing.T) {
	reg, _ := testRegistry(t)
	m := New(reg)
	if err := m.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer m.Shutdown()

	bad := textLogConfig(t, "app")
	bad.Subscriptions = nil
	if err := m.SetConfiguration(evtspec.Config{Logs: []evtspec.LogConfig{bad}}); err == nil {
		t.Fatalf("SetConfiguration(no subscriptions) = nil, want error")
	}
	if len(m.sinks) != 0 {
		t.Fatalf("sinks created despite rejected config: %d", len(m.sinks))
	}
}

func TestManager_EmitRoutesToMatchingSink(t *testing.T) {
	reg, providerID := testRegistry(t)
	m := New(reg)
	if err := m.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer m.Shutdown()

	mem, err := m.CreateMemorySink(evtspec.LogConfig{
		Name: "mem",
		Subscriptions: []evtspec.Subscription{
			{ProviderName: "TestProvider", MinLevel: evtspec.LevelVerbose},
		},
	}, 10)
	if err != nil {
		t.Fatalf("CreateMemorySink() = %v", err)
	}

	m.Emit(evtspec.Event{
		ProviderID:   providerID,
		ProviderName: "TestProvider",
		EventName:    "Oddball",
		Level:        evtspec.LevelInformational,
		Timestamp:    time.Now(),
	})

	tail := mem.Tail(10)
	if len(tail) != 1 || tail[0].EventName != "Oddball" {
		t.Fatalf("mem.Tail(10) = %v, want one Oddball event", tail)
	}
}

func networkLogConfig(name, transport string) evtspec.LogConfig {
	return evtspec.LogConfig{
		Name: name,
		Kind: evtspec.KindNetwork,
		Subscriptions: []evtspec.Subscription{
			{ProviderName: "TestProvider", MinLevel: evtspec.LevelVerbose},
		},
		BufferSizeMB: 1,
		Hostname:     "collector.internal",
		Port:         9000,
		Transport:    transport,
	}
}

// TestBuildTransport_SelectsByConfig confirms LogConfig.Transport picks
// among the Network sink's pluggable transports instead of always
// constructing an HTTPTransport.
func TestBuildTransport_SelectsByConfig(t *testing.T) {
	cases := []struct {
		transport string
		check     func(t *testing.T, tr sink.Transport)
	}{
		{"", func(t *testing.T, tr sink.Transport) {
			if _, ok := tr.(*sink.HTTPTransport); !ok {
				t.Fatalf("transport = %T, want *sink.HTTPTransport for the default", tr)
			}
		}},
		{evtspec.TransportHTTP, func(t *testing.T, tr sink.Transport) {
			if _, ok := tr.(*sink.HTTPTransport); !ok {
				t.Fatalf("transport = %T, want *sink.HTTPTransport", tr)
			}
		}},
		{evtspec.TransportGRPC, func(t *testing.T, tr sink.Transport) {
			if _, ok := tr.(*sink.GRPCTransport); !ok {
				t.Fatalf("transport = %T, want *sink.GRPCTransport", tr)
			}
		}},
		{evtspec.TransportRedis, func(t *testing.T, tr sink.Transport) {
			if _, ok := tr.(*sink.RedisTransport); !ok {
				t.Fatalf("transport = %T, want *sink.RedisTransport", tr)
			}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.transport, func(t *testing.T) {
			lc := networkLogConfig("net", tc.transport)
			tr, err := buildTransport(&lc)
			if err != nil {
				t.Fatalf("buildTransport(%q) = %v", tc.transport, err)
			}
			tc.check(t, tr)
		})
	}
}

func TestBuildTransport_RejectsUnknown(t *testing.T) {
	lc := networkLogConfig("net", "carrier-pigeon")
	if _, err := buildTransport(&lc); !evtspec.Is(err, evtspec.InvalidConfiguration) {
		t.Fatalf("buildTransport(unknown) error = %v, want InvalidConfiguration", err)
	}
}

func TestManager_BuildSinkHonorsTransportSelection(t *testing.T) {
	reg, _ := testRegistry(t)
	m := New(reg)
	if err := m.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer m.Shutdown()

	lc := networkLogConfig("net", evtspec.TransportRedis)
	if err := m.SetConfiguration(evtspec.Config{Logs: []evtspec.LogConfig{lc}}); err != nil {
		t.Fatalf("SetConfiguration() = %v", err)
	}
}

func TestManager_RotateFilesThrottled(t *testing.T) {
	reg, _ := testRegistry(t)
	m := New(reg)
	if err := m.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer m.Shutdown()

	if err := m.SetConfiguration(evtspec.Config{Logs: []evtspec.LogConfig{textLogConfig(t, "app")}}); err != nil {
		t.Fatalf("SetConfiguration() = %v", err)
	}

	if !m.RotateFiles() {
		t.Fatalf("first RotateFiles() = false, want true")
	}
	if m.RotateFiles() {
		t.Fatalf("second RotateFiles() immediately after = true, want false (throttled)")
	}
}

func TestManager_CreateMemorySinkRejectsDuplicate(t *testing.T) {
	reg, _ := testRegistry(t)
	m := New(reg)
	if err := m.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer m.Shutdown()

	lc := evtspec.LogConfig{
		Name:          "mem",
		Subscriptions: []evtspec.Subscription{{ProviderName: "TestProvider", MinLevel: evtspec.LevelVerbose}},
	}
	if _, err := m.CreateMemorySink(lc, 4); err != nil {
		t.Fatalf("first CreateMemorySink() = %v", err)
	}
	if _, err := m.CreateMemorySink(lc, 4); err == nil {
		t.Fatalf("second CreateMemorySink(same name) = nil, want error")
	}
}
