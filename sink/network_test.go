package sink

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/matgreaves/evtrace/evtspec"
)

type fakeTransport struct {
	sent    [][]byte
	closed  bool
	sendErr error
}

func (f *fakeTransport) Send(ctx context.Context, record []byte) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, append([]byte(nil), record...))
	return nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func networkConfig() *evtspec.LogConfig {
	return &evtspec.LogConfig{
		Name:     "shipper",
		Kind:     evtspec.KindNetwork,
		Hostname: "collector.internal",
		Port:     9000,
	}
}

func TestNetwork_EmitSendsWireRecord(t *testing.T) {
	ft := &fakeTransport{}
	n := NewNetwork(networkConfig(), ft, nil)
	if err := n.Emit(sampleEvent("hello")); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(ft.sent) != 1 {
		t.Fatalf("got %d sends, want 1", len(ft.sent))
	}
	var rec wireRecord
	if err := json.Unmarshal(ft.sent[0], &rec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if rec.ProviderName != "Foo" || rec.EventName != "Play" {
		t.Fatalf("record = %+v, want ProviderName=Foo EventName=Play", rec)
	}
	if rec.Params["name"] != "hello" {
		t.Fatalf("record params = %+v, want name=hello", rec.Params)
	}
}

func TestNetwork_StringParamFilter(t *testing.T) {
	ft := &fakeTransport{}
	chain, err := CompileFilterChain([]string{"Oddball"})
	if err != nil {
		t.Fatalf("CompileFilterChain: %v", err)
	}
	n := NewNetwork(networkConfig(), ft, chain)
	n.Emit(sampleEvent("Oddball"))
	n.Emit(sampleEvent("Moneyball"))
	if len(ft.sent) != 1 {
		t.Fatalf("got %d sends, want 1", len(ft.sent))
	}
	var rec wireRecord
	json.Unmarshal(ft.sent[0], &rec)
	if rec.Params["name"] != "Oddball" {
		t.Fatalf("sent record = %+v, want the Oddball event", rec)
	}
}

func TestNetwork_SetDisabled(t *testing.T) {
	ft := &fakeTransport{}
	n := NewNetwork(networkConfig(), ft, nil)
	n.SetDisabled(true)
	n.Emit(sampleEvent("dropped"))
	if len(ft.sent) != 0 {
		t.Fatalf("got %d sends while disabled, want 0", len(ft.sent))
	}
}

func TestNetwork_CloseClosesTransport(t *testing.T) {
	ft := &fakeTransport{}
	n := NewNetwork(networkConfig(), ft, nil)
	if err := n.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !ft.closed {
		t.Fatal("Close did not close the transport")
	}
}

func TestNetwork_IDAndKind(t *testing.T) {
	ft := &fakeTransport{}
	n := NewNetwork(networkConfig(), ft, nil)
	if n.ID() != "shipper" {
		t.Fatalf("ID() = %q, want shipper", n.ID())
	}
	if n.Kind() != evtspec.KindNetwork {
		t.Fatalf("Kind() = %v, want Network", n.Kind())
	}
}
