package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matgreaves/evtrace/evtspec"
)

// wireRecord is the serialized form a Network sink sends to its remote
// collector, the only sink kind that never renders a text line, per
// §4.2's capability matrix.
type wireRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	ProviderName string    `json:"provider_name"`
	EventName    string    `json:"event_name"`
	Level        uint8     `json:"level"`
	ActivityID   string    `json:"activity_id,omitempty"`
	ProcessID    uint32    `json:"process_id"`
	ThreadID     uint32    `json:"thread_id"`
	Params       map[string]string `json:"params,omitempty"`
}

func toWireRecord(ev evtspec.Event) wireRecord {
	rec := wireRecord{
		Timestamp:    ev.TimestampMillis(),
		ProviderName: ev.ProviderName,
		EventName:    ev.EventName,
		Level:        uint8(ev.Level),
		ProcessID:    ev.ProcessID,
		ThreadID:     ev.ThreadID,
	}
	if !ev.ActivityID.IsZero() {
		rec.ActivityID = ev.ActivityID.HexNoDash()
	}
	if ev.Parameters != nil && ev.Parameters.Len() > 0 {
		rec.Params = make(map[string]string, ev.Parameters.Len())
		for i := 0; i < ev.Parameters.Len(); i++ {
			p := ev.Parameters.At(i)
			if p.Kind == evtspec.ParamString {
				rec.Params[p.Name] = p.Str
			}
		}
	}
	return rec
}

// Transport delivers a serialized event record to a remote collector. The
// three concrete transports are network_http.go (the connect/httpx
// client), network_redis.go (the connect/redisx client), and
// network_grpc.go, which dials host:port with grpc directly.
type Transport interface {
	Send(ctx context.Context, record []byte) error
	Close() error
}

// Network forwards admitted events to a remote collector over Transport.
// It carries no text format or line filter capability; the only
// selectivity available is the subscription routing table and the
// string-parameter filter applied before marshaling (§4.2).
type Network struct {
	id        string
	transport Transport
	chain     *FilterChain

	disabled bool
}

// NewNetwork constructs a Network sink over transport. chain, if non-nil,
// is matched against string-valued parameters rather than a formatted
// line: Network never formats a line at all.
func NewNetwork(lc *evtspec.LogConfig, transport Transport, chain *FilterChain) *Network {
	return &Network{id: lc.Name, transport: transport, chain: chain}
}

func (n *Network) ID() string         { return n.id }
func (n *Network) Kind() evtspec.Kind { return evtspec.KindNetwork }

func (n *Network) SetDisabled(disabled bool) { n.disabled = disabled }

func (n *Network) Emit(ev evtspec.Event) error {
	if n.disabled {
		return nil
	}
	if n.chain != nil && !n.chain.MatchStringParams(ev) {
		return nil
	}
	record, err := json.Marshal(toWireRecord(ev))
	if err != nil {
		return evtspec.NewError(evtspec.InvalidArgument, "Network.Emit", "marshal event", err)
	}
	if err := n.transport.Send(context.Background(), record); err != nil {
		return evtspec.NewError(evtspec.ConflictingState, "Network.Emit", "send to remote collector", err)
	}
	return nil
}

func (n *Network) Close() error { return n.transport.Close() }
