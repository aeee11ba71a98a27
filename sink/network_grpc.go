package sink

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
)

// rawCodecName is registered once so GRPCTransport can invoke a method
// without a generated protobuf stub, the collector's wire contract is
// just "bytes in, empty response out", matching the JSON record Network
// already produced.
const rawCodecName = "evtrace-raw"

func init() {
	encoding.RegisterCodec(rawBytesCodec{})
}

type rawBytesCodec struct{}

func (rawBytesCodec) Name() string { return rawCodecName }

func (rawBytesCodec) Marshal(v any) ([]byte, error) {
	b, ok := v.(*[]byte)
	if !ok {
		return nil, fmt.Errorf("evtrace-raw codec: unsupported type %T", v)
	}
	return *b, nil
}

func (rawBytesCodec) Unmarshal(data []byte, v any) error {
	b, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("evtrace-raw codec: unsupported type %T", v)
	}
	*b = append((*b)[:0], data...)
	return nil
}

// GRPCTransport delivers event records over a gRPC unary call to a fixed
// method name, analogous to how internal/server/ready's GRPC checker
// dials with insecure transport credentials and no generated client.
type GRPCTransport struct {
	conn   *grpc.ClientConn
	method string
}

// NewGRPCTransport dials addr (host:port) and invokes method for every
// Send. method defaults to "/evtrace.Collector/Emit".
func NewGRPCTransport(addr, method string) (*GRPCTransport, error) {
	if method == "" {
		method = "/evtrace.Collector/Emit"
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &GRPCTransport{conn: conn, method: method}, nil
}

func (t *GRPCTransport) Send(ctx context.Context, record []byte) error {
	var reply []byte
	return t.conn.Invoke(ctx, t.method, &record, &reply, grpc.CallContentSubtype(rawCodecName))
}

func (t *GRPCTransport) Close() error { return t.conn.Close() }
