package sink

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/matgreaves/evtrace/connect"
	"github.com/matgreaves/evtrace/connect/httpx"
)

// HTTPTransport posts each event record as a JSON body to a fixed path on
// a resolved collector endpoint.
type HTTPTransport struct {
	client *httpx.Client
	path   string
}

// NewHTTPTransport builds a Transport that POSTs to ep's resolved
// address + path (default "/events" if path is empty).
func NewHTTPTransport(ep connect.Endpoint, path string) *HTTPTransport {
	if path == "" {
		path = "/events"
	}
	return &HTTPTransport{client: httpx.New(ep), path: path}
}

func (t *HTTPTransport) Send(ctx context.Context, record []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.path, bytes.NewReader(record))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("network sink: collector returned %s", resp.Status)
	}
	return nil
}

func (t *HTTPTransport) Close() error { return nil }
