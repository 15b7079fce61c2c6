// File: internal/infra/adapters/payment/noop_transport.go
package payment

import (
	"context"
	"sync"

	"mwallet-gateway/internal/domain/ports/adapter"
)

var _ adapter.Transport = (*NoopTransport)(nil)

// RecordedRequest is one call seen by NoopTransport.
type RecordedRequest struct {
	URL  string
	Body []byte
}

// NoopTransport is an in-memory transport for tests and dry runs. It records
// every request and answers with a fixed response.
type NoopTransport struct {
	mu       sync.Mutex
	requests []RecordedRequest

	Response *adapter.TransportResponse
	Err      error
}

// NewNoopTransport answers 200 with a minimal success body.
func NewNoopTransport() *NoopTransport {
	return &NoopTransport{Response: &adapter.TransportResponse{
		StatusCode: 200,
		Body:       []byte(`{"pp_ResponseCode":"000","pp_ResponseMessage":"dry run"}`),
	}}
}

func (n *NoopTransport) PostJSON(ctx context.Context, url string, body []byte) (*adapter.TransportResponse, error) {
	n.mu.Lock()
	n.requests = append(n.requests, RecordedRequest{URL: url, Body: append([]byte(nil), body...)})
	resp, err := n.Response, n.Err
	n.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Requests returns a copy of the recorded requests.
func (n *NoopTransport) Requests() []RecordedRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]RecordedRequest(nil), n.requests...)
}

// Last returns the most recent request, if any.
func (n *NoopTransport) Last() (RecordedRequest, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.requests) == 0 {
		return RecordedRequest{}, false
	}
	return n.requests[len(n.requests)-1], true
}
