// File: internal/infra/adapters/payment/http_transport.go
package payment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"mwallet-gateway/internal/domain/ports/adapter"
)

var _ adapter.Transport = (*HTTPTransport)(nil)

const maxResponseBody = 1 << 20

// HTTPTransport is the production adapter.Transport backed by net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport returns a transport with pooled connections; timeout bounds
// each request end to end (30s when zero).
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &HTTPTransport{client: &http.Client{Timeout: timeout, Transport: tr}}
}

// NewHTTPTransportWithClient wraps an existing client, e.g. httptest.Server.Client().
func NewHTTPTransportWithClient(c *http.Client) *HTTPTransport {
	return &HTTPTransport{client: c}
}

func (t *HTTPTransport) PostJSON(ctx context.Context, url string, body []byte) (*adapter.TransportResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &adapter.TransportResponse{StatusCode: resp.StatusCode, Body: b}, nil
}
