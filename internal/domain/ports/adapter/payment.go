package adapter

import (
	"context"

	"mwallet-gateway/internal/domain/model"
)

// TransportResponse is what a Transport got back from the gateway.
type TransportResponse struct {
	StatusCode int
	Body       []byte
}

// Transport posts a JSON body to url. Implementations must honor ctx
// cancellation and return an error only when no response was received.
type Transport interface {
	PostJSON(ctx context.Context, url string, body []byte) (*TransportResponse, error)
}

// WalletGateway is the hex port for the mobile-wallet provider.
type WalletGateway interface {
	Name() string

	// InitiatePayment sends a signed debit request and returns the gateway's JSON body verbatim.
	InitiatePayment(ctx context.Context, req model.InitiateRequest) (map[string]any, error)
	// QueryStatus asks the gateway about a previously initiated transaction.
	QueryStatus(ctx context.Context, transactionRef string) (map[string]any, error)
}
