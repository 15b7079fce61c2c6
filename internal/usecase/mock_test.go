//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"mwallet-gateway/internal/domain/model"
	"mwallet-gateway/internal/domain/ports/adapter"
)

// --- Mock WalletGateway

type MockWalletGateway struct {
	NameVal string

	InitiatePaymentFunc func(ctx context.Context, req model.InitiateRequest) (map[string]any, error)
	QueryStatusFunc     func(ctx context.Context, transactionRef string) (map[string]any, error)
}

var _ adapter.WalletGateway = (*MockWalletGateway)(nil)

func (m *MockWalletGateway) Name() string {
	if m.NameVal == "" {
		return "mockwallet"
	}
	return m.NameVal
}

func (m *MockWalletGateway) InitiatePayment(ctx context.Context, req model.InitiateRequest) (map[string]any, error) {
	if m.InitiatePaymentFunc != nil {
		return m.InitiatePaymentFunc(ctx, req)
	}
	return map[string]any{"pp_ResponseCode": "000", "pp_TxnRefNo": req.TransactionRef}, nil
}

func (m *MockWalletGateway) QueryStatus(ctx context.Context, transactionRef string) (map[string]any, error) {
	if m.QueryStatusFunc != nil {
		return m.QueryStatusFunc(ctx, transactionRef)
	}
	return map[string]any{"pp_ResponseCode": "000", "pp_TxnRefNo": transactionRef}, nil
}

// --- Recording listener

type recordingListener struct {
	mu     sync.Mutex
	events []model.CallbackEvent
	err    error
}

func (r *recordingListener) OnCallbackEvent(ctx context.Context, ev model.CallbackEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingListener) types() []model.CallbackEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.CallbackEventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

var errListener = errors.New("listener down")

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
