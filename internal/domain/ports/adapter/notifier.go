package adapter

import (
	"context"

	"mwallet-gateway/internal/domain/model"
)

// CallbackListener observes classified gateway callbacks.
type CallbackListener interface {
	OnCallbackEvent(ctx context.Context, ev model.CallbackEvent) error
}

// ListenerFunc adapts a plain function to CallbackListener.
type ListenerFunc func(ctx context.Context, ev model.CallbackEvent) error

func (f ListenerFunc) OnCallbackEvent(ctx context.Context, ev model.CallbackEvent) error {
	return f(ctx, ev)
}

// CallbackVerifier checks the signature of an inbound notification.
type CallbackVerifier interface {
	Verify(fields map[string]string) model.Verdict
}
