// File: internal/usecase/callback_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"mwallet-gateway/internal/domain/model"
	"mwallet-gateway/internal/domain/ports/adapter"
	"mwallet-gateway/internal/infra/logging"
	"mwallet-gateway/internal/infra/metrics"
)

// Compile-time check
var _ CallbackUseCase = (*callbackUC)(nil)

type CallbackUseCase interface {
	// Handle verifies one gateway notification, classifies it and notifies
	// listeners. It never fails; the outcome carries the verdict.
	Handle(ctx context.Context, n model.Notification) model.CallbackOutcome
}

type callbackUC struct {
	verifier  adapter.CallbackVerifier
	listeners []adapter.CallbackListener
	log       *zerolog.Logger
	now       func() time.Time
}

func NewCallbackUseCase(verifier adapter.CallbackVerifier, logger *zerolog.Logger, listeners ...adapter.CallbackListener) *callbackUC {
	return &callbackUC{verifier: verifier, listeners: listeners, log: logger, now: time.Now}
}

func (u *callbackUC) Handle(ctx context.Context, n model.Notification) model.CallbackOutcome {
	if n.ReceivedAt.IsZero() {
		n.ReceivedAt = u.now()
	}
	ctx = logging.WithTxnRef(ctx, n.TransactionRef())
	log := logging.With(ctx, u.log)

	log.Info().Interface("fields", logging.RedactFields(n.Fields, false)).Msg("jazzcash callback received")
	u.emit(ctx, log, model.EventCallbackReceived, n)

	verdict := u.verifier.Verify(n.Fields)
	metrics.IncCallbackVerification(verdict.String())
	if !verdict.Verified() {
		log.Error().Str("verdict", verdict.String()).Msg("jazzcash callback rejected")
		return model.CallbackOutcome{Verdict: verdict}
	}

	out := model.CallbackOutcome{Verdict: verdict, Succeeded: n.Succeeded()}
	if out.Succeeded {
		metrics.IncCallbackClassified("success")
		metrics.IncPayment("succeeded")
		log.Info().Str("response_code", n.ResponseCode()).Msg("jazzcash payment successful")
		u.emit(ctx, log, model.EventPaymentSucceeded, n)
	} else {
		metrics.IncCallbackClassified("failure")
		metrics.IncPayment("failed")
		log.Warn().
			Str("response_code", n.ResponseCode()).
			Str("response_message", n.ResponseMessage()).
			Msg("jazzcash payment failed")
		u.emit(ctx, log, model.EventPaymentFailed, n)
	}
	return out
}

// emit delivers ev to every listener in order; listener errors are only logged.
func (u *callbackUC) emit(ctx context.Context, log *zerolog.Logger, typ model.CallbackEventType, n model.Notification) {
	for _, l := range u.listeners {
		ev := model.CallbackEvent{Type: typ, Fields: cloneFields(n.Fields), At: n.ReceivedAt}
		if err := l.OnCallbackEvent(ctx, ev); err != nil {
			metrics.IncListenerError(string(typ))
			log.Warn().Err(err).Str("event", string(typ)).Msg("callback listener failed")
		}
	}
}

func cloneFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
