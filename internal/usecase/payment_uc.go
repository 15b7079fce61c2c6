// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"mwallet-gateway/internal/domain"
	"mwallet-gateway/internal/domain/model"
	"mwallet-gateway/internal/domain/ports/adapter"
	"mwallet-gateway/internal/infra/logging"
	"mwallet-gateway/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

type PaymentUseCase interface {
	// Initiate sends a wallet debit request and returns the gateway response verbatim.
	Initiate(ctx context.Context, req model.InitiateRequest) (map[string]any, error)
	// Status queries the gateway for a previously initiated transaction.
	Status(ctx context.Context, transactionRef string) (map[string]any, error)
}

type paymentUC struct {
	gateway  adapter.WalletGateway
	currency string
	log      *zerolog.Logger
}

func NewPaymentUseCase(gateway adapter.WalletGateway, currency string, logger *zerolog.Logger) *paymentUC {
	return &paymentUC{gateway: gateway, currency: currency, log: logger}
}

func (u *paymentUC) Initiate(ctx context.Context, req model.InitiateRequest) (map[string]any, error) {
	ctx = logging.WithTxnRef(ctx, req.TransactionRef)
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "PaymentUC.Initiate")()

	start := time.Now()
	resp, err := u.gateway.InitiatePayment(ctx, req)
	metrics.ObserveGatewayCall("initiate", outcome(err), time.Since(start))
	if err != nil {
		log.Error().Err(err).Str("gateway", u.gateway.Name()).Msg("payment initiation failed")
		return nil, err
	}

	metrics.IncPayment("initiated")
	metrics.AddInitiatedAmount(u.currency, req.Amount)
	log.Info().
		Str("gateway", u.gateway.Name()).
		Int64("amount", req.Amount).
		Interface("response_code", resp["pp_ResponseCode"]).
		Msg("payment initiated")
	return resp, nil
}

func (u *paymentUC) Status(ctx context.Context, transactionRef string) (map[string]any, error) {
	ctx = logging.WithTxnRef(ctx, transactionRef)
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "PaymentUC.Status")()

	start := time.Now()
	resp, err := u.gateway.QueryStatus(ctx, transactionRef)
	metrics.ObserveGatewayCall("status", outcome(err), time.Since(start))
	if err != nil {
		log.Error().Err(err).Str("gateway", u.gateway.Name()).Msg("status inquiry failed")
		return nil, err
	}
	log.Info().Interface("response_code", resp["pp_ResponseCode"]).Msg("status inquiry completed")
	return resp, nil
}

// outcome maps err onto the bounded label set of gateway_requests_total.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, domain.ErrProtocol):
		return "protocol_error"
	case errors.Is(err, domain.ErrTransport):
		return "transport_error"
	default:
		return "error"
	}
}
