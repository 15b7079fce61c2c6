package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"mwallet-gateway/internal/config"
	"mwallet-gateway/internal/domain/ports/adapter"
	payAdapters "mwallet-gateway/internal/infra/adapters/payment"
	"mwallet-gateway/internal/infra/api"
	"mwallet-gateway/internal/infra/payment"
	red "mwallet-gateway/internal/infra/redis"
	"mwallet-gateway/internal/usecase"
)

const shutdownGrace = 10 * time.Second

// Service composes the gateway client, use cases and the callback server.
type Service struct {
	Config    *config.Config
	Gateway   *payAdapters.JazzCashGateway
	Payments  usecase.PaymentUseCase
	Callbacks usecase.CallbackUseCase

	log     *zerolog.Logger
	closers []func() error
}

type options struct {
	transport adapter.Transport
	listeners []adapter.CallbackListener
}

type Option func(*options)

// WithTransport replaces the HTTP transport, e.g. with a NoopTransport for dry runs.
func WithTransport(t adapter.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithListeners adds callback listeners next to the optional Redis publisher.
func WithListeners(ls ...adapter.CallbackListener) Option {
	return func(o *options) { o.listeners = append(o.listeners, ls...) }
}

// New wires a Service from cfg. The Redis publisher is connected only when
// redis.enabled is set.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, opts ...Option) (*Service, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	if o.transport == nil {
		o.transport = payAdapters.NewHTTPTransport(cfg.JazzCash.Timeout)
	}

	gw, err := payAdapters.NewJazzCashGateway(cfg.JazzCash, o.transport, logger,
		payAdapters.WithDevLogging(cfg.Runtime.Dev))
	if err != nil {
		return nil, fmt.Errorf("jazzcash gateway: %w", err)
	}

	s := &Service{Config: cfg, Gateway: gw, log: logger}

	listeners := o.listeners
	if cfg.Redis.Enabled {
		rc, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		s.closers = append(s.closers, rc.Close)
		listeners = append(listeners, red.NewEventPublisher(rc, cfg.Redis.ChannelPrefix, logger))
		logger.Info().Str("prefix", cfg.Redis.ChannelPrefix).Msg("publishing callback events to redis")
	}

	s.Payments = usecase.NewPaymentUseCase(gw, cfg.JazzCash.Currency, logger)
	verifier := payment.NewVerifier(cfg.JazzCash.Credentials().IntegritySalt)
	s.Callbacks = usecase.NewCallbackUseCase(verifier, logger, listeners...)
	return s, nil
}

// Handler returns the callback router with middleware.
func (s *Service) Handler() http.Handler {
	return api.NewServer(s.Callbacks, s.Config.HTTP.CallbackPath, s.Config.HTTP.RequestTimeout, s.log).Handler()
}

// Serve runs the callback server until ctx is cancelled, then shuts it down gracefully.
func (s *Service) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Config.HTTP.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info().
			Str("addr", srv.Addr).
			Str("callback_path", s.Config.HTTP.CallbackPath).
			Str("environment", s.Config.JazzCash.Environment).
			Msg("http callback server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		s.log.Info().Msg("http callback server shutting down")
		return srv.Shutdown(shCtx)
	})
	return g.Wait()
}

// Close releases external connections.
func (s *Service) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
