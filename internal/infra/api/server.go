package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"mwallet-gateway/internal/domain/model"
	"mwallet-gateway/internal/infra/logging"
	"mwallet-gateway/internal/usecase"
)

const DefaultCallbackPath = "/jazzcash/callback"

// Ack is the JSON body returned to the gateway for every callback.
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

var (
	ackProcessed = Ack{Status: "success", Message: "Callback received and processed."}
	ackRejected  = Ack{Status: "error", Message: "Invalid secure hash"}
	ackMalformed = Ack{Status: "error", Message: "Malformed callback payload"}
)

// Server wires the gateway callback route to CallbackUseCase.
type Server struct {
	callbacks usecase.CallbackUseCase
	cbPath    string
	timeout   time.Duration
	log       *zerolog.Logger
}

// NewServer constructs the HTTP layer for callbacks. callbackPath must match
// the return URL registered with the gateway.
func NewServer(callbacks usecase.CallbackUseCase, callbackPath string, timeout time.Duration, logger *zerolog.Logger) *Server {
	if callbackPath == "" {
		callbackPath = DefaultCallbackPath
	}
	return &Server{callbacks: callbacks, cbPath: callbackPath, timeout: timeout, log: logger}
}

// Register attaches handlers to the provided router.
func (s *Server) Register(r chi.Router) {
	r.Post(s.cbPath, s.handleCallback)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// Handler returns the router with the guard middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return Chain(r,
		TraceID(),
		Recover(s.log),
		RequestLog(s.log),
		Timeout(s.timeout),
	)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.With(ctx, s.log)

	fields, err := parseCallback(w, r)
	if err != nil {
		log.Warn().Err(err).Msg("unparseable jazzcash callback")
		writeAck(w, ackMalformed)
		return
	}

	out := s.callbacks.Handle(ctx, model.Notification{Fields: fields, ReceivedAt: time.Now()})
	if !out.Accepted() {
		writeAck(w, ackRejected)
		return
	}
	writeAck(w, ackProcessed)
}

// writeAck always answers 200 so the gateway does not redeliver.
func writeAck(w http.ResponseWriter, a Ack) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(a)
}
