// File: internal/infra/adapters/payment/jazzcash_gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mwallet-gateway/internal/config"
	"mwallet-gateway/internal/domain"
	"mwallet-gateway/internal/domain/model"
	"mwallet-gateway/internal/domain/ports/adapter"
	"mwallet-gateway/internal/infra/logging"
	signer "mwallet-gateway/internal/infra/payment"
)

var _ adapter.WalletGateway = (*JazzCashGateway)(nil)

const (
	OpInitiate = "Payment Initiation"
	OpStatus   = "Transaction Status Inquiry"

	txnTypeMWallet = "MWALLET"
)

// JazzCashGateway implements adapter.WalletGateway against the MWallet REST API v2.0.
// It is built once from config and is safe for concurrent use.
type JazzCashGateway struct {
	cfg       config.JazzCashConfig
	creds     config.Credentials
	transport adapter.Transport
	logger    *zerolog.Logger
	now       func() time.Time
	dev       bool
}

type Option func(*JazzCashGateway)

// WithClock overrides the time source used for pp_TxnDateTime.
func WithClock(now func() time.Time) Option {
	return func(g *JazzCashGateway) { g.now = now }
}

// WithDevLogging disables redaction of secrets in debug payload logs.
func WithDevLogging(dev bool) Option {
	return func(g *JazzCashGateway) { g.dev = dev }
}

// NewJazzCashGateway validates cfg and binds the active credential set. A nil
// transport falls back to NewHTTPTransport(cfg.Timeout).
func NewJazzCashGateway(cfg config.JazzCashConfig, transport adapter.Transport, logger *zerolog.Logger, opts ...Option) (*JazzCashGateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if transport == nil {
		transport = NewHTTPTransport(cfg.Timeout)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	g := &JazzCashGateway{
		cfg:       cfg,
		creds:     cfg.Credentials(),
		transport: transport,
		logger:    logger,
		now:       time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g, nil
}

func (g *JazzCashGateway) Name() string { return "jazzcash" }

// Endpoint joins the base URL with a path template, substituting {version}.
func Endpoint(baseURL, template, version string) string {
	path := strings.ReplaceAll(template, "{version}", version)
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func (g *JazzCashGateway) endpoint(template string) string {
	return Endpoint(g.creds.APIBaseURL, template, g.cfg.APIVersion)
}

// InitiatePayload returns the signed initiation payload and its target URL
// without sending anything.
func (g *JazzCashGateway) InitiatePayload(req model.InitiateRequest) (signer.Fields, string, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, "", err
	}
	now := g.now()
	fields := signer.Fields{
		"pp_Version":           g.cfg.APIVersion,
		"pp_TxnType":           txnTypeMWallet,
		"pp_Language":          g.cfg.Language,
		"pp_MerchantID":        g.creds.MerchantID,
		"pp_Password":          g.creds.Password,
		"pp_TxnRefNo":          req.TransactionRef,
		"pp_Amount":            strconv.FormatInt(req.Amount, 10),
		"pp_TxnCurrency":       g.cfg.Currency,
		"pp_TxnDateTime":       now.Format(g.cfg.DatetimeFormat),
		"pp_TxnExpiryDateTime": now.Add(g.cfg.TransactionExpiry).Format(g.cfg.DatetimeFormat),
		"pp_BillReference":     req.BillReference,
		"pp_Description":       req.Description,
		"pp_MobileNumber":      req.MobileNumber,
		"pp_CNIC":              req.CNICLast6,
	}
	for k, v := range req.Custom {
		if v != "" {
			fields[k] = v
		}
	}
	returnURL := req.ReturnURL
	if returnURL == "" && g.cfg.SendReturnURL {
		returnURL = g.creds.ReturnURL
	}
	if returnURL != "" {
		fields["pp_ReturnURL"] = returnURL
	}
	return signer.SignFields(fields, g.creds.IntegritySalt), g.endpoint(g.cfg.Endpoints.DoMobileWalletTransaction), nil
}

// StatusPayload returns the signed status inquiry payload and its target URL.
func (g *JazzCashGateway) StatusPayload(transactionRef string) (signer.Fields, string, error) {
	if transactionRef == "" {
		return nil, "", fmt.Errorf("transaction reference is required: %w", domain.ErrInvalidArgument)
	}
	fields := signer.Fields{
		"pp_MerchantID":  g.creds.MerchantID,
		"pp_Password":    g.creds.Password,
		"pp_TxnRefNo":    transactionRef,
		"pp_Language":    g.cfg.Language,
		"pp_TxnDateTime": g.now().Format(g.cfg.DatetimeFormat),
	}
	return signer.SignFields(fields, g.creds.IntegritySalt), g.endpoint(g.cfg.Endpoints.TransactionInquiry), nil
}

// InitiatePayment sends a signed MWALLET debit request and returns the gateway body verbatim.
func (g *JazzCashGateway) InitiatePayment(ctx context.Context, req model.InitiateRequest) (map[string]any, error) {
	payload, url, err := g.InitiatePayload(req)
	if err != nil {
		return nil, err
	}
	return g.call(logging.WithTxnRef(ctx, req.TransactionRef), OpInitiate, url, payload)
}

// QueryStatus asks the gateway about a previously initiated transaction.
func (g *JazzCashGateway) QueryStatus(ctx context.Context, transactionRef string) (map[string]any, error) {
	payload, url, err := g.StatusPayload(transactionRef)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithTxnRef(ctx, transactionRef)
	logging.With(ctx, g.logger).Warn().
		Str("operation", OpStatus).
		Msg("status inquiry endpoint and fields are not confirmed by the gateway documentation")
	return g.call(ctx, OpStatus, url, payload)
}

func (g *JazzCashGateway) call(ctx context.Context, op, url string, payload signer.Fields) (map[string]any, error) {
	log := logging.With(ctx, g.logger)
	log.Debug().
		Str("operation", op).
		Str("url", url).
		Interface("payload", logging.RedactFields(payload, g.dev)).
		Msg("gateway request")

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", op, err)
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	resp, err := g.transport.PostJSON(ctx, url, body)
	if err != nil {
		log.Error().Err(err).Str("operation", op).Msg("gateway request failed")
		return nil, &domain.GatewayError{Kind: domain.KindTransport, Operation: op, Err: err}
	}

	parsed, perr := decodeObject(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().Str("operation", op).Int("status", resp.StatusCode).
			Bytes("body", resp.Body).Msg("gateway returned non-success status")
		ge := &domain.GatewayError{Kind: domain.KindTransport, Operation: op, StatusCode: resp.StatusCode, Body: resp.Body}
		if perr == nil {
			ge.Response = parsed
		}
		return nil, ge
	}
	if perr != nil {
		log.Error().Err(perr).Str("operation", op).Int("status", resp.StatusCode).
			Bytes("body", resp.Body).Msg("gateway returned invalid JSON")
		return nil, &domain.GatewayError{
			Kind: domain.KindProtocol, Operation: op, StatusCode: resp.StatusCode, Body: resp.Body, Err: perr,
		}
	}

	log.Debug().Str("operation", op).Interface("response", parsed).Msg("gateway response")
	return parsed, nil
}

var errNotObject = errors.New("response body is not a JSON object")

// decodeObject parses b as a single JSON object, keeping numbers as json.Number.
func decodeObject(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errNotObject
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errNotObject
	}
	return out, nil
}
