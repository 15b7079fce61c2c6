package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConfiguration   = errors.New("configuration error")
	ErrTransport       = errors.New("gateway transport error")
	ErrProtocol        = errors.New("gateway protocol error")
)

// GatewayErrorKind discriminates failed gateway calls.
type GatewayErrorKind string

const (
	// KindTransport covers network failures, timeouts, cancellation and non-2xx statuses.
	KindTransport GatewayErrorKind = "transport"
	// KindProtocol means the gateway answered 2xx with a body that is not a JSON object.
	KindProtocol GatewayErrorKind = "protocol"
)

// GatewayError is returned by every failed gateway operation. It bundles the
// operation name with whatever the gateway sent back so callers can decide on
// retries themselves.
type GatewayError struct {
	Kind       GatewayErrorKind
	Operation  string         // e.g. "Payment Initiation"
	StatusCode int            // 0 when no response was received
	Body       []byte         // raw response body, if any
	Response   map[string]any // parsed response body when it was a JSON object
	Err        error          // underlying cause, if any
}

func (e *GatewayError) Error() string {
	switch {
	case e.Kind == KindProtocol:
		return fmt.Sprintf("%s failed: invalid JSON response.", e.Operation)
	case e.StatusCode != 0:
		msg := fmt.Sprintf("%s failed. Status: %d.", e.Operation, e.StatusCode)
		if len(e.Body) > 0 {
			msg += " Response: " + string(e.Body)
		}
		return msg
	case e.Err != nil:
		return fmt.Sprintf("%s request failed: %v", e.Operation, e.Err)
	default:
		return fmt.Sprintf("%s request failed", e.Operation)
	}
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Is lets errors.Is match the kind sentinels.
func (e *GatewayError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrProtocol:
		return e.Kind == KindProtocol
	}
	return false
}

// AsGatewayError extracts a *GatewayError from err.
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
