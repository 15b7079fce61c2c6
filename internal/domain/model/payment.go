package model

import (
	"fmt"
	"time"

	"mwallet-gateway/internal/domain"
)

// Gateway response code reported for a completed payment.
const ResponseCodeSuccess = "000"

// MaxCustomFields is the number of ppmpf_N pass-through slots the gateway offers.
const MaxCustomFields = 5

const defaultDescription = "Payment"

// InitiateRequest carries the caller's inputs for a mobile-wallet debit.
type InitiateRequest struct {
	Amount         int64  // smallest currency unit (paisa for PKR)
	MobileNumber   string // payer's wallet number
	CNICLast6      string // last six digits of the payer's national ID
	TransactionRef string // caller-unique, carried untouched
	BillReference  string // defaults to TransactionRef
	Description    string // defaults to "Payment"
	ReturnURL      string // optional; omitted from the payload when empty
	// Custom holds ppmpf_1..ppmpf_5 values keyed by field name.
	Custom map[string]string
}

// Normalize applies defaults and validates the request.
func (r InitiateRequest) Normalize() (InitiateRequest, error) {
	if r.Amount <= 0 {
		return r, fmt.Errorf("amount must be positive: %w", domain.ErrInvalidArgument)
	}
	if r.MobileNumber == "" {
		return r, fmt.Errorf("mobile number is required: %w", domain.ErrInvalidArgument)
	}
	if r.CNICLast6 == "" {
		return r, fmt.Errorf("cnic fragment is required: %w", domain.ErrInvalidArgument)
	}
	if r.TransactionRef == "" {
		return r, fmt.Errorf("transaction reference is required: %w", domain.ErrInvalidArgument)
	}
	for k := range r.Custom {
		if !IsCustomField(k) {
			return r, fmt.Errorf("unsupported custom field %q: %w", k, domain.ErrInvalidArgument)
		}
	}
	if r.BillReference == "" {
		r.BillReference = r.TransactionRef
	}
	if r.Description == "" {
		r.Description = defaultDescription
	}
	return r, nil
}

// CustomFieldName returns the pass-through field name for slot n (1-based).
func CustomFieldName(n int) string { return fmt.Sprintf("ppmpf_%d", n) }

// IsCustomField reports whether key is one of ppmpf_1..ppmpf_5.
func IsCustomField(key string) bool {
	for i := 1; i <= MaxCustomFields; i++ {
		if key == CustomFieldName(i) {
			return true
		}
	}
	return false
}

// Notification is an inbound gateway callback. Nothing in it may be trusted
// until its secure hash has been verified.
type Notification struct {
	Fields     map[string]string
	ReceivedAt time.Time
}

func (n Notification) ResponseCode() string    { return n.Fields["pp_ResponseCode"] }
func (n Notification) ResponseMessage() string { return n.Fields["pp_ResponseMessage"] }

// TransactionRef returns pp_TxnRefNo or "N/A".
func (n Notification) TransactionRef() string {
	if v := n.Fields["pp_TxnRefNo"]; v != "" {
		return v
	}
	return "N/A"
}

// Succeeded reports whether the gateway marked the payment as completed.
func (n Notification) Succeeded() bool { return n.ResponseCode() == ResponseCodeSuccess }

// Verdict is the terminal state of verifying one notification.
type Verdict int

const (
	VerdictMissingSignature Verdict = iota
	VerdictHashMismatch
	VerdictVerified
)

func (v Verdict) Verified() bool { return v == VerdictVerified }

func (v Verdict) String() string {
	switch v {
	case VerdictVerified:
		return "verified"
	case VerdictHashMismatch:
		return "hash_mismatch"
	default:
		return "missing_signature"
	}
}

type CallbackEventType string

const (
	EventCallbackReceived CallbackEventType = "callback_received"
	EventPaymentSucceeded CallbackEventType = "payment_succeeded"
	EventPaymentFailed    CallbackEventType = "payment_failed"
)

// CallbackEvent is emitted to listeners; Fields is the full inbound mapping.
type CallbackEvent struct {
	Type   CallbackEventType `json:"type"`
	Fields map[string]string `json:"fields"`
	At     time.Time         `json:"at"`
}

// CallbackOutcome is what the callback use case decided for one notification.
type CallbackOutcome struct {
	Verdict   Verdict
	Succeeded bool // meaningful only when Verdict is verified
}

func (o CallbackOutcome) Accepted() bool { return o.Verdict.Verified() }
