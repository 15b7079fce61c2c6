package payment

import (
	"crypto/hmac"

	"mwallet-gateway/internal/domain/model"
	"mwallet-gateway/internal/domain/ports/adapter"
)

var _ adapter.CallbackVerifier = (*Verifier)(nil)

// Verifier checks the secure hash on inbound gateway callbacks. It holds only
// the salt and is safe for concurrent use.
type Verifier struct {
	salt string
}

func NewVerifier(salt string) *Verifier {
	return &Verifier{salt: salt}
}

// Verify recomputes the hash over every recognized field except pp_SecureHash
// and compares it with the supplied one in constant time.
func (v *Verifier) Verify(fields map[string]string) model.Verdict {
	f := Fields(fields)
	received, ok := f[SecureHashField]
	if !ok {
		return model.VerdictMissingSignature
	}
	expected := Sign(f.Eligible(SecureHashField), v.salt)
	if !hmac.Equal([]byte(expected), []byte(received)) {
		return model.VerdictHashMismatch
	}
	return model.VerdictVerified
}
