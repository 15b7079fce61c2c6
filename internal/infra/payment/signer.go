package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

const (
	// FieldPrefix marks the keys that take part in the secure hash; it covers
	// both pp_* protocol fields and the ppmpf_* pass-through fields.
	FieldPrefix = "pp"
	// SecureHashField carries the signature on both request and callback.
	SecureHashField = "pp_SecureHash"

	separator = "&"
)

// Fields is a flat field-name to value mapping as sent to or received from the gateway.
type Fields map[string]string

// Clone returns a shallow copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// With returns a copy of f with key set to value.
func (f Fields) With(key, value string) Fields {
	out := f.Clone()
	out[key] = value
	return out
}

// Eligible returns the entries that participate in signing: recognized prefix,
// non-empty value, and not listed in exclude.
func (f Fields) Eligible(exclude ...string) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if v == "" || !strings.HasPrefix(k, FieldPrefix) || contains(exclude, k) {
			continue
		}
		out[k] = v
	}
	return out
}

// SortedKeys returns the keys of f in byte-wise order.
func (f Fields) SortedKeys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SigningString builds salt&v1&v2... over the eligible fields ordered by key.
func SigningString(fields Fields, salt string) string {
	eligible := fields.Eligible()
	var b strings.Builder
	b.WriteString(salt)
	for _, k := range eligible.SortedKeys() {
		b.WriteString(separator)
		b.WriteString(eligible[k])
	}
	return b.String()
}

// Sign returns the uppercase hex HMAC-SHA256 of SigningString, keyed by salt.
func Sign(fields Fields, salt string) string {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(SigningString(fields, salt)))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

// SignFields returns a copy of fields with pp_SecureHash attached. Any
// existing secure hash is ignored when computing the new one.
func SignFields(fields Fields, salt string) Fields {
	out := fields.Clone()
	delete(out, SecureHashField)
	out[SecureHashField] = Sign(out, salt)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
