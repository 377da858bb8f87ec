package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/go-cmp/cmp"
)

// DomainIR is the domain prefix for IR fingerprints.
// Version suffix enables future algorithm migration.
const DomainIR = "doctrans/ir/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content hash of the comparable part of r:
// short and long doc, params (in order) and returns.
// Two IRs with equal fingerprints are structurally equal.
func Fingerprint(r *IR) (string, error) {
	canonical, err := MarshalCanonical(comparableForm(r))
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainIR, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFingerprint(r *IR) string {
	fp, err := Fingerprint(r)
	if err != nil {
		panic(err)
	}
	return fp
}

// Equal reports whether a and b agree on docs, params and returns.
// Name, kind and Internal never participate.
func Equal(a, b *IR) bool {
	if a == nil || b == nil {
		return a == b
	}
	fa, errA := Fingerprint(a)
	fb, errB := Fingerprint(b)
	return errA == nil && errB == nil && fa == fb
}

// Diff returns a human-readable report of how b differs from a on the
// comparable fields, or "" when they are equal.
func Diff(a, b *IR) string {
	if a == nil || b == nil {
		if a == b {
			return ""
		}
		return fmt.Sprintf("nil IR: %v vs %v", a == nil, b == nil)
	}
	return cmp.Diff(comparableForm(a), comparableForm(b))
}
