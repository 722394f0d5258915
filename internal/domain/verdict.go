// Package domain contains the pure value types shared across the judge and
// metrics components. All types are immutable once constructed and carry no
// hidden state, which keeps every computation in the system reproducible.
package domain

import "fmt"

// Verdict is the binary outcome of one judgment. It is the single invariant
// the whole system depends on: once a Verdict has left the judge client it is
// always one of the two declared constants, never any other value.
type Verdict string

const (
	// VerdictPass indicates the response correctly answers the question.
	VerdictPass Verdict = "pass"

	// VerdictFail indicates the response is wrong, incomplete, or misleading.
	// It is also the fail-safe value used when a judgment could not be
	// obtained, biasing toward caution.
	VerdictFail Verdict = "fail"
)

// ParseVerdict converts a raw string into a Verdict.
// It returns an error for anything other than the two allowed literals so
// malformed backend output can never masquerade as a valid verdict.
func ParseVerdict(s string) (Verdict, error) {
	switch Verdict(s) {
	case VerdictPass:
		return VerdictPass, nil
	case VerdictFail:
		return VerdictFail, nil
	default:
		return "", fmt.Errorf("invalid verdict %q: must be %q or %q", s, VerdictPass, VerdictFail)
	}
}

// IsValid reports whether v is one of the two allowed verdict values.
func (v Verdict) IsValid() bool {
	return v == VerdictPass || v == VerdictFail
}

// String returns the wire representation of the verdict.
func (v Verdict) String() string { return string(v) }
