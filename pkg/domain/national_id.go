package domain

import (
	"strings"

	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
)

// NationalID is the government-issued identity string (rut) used as the client
// lookup key. It is normalized at the trust boundary: trimmed, upper-cased
// verifier digit, no interior whitespace.
type NationalID string

// ParseNationalID normalizes and validates a raw rut. An empty or
// whitespace-only value is rejected with CodeCriticalData: a scan without a
// usable national ID must never reach a lookup or a write.
func ParseNationalID(raw string) (NationalID, error) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if normalized == "" {
		return "", dErrors.New(dErrors.CodeCriticalData, "national ID is missing from the scan")
	}
	return NationalID(normalized), nil
}

func (n NationalID) String() string { return string(n) }

// IsZero reports whether the national ID is absent.
func (n NationalID) IsZero() bool { return n == "" }
