package domain

import (
	"strings"
	"time"
)

// IdentityFields is the strict, validated record produced at the ingress
// boundary from an OCR result (or manual entry). Business logic only ever
// sees this type, never the loose service response.
type IdentityFields struct {
	NationalID  NationalID
	GivenNames  string
	FamilyNames string
	Nationality string
	Sex         string
	BirthDate   time.Time
	Age         int
}

// HasNames reports whether both name fields are present. Required when a ban
// creates a previously unknown client.
func (f IdentityFields) HasNames() bool {
	return strings.TrimSpace(f.GivenNames) != "" && strings.TrimSpace(f.FamilyNames) != ""
}
