// Package access composes OCR validation, client resolution, the ban state
// machine, and the two ledgers into the accept and ban/unban operations.
package access

import (
	"time"

	"github.com/Escana/app-escana01-production-sub000/internal/ban"
	"github.com/Escana/app-escana01-production-sub000/internal/client/models"
	"github.com/Escana/app-escana01-production-sub000/internal/visit"
)

// Status is the outcome of an accept evaluation.
type Status string

const (
	// StatusGranted means entry was allowed and a visit was recorded.
	StatusGranted Status = "granted"
	// StatusDenied means the client is banned; no visit is recorded.
	StatusDenied Status = "denied"
)

// AcceptOptions carries the optional extras of a scan.
type AcceptOptions struct {
	// DocumentImage, when present, backfills the client record if it has
	// no stored document image yet.
	DocumentImage string
}

// BanInfo is the metadata shown to staff when entry is denied.
type BanInfo struct {
	GivenNames  string
	FamilyNames string
	Level       int
	Reason      string
	EndDate     *time.Time
}

// AcceptResult is the full outcome of an accept evaluation. A denial is a
// successfully evaluated result, not an error.
type AcceptResult struct {
	Status         Status
	Classification ban.Classification
	Client         *models.Client
	Visit          *visit.Visit
	BanInfo        *BanInfo
}

// BanRequest is the requested ban action. Level 0 is a lift request routed
// through the same entry point.
type BanRequest struct {
	Level         int
	Duration      string
	Reason        string
	Description   string
	DocumentImage string
}
