package handler

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/Escana/app-escana01-production-sub000/internal/access"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
)

// ScanRequest is the HTTP request body for POST /access/scan.
type ScanRequest struct {
	// Image is the base64-encoded document photo.
	Image string `json:"image"`

	parsedImage []byte
}

// Validate decodes and checks the scan payload.
func (r *ScanRequest) Validate() error {
	if r == nil || strings.TrimSpace(r.Image) == "" {
		return dErrors.New(dErrors.CodeValidation, "image is required")
	}
	image, err := base64.StdEncoding.DecodeString(r.Image)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "image must be valid base64")
	}
	r.parsedImage = image
	return nil
}

// ParsedImage returns the decoded document image.
func (r *ScanRequest) ParsedImage() []byte { return r.parsedImage }

// IdentityPayload is the identity portion shared by accept and ban requests.
type IdentityPayload struct {
	NationalID  string `json:"national_id"`
	GivenNames  string `json:"given_names"`
	FamilyNames string `json:"family_names"`
	Nationality string `json:"nationality"`
	Sex         string `json:"sex"`
	BirthDate   string `json:"birth_date"`
	Age         int    `json:"age"`

	parsedFields domain.IdentityFields
}

func (p *IdentityPayload) validate() error {
	nationalID, err := domain.ParseNationalID(p.NationalID)
	if err != nil {
		return err
	}
	if p.Age < 0 {
		return dErrors.New(dErrors.CodeValidation, "age must not be negative")
	}

	fields := domain.IdentityFields{
		NationalID:  nationalID,
		GivenNames:  strings.TrimSpace(p.GivenNames),
		FamilyNames: strings.TrimSpace(p.FamilyNames),
		Nationality: strings.TrimSpace(p.Nationality),
		Sex:         strings.TrimSpace(p.Sex),
		Age:         p.Age,
	}
	if birthDate := strings.TrimSpace(p.BirthDate); birthDate != "" {
		parsed, err := time.Parse("2006-01-02", birthDate)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "birth_date must be YYYY-MM-DD")
		}
		fields.BirthDate = parsed
	}
	p.parsedFields = fields
	return nil
}

// ParsedFields returns the validated identity fields.
func (p *IdentityPayload) ParsedFields() domain.IdentityFields { return p.parsedFields }

// AcceptRequest is the HTTP request body for POST /access/accept.
type AcceptRequest struct {
	IdentityPayload
	DocumentImage string `json:"document_image,omitempty"`
}

// Validate validates and parses the request.
func (r *AcceptRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return r.validate()
}

// BanActionRequest is the HTTP request body for POST /access/ban. Level 0
// lifts an existing ban.
type BanActionRequest struct {
	IdentityPayload
	Level         int    `json:"level"`
	Duration      string `json:"duration"`
	Reason        string `json:"reason"`
	Description   string `json:"description,omitempty"`
	DocumentImage string `json:"document_image,omitempty"`
}

// Validate validates and parses the request. Level and duration semantics are
// enforced by the engine; only shape problems are rejected here.
func (r *BanActionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := r.validate(); err != nil {
		return err
	}
	if r.Level != 0 && strings.TrimSpace(r.Reason) == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required to ban")
	}
	return nil
}

// BanRequest converts the payload into the engine's ban request.
func (r *BanActionRequest) BanRequest() access.BanRequest {
	return access.BanRequest{
		Level:         r.Level,
		Duration:      r.Duration,
		Reason:        r.Reason,
		Description:   r.Description,
		DocumentImage: r.DocumentImage,
	}
}

// UnbanRequest is the HTTP request body for POST /access/unban.
type UnbanRequest struct {
	NationalID string `json:"national_id"`

	parsedNationalID domain.NationalID
}

// Validate validates and parses the request.
func (r *UnbanRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	nationalID, err := domain.ParseNationalID(r.NationalID)
	if err != nil {
		return err
	}
	r.parsedNationalID = nationalID
	return nil
}

// ParsedNationalID returns the validated national ID.
func (r *UnbanRequest) ParsedNationalID() domain.NationalID { return r.parsedNationalID }
