// Package ocr adapts the external text-extraction service. The adapter's one
// job besides transport is validation: the loose service response is parsed
// into domain.IdentityFields at this boundary, and a response without a
// usable national ID becomes a critical-data error that stops the pipeline
// before any lookup or write.
package ocr

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
)

// Gateway extracts identity fields from a pre-processed document image.
type Gateway interface {
	Extract(ctx context.Context, image []byte) (*domain.IdentityFields, error)
}

// extractionResponse is the loose wire shape the service returns.
type extractionResponse struct {
	NationalID  string `json:"nationalId"`
	GivenNames  string `json:"givenNames"`
	FamilyNames string `json:"familyNames"`
	Nationality string `json:"nationality"`
	Sex         string `json:"sex"`
	BirthDate   string `json:"birthDate"`
	Age         int    `json:"age"`
	Error       string `json:"error,omitempty"`
}

type extractionRequest struct {
	Image string `json:"image"`
}

// HTTPGateway calls the extraction service over HTTP. No retries here: the
// staff member decides whether to re-scan.
type HTTPGateway struct {
	httpClient *resty.Client
}

// NewHTTPGateway builds a gateway for the given service base URL.
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &HTTPGateway{httpClient: client}
}

func (g *HTTPGateway) Extract(ctx context.Context, image []byte) (*domain.IdentityFields, error) {
	if len(image) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "document image is required")
	}

	var out extractionResponse
	resp, err := g.httpClient.R().
		SetContext(ctx).
		SetBody(extractionRequest{Image: base64.StdEncoding.EncodeToString(image)}).
		SetResult(&out).
		Post("/extract")
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeExternal, "OCR service call failed")
	}
	if resp.IsError() {
		return nil, dErrors.New(dErrors.CodeExternal, "OCR service returned status "+resp.Status())
	}
	if out.Error != "" {
		return nil, dErrors.New(dErrors.CodeExternal, "OCR extraction failed: "+out.Error)
	}

	return parseFields(out)
}

// parseFields validates the loose response into the strict identity record.
func parseFields(raw extractionResponse) (*domain.IdentityFields, error) {
	nationalID, err := domain.ParseNationalID(raw.NationalID)
	if err != nil {
		return nil, err
	}

	fields := &domain.IdentityFields{
		NationalID:  nationalID,
		GivenNames:  strings.TrimSpace(raw.GivenNames),
		FamilyNames: strings.TrimSpace(raw.FamilyNames),
		Nationality: strings.TrimSpace(raw.Nationality),
		Sex:         strings.ToUpper(strings.TrimSpace(raw.Sex)),
		Age:         raw.Age,
	}
	if raw.BirthDate != "" {
		fields.BirthDate = parseBirthDate(raw.BirthDate)
	}
	return fields, nil
}

// parseBirthDate tolerates the date layouts the service has been seen to
// emit. A date that parses to nothing stays zero; only the national ID is
// critical.
func parseBirthDate(raw string) time.Time {
	for _, layout := range []string{"2006-01-02", "02-01-2006", "02/01/2006"} {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return t
		}
	}
	return time.Time{}
}
