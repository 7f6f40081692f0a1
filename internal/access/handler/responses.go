package handler

import (
	"time"

	"github.com/Escana/app-escana01-production-sub000/internal/access"
	"github.com/Escana/app-escana01-production-sub000/internal/client/models"
	"github.com/Escana/app-escana01-production-sub000/internal/visit"
)

// ClientResponse is the client record as exposed over HTTP.
type ClientResponse struct {
	ID          string `json:"id"`
	NationalID  string `json:"national_id"`
	GivenNames  string `json:"given_names"`
	FamilyNames string `json:"family_names"`
	Nationality string `json:"nationality,omitempty"`
	Sex         string `json:"sex,omitempty"`
	BirthDate   string `json:"birth_date,omitempty"`
	Age         int    `json:"age,omitempty"`

	IsBanned     bool       `json:"is_banned"`
	BanLevel     int        `json:"ban_level,omitempty"`
	BanDuration  string     `json:"ban_duration,omitempty"`
	BanReason    string     `json:"ban_reason,omitempty"`
	BanStartDate *time.Time `json:"ban_start_date,omitempty"`
	BanEndDate   *time.Time `json:"ban_end_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromClient converts a client record to its HTTP shape.
func FromClient(client *models.Client) *ClientResponse {
	resp := &ClientResponse{
		ID:           client.ID.String(),
		NationalID:   client.NationalID.String(),
		GivenNames:   client.GivenNames,
		FamilyNames:  client.FamilyNames,
		Nationality:  client.Nationality,
		Sex:          client.Sex,
		Age:          client.Age,
		IsBanned:     client.IsBanned,
		BanLevel:     client.BanLevel,
		BanDuration:  client.BanDuration,
		BanReason:    client.BanReason,
		BanStartDate: client.BanStartDate,
		BanEndDate:   client.BanEndDate,
		CreatedAt:    client.CreatedAt,
		UpdatedAt:    client.UpdatedAt,
	}
	if !client.BirthDate.IsZero() {
		resp.BirthDate = client.BirthDate.Format("2006-01-02")
	}
	return resp
}

// VisitResponse is one ledger entry as exposed over HTTP.
type VisitResponse struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	EntryTime time.Time `json:"entry_time"`
	Status    string    `json:"status"`
}

// FromVisit converts a visit to its HTTP shape.
func FromVisit(v *visit.Visit) *VisitResponse {
	return &VisitResponse{
		ID:        v.ID.String(),
		ClientID:  v.ClientID.String(),
		EntryTime: v.EntryTime,
		Status:    v.Status,
	}
}

// BanInfoResponse is the denial metadata shown to staff.
type BanInfoResponse struct {
	GivenNames  string     `json:"given_names"`
	FamilyNames string     `json:"family_names"`
	Level       int        `json:"level"`
	Reason      string     `json:"reason"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// AcceptResponse is the HTTP response for POST /access/scan and /access/accept.
type AcceptResponse struct {
	Status         string           `json:"status"`
	Classification string           `json:"classification"`
	Client         *ClientResponse  `json:"client,omitempty"`
	Visit          *VisitResponse   `json:"visit,omitempty"`
	Ban            *BanInfoResponse `json:"ban,omitempty"`
}

// FromResult converts an accept evaluation to its HTTP shape.
func FromResult(result *access.AcceptResult) *AcceptResponse {
	resp := &AcceptResponse{
		Status:         string(result.Status),
		Classification: string(result.Classification),
	}
	if result.Client != nil {
		resp.Client = FromClient(result.Client)
	}
	if result.Visit != nil {
		resp.Visit = FromVisit(result.Visit)
	}
	if result.BanInfo != nil {
		resp.Ban = &BanInfoResponse{
			GivenNames:  result.BanInfo.GivenNames,
			FamilyNames: result.BanInfo.FamilyNames,
			Level:       result.BanInfo.Level,
			Reason:      result.BanInfo.Reason,
			EndDate:     result.BanInfo.EndDate,
		}
	}
	return resp
}
