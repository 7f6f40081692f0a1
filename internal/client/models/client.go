package models

import (
	"time"

	"github.com/Escana/app-escana01-production-sub000/internal/ban"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
)

// Client is the identity record for a visitor, keyed by national ID within
// an establishment. Created on first scan or first ban, never deleted,
// mutated in place on every ban/unban.
type Client struct {
	ID              domain.ClientID
	NationalID      domain.NationalID
	EstablishmentID domain.EstablishmentID

	GivenNames  string
	FamilyNames string
	Nationality string
	Sex         string
	BirthDate   time.Time
	Age         int

	IsBanned       bool
	BanLevel       int
	BanDuration    string
	BanReason      string
	BanDescription string
	BanStartDate   *time.Time
	BanEndDate     *time.Time

	// DocumentImage is an opaque reference to the captured document photo.
	DocumentImage string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New builds a client from validated identity fields. The establishment
// always comes from the actor, never from client-supplied input.
func New(id domain.ClientID, fields domain.IdentityFields, establishmentID domain.EstablishmentID, now time.Time) *Client {
	return &Client{
		ID:              id,
		NationalID:      fields.NationalID,
		EstablishmentID: establishmentID,
		GivenNames:      fields.GivenNames,
		FamilyNames:     fields.FamilyNames,
		Nationality:     fields.Nationality,
		Sex:             fields.Sex,
		BirthDate:       fields.BirthDate,
		Age:             fields.Age,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// ApplyBan writes a computed banned state onto the record, leaving identity
// fields untouched.
func (c *Client) ApplyBan(state ban.State, now time.Time) {
	c.IsBanned = state.Banned
	c.BanLevel = state.Level
	c.BanDuration = state.Duration
	c.BanReason = state.Reason
	c.BanDescription = state.Description
	c.BanStartDate = state.StartDate
	c.BanEndDate = state.EndDate
	c.UpdatedAt = now
}

// ApplyLift clears every ban field.
func (c *Client) ApplyLift(now time.Time) {
	c.ApplyBan(ban.Lift(), now)
}

// CheckBanInvariant verifies the cross-field ban invariant:
// level 0 ⇔ not banned ⇔ reason/start/end all empty, and a nil end date on an
// active ban only for a permanent duration.
func (c *Client) CheckBanInvariant() error {
	if !c.IsBanned {
		if c.BanLevel != 0 || c.BanReason != "" || c.BanStartDate != nil || c.BanEndDate != nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "unbanned client carries ban fields")
		}
		return nil
	}
	if c.BanLevel < ban.MinLevel || c.BanLevel > ban.MaxLevel {
		return dErrors.New(dErrors.CodeInvariantViolation, "banned client has level outside 1..5")
	}
	if c.BanStartDate == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "banned client has no start date")
	}
	if (c.BanEndDate == nil) != (c.BanDuration == ban.DurationPermanent) {
		return dErrors.New(dErrors.CodeInvariantViolation, "end date must be absent exactly for permanent bans")
	}
	return nil
}

// Clone returns a copy so store callers cannot mutate shared state.
func (c *Client) Clone() *Client {
	copied := *c
	if c.BanStartDate != nil {
		start := *c.BanStartDate
		copied.BanStartDate = &start
	}
	if c.BanEndDate != nil {
		end := *c.BanEndDate
		copied.BanEndDate = &end
	}
	return &copied
}
