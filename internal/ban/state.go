// Package ban holds the pure ban-state decision logic. No I/O lives here:
// given a requested transition and a clock, it computes the next state and
// authorizes the transition. Persistence and audit belong to the access
// engine.
package ban

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
)

// DurationPermanent is the sentinel duration for a ban with no end date.
const DurationPermanent = "Permanente"

// Level bounds. Level 0 means not banned, 1..5 are severity tiers.
const (
	MinLevel = 1
	MaxLevel = 5
)

// State is the ban portion of a client record.
type State struct {
	Banned      bool
	Level       int
	Duration    string
	Reason      string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
}

// Compute derives the banned state for a level 1..5 ban. A "Permanente"
// duration yields a nil end date; any other duration must be a whole day
// count, and end = start + days. An unparsable duration is a validation
// error, never a silently invalid date.
func Compute(level int, durationSpec, reason, description string, now time.Time) (State, error) {
	if level < MinLevel || level > MaxLevel {
		return State{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("ban level must be between %d and %d, got %d", MinLevel, MaxLevel, level))
	}

	durationSpec = strings.TrimSpace(durationSpec)
	start := now
	state := State{
		Banned:      true,
		Level:       level,
		Duration:    durationSpec,
		Reason:      strings.TrimSpace(reason),
		Description: strings.TrimSpace(description),
		StartDate:   &start,
	}

	if durationSpec == DurationPermanent {
		return state, nil
	}

	days, err := strconv.Atoi(durationSpec)
	if err != nil || days <= 0 {
		return State{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("ban duration must be %q or a positive day count, got %q", DurationPermanent, durationSpec))
	}
	end := start.Add(time.Duration(days) * 24 * time.Hour)
	state.EndDate = &end
	return state, nil
}

// Lift is the unbanned state: every ban field cleared.
func Lift() State {
	return State{}
}

// CanLift authorizes lifting a ban. Guards may ban but never unban; any
// other role may.
func CanLift(role domain.Role) error {
	if role == domain.RoleGuardia {
		return dErrors.New(dErrors.CodeForbidden, "guardia role may not lift bans")
	}
	return nil
}

// Classification is the read-only client type shown to staff on every scan.
// It is recomputed per scan and never persisted.
type Classification string

const (
	ClassBaneado  Classification = "Baneado"
	ClassInvitado Classification = "Invitado"
	ClassRegular  Classification = "Regular"
)

// Classify orders the classification rules: an active ban wins over guest
// list membership, and everything else is a regular visitor.
func Classify(banned, guestListed bool) Classification {
	switch {
	case banned:
		return ClassBaneado
	case guestListed:
		return ClassInvitado
	default:
		return ClassRegular
	}
}
