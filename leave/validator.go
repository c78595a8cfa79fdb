package leave

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VALIDATOR - Pure rule evaluation (no side effects)
// =============================================================================

// Facts is everything Validate needs. The caller fetches it.
type Facts struct {
	EmployeeExists bool
	Today          Date
	StartDate      Date
	EndDate        Date
	Type           Type

	// Active leaves of the employee sharing a day with [StartDate, EndDate].
	Overlapping  []Leave
	PendingCount int

	// Remaining annual balance. Only consulted for ANNUAL leave.
	Remaining decimal.Decimal
}

// Validate checks an application. Rules run in a fixed order; the first failure wins.
func Validate(f Facts) error {
	if !f.EmployeeExists {
		return ErrEmployeeNotFound
	}

	if !f.Type.Valid() {
		return &ValidationError{Reason: ReasonInvalidType, Message: fmt.Sprintf("Invalid leave type %q", f.Type)}
	}

	if f.StartDate.Before(f.Today) {
		return &ValidationError{Reason: ReasonStartInPast, Message: "Start date cannot be in the past"}
	}

	if f.EndDate.Before(f.StartDate) {
		return &ValidationError{Reason: ReasonEndBeforeStart, Message: "End date cannot be before start date"}
	}

	if f.Type.Tracked() {
		days := decimal.NewFromInt(int64(InclusiveDays(f.StartDate, f.EndDate)))
		if f.Remaining.LessThan(days) {
			return &ValidationError{
				Reason:  ReasonInsufficientBalance,
				Message: fmt.Sprintf("Insufficient leave balance. Remaining: %s days", f.Remaining.String()),
			}
		}
	}

	if len(f.Overlapping) > 0 {
		return &ValidationError{Reason: ReasonOverlap, Message: "You already have a leave application for this period"}
	}

	if f.PendingCount >= MaxPending {
		return &ValidationError{
			Reason:  ReasonTooManyPending,
			Message: fmt.Sprintf("You cannot have more than %d pending leave applications", MaxPending),
		}
	}

	return nil
}
