/*
Package leave implements the leave-application workflow and the annual leave ledger.

PURPOSE:
  Employees apply for leave over an inclusive date range. Applications are
  validated against overlap, pending-count and balance rules, then move through
  a small lifecycle (pending -> approved | rejected | cancelled). Approved ANNUAL
  leave is charged against a per-employee, per-year balance.

KEY CONCEPTS IN THIS FILE (types.go):
  - Type:    closed set of leave types; only ANNUAL draws on the balance
  - Status:  lifecycle state; every state except PENDING is terminal
  - Leave:   a leave application
  - Balance: yearly annual-leave allowance and usage
  - Employee: directory record resolved before applying

DESIGN PRINCIPLES:
  1. Precision: day quantities use decimal.Decimal
  2. Explicit aggregate: a Balance is created on first access with explicit
     defaults, never from storage-layer column defaults
  3. Enumerations, not hierarchies: Type and Status drive branching directly

SEE ALSO:
  - validator.go: Rule evaluation
  - ledger.go:    Balance creation and usage accounting
  - service.go:   Lifecycle orchestration
  - store.go:     Persistence contracts
*/
package leave

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type LeaveID string

// =============================================================================
// LEAVE TYPE
// =============================================================================

type Type string

const (
	TypeAnnual    Type = "ANNUAL"
	TypeSick      Type = "SICK"
	TypePersonal  Type = "PERSONAL"
	TypeEmergency Type = "EMERGENCY"
	TypeMaternity Type = "MATERNITY"
	TypePaternity Type = "PATERNITY"
)

var allTypes = []Type{TypeAnnual, TypeSick, TypePersonal, TypeEmergency, TypeMaternity, TypePaternity}

// ParseType accepts any letter case ("annual", "Annual", "ANNUAL").
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("invalid leave type %q", s)
	}
	return t, nil
}

func (t Type) Valid() bool {
	for _, v := range allTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Tracked reports whether the type is drawn against the yearly balance.
func (t Type) Tracked() bool { return t == TypeAnnual }

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

var allStatuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("invalid leave status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool { return s != StatusPending }

// Active leaves block overlapping applications. Cancelled and rejected ones don't.
func (s Status) Active() bool { return s == StatusPending || s == StatusApproved }

// =============================================================================
// LEAVE
// =============================================================================

// Leave is a single leave application over an inclusive date range.
type Leave struct {
	ID         LeaveID
	EmployeeID EmployeeID
	StartDate  Date
	EndDate    Date
	Type       Type
	Reason     string
	Status     Status

	AppliedDate Date

	// Set by approve/reject
	ApprovedBy      *EmployeeID
	ApprovedDate    *Date
	RejectionReason *string
}

// Days is the inclusive day count of the leave.
func (l Leave) Days() int { return InclusiveDays(l.StartDate, l.EndDate) }

// Overlaps reports whether the leave shares at least one day with [from, to].
func (l Leave) Overlaps(from, to Date) bool {
	return l.StartDate.BeforeOrEqual(to) && l.EndDate.AfterOrEqual(from)
}

// Within reports whether the leave lies entirely inside [from, to].
func (l Leave) Within(from, to Date) bool {
	return l.StartDate.AfterOrEqual(from) && l.EndDate.BeforeOrEqual(to)
}

// =============================================================================
// BALANCE
// =============================================================================

// DefaultAnnualAllowance is the yearly ANNUAL allowance in days.
const DefaultAnnualAllowance = 15

// MaxPending caps concurrently pending applications per employee.
const MaxPending = 3

// Balance is one employee's annual-leave account for one calendar year.
//
// INVARIANT: RemainingDays == TotalAllowance - UsedDays after every mutation.
type Balance struct {
	EmployeeID     EmployeeID
	Year           int
	TotalAllowance decimal.Decimal
	UsedDays       decimal.Decimal
	RemainingDays  decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func newBalance(employeeID EmployeeID, year int, allowance decimal.Decimal, now time.Time) Balance {
	return Balance{
		EmployeeID:     employeeID,
		Year:           year,
		TotalAllowance: allowance,
		UsedDays:       decimal.Zero,
		RemainingDays:  allowance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (b *Balance) addUsage(days decimal.Decimal, now time.Time) {
	b.setUsage(b.UsedDays.Add(days), now)
}

func (b *Balance) setUsage(used decimal.Decimal, now time.Time) {
	b.UsedDays = used
	b.RemainingDays = b.TotalAllowance.Sub(used)
	b.UpdatedAt = now
}

// =============================================================================
// EMPLOYEE - Directory record
// =============================================================================

type Employee struct {
	ID        EmployeeID
	Name      string
	Email     string
	HireDate  Date
	CreatedAt time.Time
}
