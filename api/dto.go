/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the leave domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Employee:  EmployeeDTO, CreateEmployeeRequest
  Leave:     LeaveDTO, ApplyLeaveRequest, ApproveLeaveRequest,
             RejectLeaveRequest, CancelLeaveRequest
  Balance:   BalanceDTO, RemainingBalanceDTO
  Admin:     ReconcileRequest, ReconciliationDTO

DATES AND AMOUNTS:
  Dates are "YYYY-MM-DD". Day amounts are decimals encoded as JSON strings
  ("15", "7.5") by shopspring/decimal.

VALIDATION:
  Syntax (dates, enums, required fields) is checked in handlers.
  Business rules live in the leave package.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	HireDate  string `json:"hire_date"`
	CreatedAt string `json:"created_at,omitempty"`
}

type CreateEmployeeRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	HireDate string `json:"hire_date"`
}

func toEmployeeDTO(e leave.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:       string(e.ID),
		Name:     e.Name,
		Email:    e.Email,
		HireDate: e.HireDate.String(),
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// LEAVES
// =============================================================================

type LeaveDTO struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Days            int     `json:"days"`
	LeaveType       string  `json:"leave_type"`
	Reason          string  `json:"reason,omitempty"`
	Status          string  `json:"status"`
	AppliedDate     string  `json:"applied_date"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedDate    *string `json:"approved_date,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

func toLeaveDTO(l leave.Leave) LeaveDTO {
	dto := LeaveDTO{
		ID:              string(l.ID),
		EmployeeID:      string(l.EmployeeID),
		StartDate:       l.StartDate.String(),
		EndDate:         l.EndDate.String(),
		Days:            l.Days(),
		LeaveType:       string(l.Type),
		Reason:          l.Reason,
		Status:          string(l.Status),
		AppliedDate:     l.AppliedDate.String(),
		RejectionReason: l.RejectionReason,
	}
	if l.ApprovedBy != nil {
		dto.ApprovedBy = strPtr(string(*l.ApprovedBy))
	}
	if l.ApprovedDate != nil {
		dto.ApprovedDate = strPtr(l.ApprovedDate.String())
	}
	return dto
}

func toLeaveDTOs(leaves []leave.Leave) []LeaveDTO {
	dtos := make([]LeaveDTO, len(leaves))
	for i, l := range leaves {
		dtos[i] = toLeaveDTO(l)
	}
	return dtos
}

// ApplyLeaveRequest is the body of POST /api/employees/{id}/leaves.
type ApplyLeaveRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	LeaveType string `json:"leave_type"`
	Reason    string `json:"reason"`
}

type ApproveLeaveRequest struct {
	ApproverID string `json:"approver_id"`
}

type RejectLeaveRequest struct {
	ApproverID string `json:"approver_id"`
	Reason     string `json:"reason"`
}

// CancelLeaveRequest names the employee withdrawing the application.
type CancelLeaveRequest struct {
	EmployeeID string `json:"employee_id"`
}

// =============================================================================
// BALANCES
// =============================================================================

type BalanceDTO struct {
	EmployeeID     string          `json:"employee_id"`
	Year           int             `json:"year"`
	TotalAllowance decimal.Decimal `json:"total_allowance"`
	UsedDays       decimal.Decimal `json:"used_days"`
	RemainingDays  decimal.Decimal `json:"remaining_days"`
	UpdatedAt      string          `json:"updated_at"`
}

func toBalanceDTO(b leave.Balance) BalanceDTO {
	return BalanceDTO{
		EmployeeID:     string(b.EmployeeID),
		Year:           b.Year,
		TotalAllowance: b.TotalAllowance,
		UsedDays:       b.UsedDays,
		RemainingDays:  b.RemainingDays,
		UpdatedAt:      b.UpdatedAt.Format(time.RFC3339),
	}
}

type RemainingBalanceDTO struct {
	EmployeeID    string          `json:"employee_id"`
	Year          int             `json:"year"`
	RemainingDays decimal.Decimal `json:"remaining_days"`
}

// =============================================================================
// ADMIN
// =============================================================================

type ReconcileRequest struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Repair     bool   `json:"repair"`
}

type ReconciliationDTO struct {
	EmployeeID string          `json:"employee_id"`
	Year       int             `json:"year"`
	Recorded   decimal.Decimal `json:"recorded_used_days"`
	Expected   decimal.Decimal `json:"expected_used_days"`
	Drift      decimal.Decimal `json:"drift"`
	Consistent bool            `json:"consistent"`
	Repaired   bool            `json:"repaired"`
	Balance    BalanceDTO      `json:"balance"`
}

func toReconciliationDTO(r leave.Reconciliation) ReconciliationDTO {
	return ReconciliationDTO{
		EmployeeID: string(r.EmployeeID),
		Year:       r.Year,
		Recorded:   r.Recorded,
		Expected:   r.Expected,
		Drift:      r.Drift,
		Consistent: r.Consistent(),
		Repaired:   r.Repaired,
		Balance:    toBalanceDTO(r.Balance),
	}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Details string `json:"details,omitempty"`
}
