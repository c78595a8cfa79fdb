/*
service.go - Leave application lifecycle

PURPOSE:
  Orchestrates apply / approve / reject / cancel and the read-only queries.
  Fetches the facts the Validator needs, runs it, and writes through the stores.

STATE MACHINE:
  ┌──────────┐  approve   ┌──────────┐
  │ PENDING  │──────────▶ │ APPROVED │──▶ ANNUAL: RecordUsage(start year, days)
  │          │  reject    ├──────────┤
  │          │──────────▶ │ REJECTED │
  │          │  cancel    ├──────────┤
  │          │──────────▶ │CANCELLED │
  └──────────┘            └──────────┘
  Terminal states are final. Approve and reject require PENDING, like cancel.

ATOMICITY:
  Apply (overlap/pending/balance check, then insert) and approve (balance write,
  then leave write) each run inside one TxStore.WithTx call. A failed apply
  persists nothing, not even a lazily created balance.

WRITE ORDER ON APPROVE:
  Balance first, leave second. The leave write is the completion signal. On a
  store that cannot make both one transaction, a crash in between leaves the
  balance charged while the leave is still PENDING. Reconcile detects that.

EXAMPLE:
  svc := leave.NewService(store, logger)
  l, err := svc.Apply(ctx, leave.ApplyRequest{EmployeeID: "emp-1", ...})
  l, err = svc.Approve(ctx, l.ID, "mgr-1")

SEE ALSO:
  - validator.go: Rules
  - ledger.go:    Balance accounting
  - reconcile.go: Balance drift detection
*/
package leave

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	Store  TxStore
	Ledger *Ledger
	Logger *zap.Logger

	// Now and NewID are overridable for deterministic tests.
	Now   func() time.Time
	NewID func() string
}

func NewService(store TxStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		Store:  store,
		Ledger: NewLedger(),
		Logger: logger.Named("leave.service"),
		Now:    time.Now,
		NewID:  uuid.NewString,
	}
	s.Ledger.Now = func() time.Time { return s.Now() }
	return s
}

func (s *Service) today() Date { return DateOf(s.Now()) }

// ApplyRequest is the input of Apply.
type ApplyRequest struct {
	EmployeeID EmployeeID
	StartDate  Date
	EndDate    Date
	Type       Type
	Reason     string
}

// =============================================================================
// APPLY
// =============================================================================

// Apply validates and records a new PENDING leave application.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (*Leave, error) {
	var created Leave
	err := s.Store.WithTx(ctx, func(tx Stores) error {
		emp, err := tx.GetEmployee(ctx, req.EmployeeID)
		if err != nil {
			return infra("lookup employee", err)
		}
		if emp == nil {
			return ErrEmployeeNotFound
		}

		overlapping, err := tx.OverlappingLeaves(ctx, req.EmployeeID, req.StartDate, req.EndDate)
		if err != nil {
			return infra("load overlapping leaves", err)
		}
		pending, err := tx.CountPending(ctx, req.EmployeeID)
		if err != nil {
			return infra("count pending leaves", err)
		}

		facts := Facts{
			EmployeeExists: true,
			Today:          s.today(),
			StartDate:      req.StartDate,
			EndDate:        req.EndDate,
			Type:           req.Type,
			Overlapping:    overlapping,
			PendingCount:   pending,
		}
		if req.Type.Tracked() {
			balance, err := s.Ledger.GetOrCreate(ctx, tx, req.EmployeeID, req.StartDate.Year())
			if err != nil {
				return infra("load balance", err)
			}
			facts.Remaining = balance.RemainingDays
		}

		if err := Validate(facts); err != nil {
			return err
		}

		created = Leave{
			ID:          LeaveID(s.NewID()),
			EmployeeID:  req.EmployeeID,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			Type:        req.Type,
			Reason:      req.Reason,
			Status:      StatusPending,
			AppliedDate: s.today(),
		}
		return infra("create leave", tx.CreateLeave(ctx, created))
	})
	if err != nil {
		s.logFailure("apply", err, zap.String("employee_id", string(req.EmployeeID)))
		return nil, infra("apply", err)
	}

	s.Logger.Info("leave applied",
		zap.String("leave_id", string(created.ID)),
		zap.String("employee_id", string(created.EmployeeID)),
		zap.String("type", string(created.Type)),
		zap.Int("days", created.Days()),
	)
	return &created, nil
}

// =============================================================================
// APPROVE / REJECT / CANCEL
// =============================================================================

// Approve approves a PENDING leave. ANNUAL leave is charged to the balance of
// its start year before the leave itself is written.
func (s *Service) Approve(ctx context.Context, id LeaveID, approverID EmployeeID) (*Leave, error) {
	var approved Leave
	err := s.Store.WithTx(ctx, func(tx Stores) error {
		l, err := loadPending(ctx, tx, id, "Only pending leave applications can be approved")
		if err != nil {
			return err
		}

		today := s.today()
		l.Status = StatusApproved
		l.ApprovedBy = &approverID
		l.ApprovedDate = &today

		if l.Type.Tracked() {
			if _, err := s.Ledger.RecordUsage(ctx, tx, l.EmployeeID, l.StartDate.Year(), l.Days()); err != nil {
				return infra("record usage", err)
			}
		}

		if err := tx.UpdateLeave(ctx, l); err != nil {
			return infra("update leave", err)
		}
		approved = l
		return nil
	})
	if err != nil {
		s.logFailure("approve", err, zap.String("leave_id", string(id)))
		return nil, infra("approve", err)
	}

	s.Logger.Info("leave approved",
		zap.String("leave_id", string(id)),
		zap.String("approver_id", string(approverID)),
	)
	return &approved, nil
}

// Reject rejects a PENDING leave with a reason.
func (s *Service) Reject(ctx context.Context, id LeaveID, approverID EmployeeID, reason string) (*Leave, error) {
	var rejected Leave
	err := s.Store.WithTx(ctx, func(tx Stores) error {
		l, err := loadPending(ctx, tx, id, "Only pending leave applications can be rejected")
		if err != nil {
			return err
		}

		today := s.today()
		l.Status = StatusRejected
		l.ApprovedBy = &approverID
		l.ApprovedDate = &today
		l.RejectionReason = &reason

		if err := tx.UpdateLeave(ctx, l); err != nil {
			return infra("update leave", err)
		}
		rejected = l
		return nil
	})
	if err != nil {
		s.logFailure("reject", err, zap.String("leave_id", string(id)))
		return nil, infra("reject", err)
	}

	s.Logger.Info("leave rejected", zap.String("leave_id", string(id)))
	return &rejected, nil
}

// Cancel withdraws the employee's own PENDING leave.
func (s *Service) Cancel(ctx context.Context, id LeaveID, employeeID EmployeeID) (*Leave, error) {
	var cancelled Leave
	err := s.Store.WithTx(ctx, func(tx Stores) error {
		l, err := tx.GetLeave(ctx, id)
		if err != nil {
			return infra("load leave", err)
		}
		if l == nil {
			return ErrLeaveNotFound
		}
		if l.EmployeeID != employeeID {
			return &ForbiddenError{Message: "You can only cancel your own leave applications"}
		}
		if l.Status != StatusPending {
			return &StateError{LeaveID: id, Status: l.Status, Message: "Only pending leave applications can be cancelled"}
		}

		l.Status = StatusCancelled
		if err := tx.UpdateLeave(ctx, *l); err != nil {
			return infra("update leave", err)
		}
		cancelled = *l
		return nil
	})
	if err != nil {
		s.logFailure("cancel", err, zap.String("leave_id", string(id)))
		return nil, infra("cancel", err)
	}

	s.Logger.Info("leave cancelled", zap.String("leave_id", string(id)))
	return &cancelled, nil
}

// Delete removes a leave record outright. Administrative only: deleting an
// APPROVED ANNUAL leave does not refund the balance; Reconcile with repair does.
func (s *Service) Delete(ctx context.Context, id LeaveID) error {
	var deleted Leave
	err := s.Store.WithTx(ctx, func(tx Stores) error {
		l, err := tx.GetLeave(ctx, id)
		if err != nil {
			return infra("load leave", err)
		}
		if l == nil {
			return ErrLeaveNotFound
		}
		deleted = *l
		return infra("delete leave", tx.DeleteLeave(ctx, id))
	})
	if err != nil {
		s.logFailure("delete", err, zap.String("leave_id", string(id)))
		return infra("delete", err)
	}

	if deleted.Status == StatusApproved && deleted.Type.Tracked() {
		s.Logger.Warn("approved annual leave deleted, balance not refunded",
			zap.String("leave_id", string(id)),
			zap.String("employee_id", string(deleted.EmployeeID)),
			zap.Int("year", deleted.StartDate.Year()),
		)
		return nil
	}
	s.Logger.Info("leave deleted", zap.String("leave_id", string(id)))
	return nil
}

func loadPending(ctx context.Context, tx Stores, id LeaveID, msg string) (Leave, error) {
	l, err := tx.GetLeave(ctx, id)
	if err != nil {
		return Leave{}, infra("load leave", err)
	}
	if l == nil {
		return Leave{}, ErrLeaveNotFound
	}
	if l.Status != StatusPending {
		return Leave{}, &StateError{LeaveID: id, Status: l.Status, Message: msg}
	}
	return *l, nil
}

// =============================================================================
// QUERIES - Read only
// =============================================================================

func (s *Service) Leave(ctx context.Context, id LeaveID) (*Leave, error) {
	l, err := s.Store.GetLeave(ctx, id)
	if err != nil {
		return nil, infra("get leave", err)
	}
	if l == nil {
		return nil, ErrLeaveNotFound
	}
	return l, nil
}

// AllLeaves lists every leave application of every employee.
func (s *Service) AllLeaves(ctx context.Context) ([]Leave, error) {
	leaves, err := s.Store.AllLeaves(ctx)
	return leaves, infra("list all leaves", err)
}

func (s *Service) EmployeeLeaves(ctx context.Context, employeeID EmployeeID) ([]Leave, error) {
	leaves, err := s.Store.LeavesByEmployee(ctx, employeeID)
	return leaves, infra("list leaves", err)
}

func (s *Service) EmployeeLeavesByStatus(ctx context.Context, employeeID EmployeeID, status Status) ([]Leave, error) {
	leaves, err := s.Store.LeavesByEmployeeAndStatus(ctx, employeeID, status)
	return leaves, infra("list leaves by status", err)
}

func (s *Service) EmployeeLeavesByType(ctx context.Context, employeeID EmployeeID, leaveType Type) ([]Leave, error) {
	leaves, err := s.Store.LeavesByEmployeeAndType(ctx, employeeID, leaveType)
	return leaves, infra("list leaves by type", err)
}

// EmployeeLeavesInRange returns leaves lying entirely inside [from, to].
func (s *Service) EmployeeLeavesInRange(ctx context.Context, employeeID EmployeeID, from, to Date) ([]Leave, error) {
	leaves, err := s.Store.LeavesInRange(ctx, employeeID, from, to)
	return leaves, infra("list leaves in range", err)
}

// ApprovedAnnualLeaves returns approved ANNUAL leaves of the calendar year.
func (s *Service) ApprovedAnnualLeaves(ctx context.Context, employeeID EmployeeID, year int) ([]Leave, error) {
	leaves, err := s.Store.ApprovedAnnualLeaves(ctx, employeeID, year)
	return leaves, infra("list approved annual leaves", err)
}

// PendingLeaves lists PENDING leaves of every employee.
func (s *Service) PendingLeaves(ctx context.Context) ([]Leave, error) {
	leaves, err := s.Store.PendingLeaves(ctx)
	return leaves, infra("list pending leaves", err)
}

// Balance returns the employee's balance for year, creating it on first access.
func (s *Service) Balance(ctx context.Context, employeeID EmployeeID, year int) (*Balance, error) {
	emp, err := s.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, infra("lookup employee", err)
	}
	if emp == nil {
		return nil, ErrEmployeeNotFound
	}

	b, err := s.Ledger.Lookup(ctx, s.Store, employeeID, year)
	if err != nil {
		return nil, infra("load balance", err)
	}
	return &b, nil
}

// RemainingBalance is Balance reduced to the remaining day count.
func (s *Service) RemainingBalance(ctx context.Context, employeeID EmployeeID, year int) (decimal.Decimal, error) {
	b, err := s.Balance(ctx, employeeID, year)
	if err != nil {
		return decimal.Zero, err
	}
	return b.RemainingDays, nil
}

func (s *Service) logFailure(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	if KindOf(err) == KindInfrastructure {
		s.Logger.Error("leave operation failed", fields...)
		return
	}
	s.Logger.Debug("leave operation refused", fields...)
}
