package leave

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// RECONCILIATION - Explicit balance drift check
// =============================================================================

// Reconciliation compares a balance with the approved ANNUAL leaves of its year.
type Reconciliation struct {
	EmployeeID EmployeeID
	Year       int

	// Used according to the balance record.
	Recorded decimal.Decimal
	// Sum of inclusive days of approved ANNUAL leaves in the year.
	Expected decimal.Decimal
	Drift    decimal.Decimal // Recorded - Expected

	Repaired bool
	Balance  Balance
}

func (r Reconciliation) Consistent() bool { return r.Drift.IsZero() }

// Reconcile reports drift between a balance and the leaves it should reflect.
// With repair set, a drifted balance has its used total rewritten to Expected.
// Nothing is changed unless repair is requested.
func (s *Service) Reconcile(ctx context.Context, employeeID EmployeeID, year int, repair bool) (*Reconciliation, error) {
	var report Reconciliation
	err := s.Store.WithTx(ctx, func(tx Stores) error {
		emp, err := tx.GetEmployee(ctx, employeeID)
		if err != nil {
			return infra("lookup employee", err)
		}
		if emp == nil {
			return ErrEmployeeNotFound
		}

		balance, err := s.Ledger.GetOrCreate(ctx, tx, employeeID, year)
		if err != nil {
			return infra("load balance", err)
		}
		approved, err := tx.ApprovedAnnualLeaves(ctx, employeeID, year)
		if err != nil {
			return infra("list approved annual leaves", err)
		}

		expected := decimal.Zero
		for _, l := range approved {
			expected = expected.Add(decimal.NewFromInt(int64(l.Days())))
		}

		report = Reconciliation{
			EmployeeID: employeeID,
			Year:       year,
			Recorded:   balance.UsedDays,
			Expected:   expected,
			Drift:      balance.UsedDays.Sub(expected),
			Balance:    balance,
		}
		if !repair || report.Consistent() {
			return nil
		}

		repaired, err := s.Ledger.SetUsage(ctx, tx, employeeID, year, expected)
		if err != nil {
			return infra("repair balance", err)
		}
		report.Repaired = true
		report.Balance = repaired
		return nil
	})
	if err != nil {
		s.logFailure("reconcile", err, zap.String("employee_id", string(employeeID)), zap.Int("year", year))
		return nil, infra("reconcile", err)
	}

	if !report.Consistent() {
		s.Logger.Warn("balance drift detected",
			zap.String("employee_id", string(employeeID)),
			zap.Int("year", year),
			zap.String("drift", report.Drift.String()),
			zap.Bool("repaired", report.Repaired),
		)
	}
	return &report, nil
}
