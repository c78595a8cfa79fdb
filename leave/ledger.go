/*
ledger.go - Annual leave balance accounting

PURPOSE:
  Owns the Balance aggregate: lazy creation with explicit defaults and usage
  accumulation on approval. One balance exists per (employee, year).

INVARIANTS:
  1. RemainingDays = TotalAllowance - UsedDays, recomputed on every write
  2. GetOrCreate is idempotent: repeated or concurrent first access yields one row
  3. RecordUsage does not re-validate; sufficiency is checked by Validate on apply

KEYING:
  Usage is charged to the year of the leave's StartDate, not the approval date.
  A leave crossing New Year is charged entirely to its start year.

STORE ARGUMENT:
  Every method takes the BalanceStore to use, so the same Ledger works on the
  root store and on the transactional view handed out by WithTx.

SEE ALSO:
  - types.go:     Balance
  - service.go:   Calls RecordUsage on approve
  - reconcile.go: Calls SetUsage on repair
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

type Ledger struct {
	// Allowance for balances created on first access.
	Allowance decimal.Decimal
	Now       func() time.Time

	group singleflight.Group
}

func NewLedger() *Ledger {
	return &Ledger{
		Allowance: decimal.NewFromInt(DefaultAnnualAllowance),
		Now:       time.Now,
	}
}

// GetOrCreate returns the balance for (employee, year), creating it on first access.
func (l *Ledger) GetOrCreate(ctx context.Context, store BalanceStore, employeeID EmployeeID, year int) (Balance, error) {
	existing, err := store.GetBalance(ctx, employeeID, year)
	if err != nil {
		return Balance{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	// Insert-if-absent, then re-read: a concurrent creator may have won.
	if err := store.InsertBalance(ctx, newBalance(employeeID, year, l.Allowance, l.Now())); err != nil {
		return Balance{}, err
	}
	created, err := store.GetBalance(ctx, employeeID, year)
	if err != nil {
		return Balance{}, err
	}
	if created == nil {
		return Balance{}, fmt.Errorf("balance for %s/%d missing after insert", employeeID, year)
	}
	return *created, nil
}

// Lookup is GetOrCreate for the non-transactional read path. Concurrent
// callers for the same key share one store round trip.
func (l *Ledger) Lookup(ctx context.Context, store BalanceStore, employeeID EmployeeID, year int) (Balance, error) {
	key := fmt.Sprintf("%s/%d", employeeID, year)
	v, err, _ := l.group.Do(key, func() (any, error) {
		return l.GetOrCreate(ctx, store, employeeID, year)
	})
	if err != nil {
		return Balance{}, err
	}
	return v.(Balance), nil
}

// RecordUsage adds days to the used total of (employee, year) and saves the balance.
func (l *Ledger) RecordUsage(ctx context.Context, store BalanceStore, employeeID EmployeeID, year int, days int) (Balance, error) {
	b, err := l.GetOrCreate(ctx, store, employeeID, year)
	if err != nil {
		return Balance{}, err
	}
	b.addUsage(decimal.NewFromInt(int64(days)), l.Now())
	if err := store.SaveBalance(ctx, b); err != nil {
		return Balance{}, err
	}
	return b, nil
}

// SetUsage overwrites the used total. Only reconciliation calls this.
func (l *Ledger) SetUsage(ctx context.Context, store BalanceStore, employeeID EmployeeID, year int, used decimal.Decimal) (Balance, error) {
	b, err := l.GetOrCreate(ctx, store, employeeID, year)
	if err != nil {
		return Balance{}, err
	}
	b.setUsage(used, l.Now())
	if err := store.SaveBalance(ctx, b); err != nil {
		return Balance{}, err
	}
	return b, nil
}
