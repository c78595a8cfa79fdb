/*
store.go - Persistence contracts consumed by the leave workflow

PURPOSE:
  Defines the interfaces between the workflow and whatever stores employees,
  leave applications and balances. Any storage technology can satisfy them;
  only the query shapes below are required.

KEY INTERFACES:
  EmployeeDirectory: resolves an employee id
  LeaveStore:        leave applications, point lookup and filtered queries
  BalanceStore:      one balance per (employee, year)
  Stores:            all three, as seen inside or outside a transaction
  TxStore:           Stores plus WithTx for atomic read-modify-write

LOOKUP CONVENTION:
  Point lookups return (nil, nil) when the record does not exist. A non-nil
  error always means the store itself failed.

ATOMICITY:
  The workflow runs apply (check-then-insert) and approve (balance write then
  leave write) inside WithTx. The store must run fn atomically: if fn returns
  an error nothing it wrote may remain visible.

IMPLEMENTATIONS:
  - leave/store/memory.go: In-memory, snapshot + rollback
  - store/sqlite/sqlite.go: SQLite, *sql.Tx
*/
package leave

import "context"

type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
}

type LeaveStore interface {
	CreateLeave(ctx context.Context, l Leave) error
	UpdateLeave(ctx context.Context, l Leave) error
	DeleteLeave(ctx context.Context, id LeaveID) error
	GetLeave(ctx context.Context, id LeaveID) (*Leave, error)

	// AllLeaves returns every application of every employee.
	AllLeaves(ctx context.Context) ([]Leave, error)

	// LeavesByEmployee returns every application of the employee.
	LeavesByEmployee(ctx context.Context, employeeID EmployeeID) ([]Leave, error)
	LeavesByEmployeeAndStatus(ctx context.Context, employeeID EmployeeID, status Status) ([]Leave, error)
	LeavesByEmployeeAndType(ctx context.Context, employeeID EmployeeID, leaveType Type) ([]Leave, error)

	// LeavesInRange returns leaves lying entirely inside [from, to].
	LeavesInRange(ctx context.Context, employeeID EmployeeID, from, to Date) ([]Leave, error)

	// ApprovedAnnualLeaves returns APPROVED ANNUAL leaves starting in the calendar year,
	// matching how approval charges the balance.
	ApprovedAnnualLeaves(ctx context.Context, employeeID EmployeeID, year int) ([]Leave, error)

	// OverlappingLeaves returns PENDING or APPROVED leaves sharing a day with [from, to].
	OverlappingLeaves(ctx context.Context, employeeID EmployeeID, from, to Date) ([]Leave, error)

	CountPending(ctx context.Context, employeeID EmployeeID) (int, error)

	// PendingLeaves returns PENDING leaves of all employees.
	PendingLeaves(ctx context.Context) ([]Leave, error)
}

type BalanceStore interface {
	GetBalance(ctx context.Context, employeeID EmployeeID, year int) (*Balance, error)

	// InsertBalance writes b unless a balance for (employee, year) exists already.
	InsertBalance(ctx context.Context, b Balance) error

	// SaveBalance upserts b.
	SaveBalance(ctx context.Context, b Balance) error
}

type Stores interface {
	EmployeeDirectory
	LeaveStore
	BalanceStore
}

type TxStore interface {
	Stores

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	WithTx(ctx context.Context, fn func(Stores) error) error
}
