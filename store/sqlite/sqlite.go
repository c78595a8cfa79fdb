/*
Package sqlite provides a SQLite-backed implementation of the leave stores.

PURPOSE:
  Implements leave.TxStore (EmployeeDirectory, LeaveStore, BalanceStore and
  WithTx) on SQLite. The same SQL works on PostgreSQL with minor dialect changes.

KEY TABLES:
  employees:      Directory records
  leaves:         Leave applications
  leave_balances: One row per (employee_id, year), enforced by the primary key

DATES:
  Calendar dates are stored as TEXT "YYYY-MM-DD", so range predicates compare
  lexicographically. Timestamps are RFC3339. Day quantities are decimal strings.

INDEXES:
  - idx_leaves_employee_dates: overlap, range and year queries (hot path)
  - idx_leaves_status:         global pending list

CONCURRENCY:
  The pool is limited to one connection (SQLite has a single writer, and an
  in-memory database lives on its connection). WithTx serializes transactions
  with a mutex; inside fn every statement runs on the *sql.Tx.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := leave.NewService(store, logger)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - leave/store.go:        Interface definitions
  - leave/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/leave"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements leave.TxStore using SQLite.
type Store struct {
	repo
	db *sql.DB
	mu sync.Mutex
}

var _ leave.TxStore = (*Store)(nil)

// repo runs every query against q, either the pool or an open transaction.
type repo struct {
	q querier
}

var _ leave.Stores = repo{}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store, err := NewFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewFromDB wraps an already opened database and migrates the schema.
func NewFromDB(db *sql.DB) (*Store, error) {
	store := &Store{repo: repo{q: db}, db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		hire_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leaves (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		reason TEXT,
		status TEXT NOT NULL,
		applied_date TEXT NOT NULL,
		approved_by TEXT,
		approved_date TEXT,
		rejection_reason TEXT,
		CHECK (end_date >= start_date)
	);

	CREATE INDEX IF NOT EXISTS idx_leaves_employee_dates
		ON leaves(employee_id, start_date, end_date);
	CREATE INDEX IF NOT EXISTS idx_leaves_status
		ON leaves(status);

	-- No column defaults for the amounts: the ledger writes explicit values.
	CREATE TABLE IF NOT EXISTS leave_balances (
		employee_id TEXT NOT NULL REFERENCES employees(id),
		year INTEGER NOT NULL,
		total_allowance TEXT NOT NULL,
		used_days TEXT NOT NULL,
		remaining_days TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, year)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONAL STORE (leave.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Stores) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(repo{q: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// SaveEmployee saves an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp leave.Employee) error {
	query := `
		INSERT INTO employees (id, name, email, hire_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			hire_date = excluded.hire_date
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Email,
		emp.HireDate.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// ListEmployees returns all employees.
func (s *Store) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, hire_date, created_at FROM employees ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []leave.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// GetEmployee retrieves an employee by ID. Returns nil if absent.
func (r repo) GetEmployee(ctx context.Context, id leave.EmployeeID) (*leave.Employee, error) {
	row := r.q.QueryRowContext(ctx,
		"SELECT id, name, email, hire_date, created_at FROM employees WHERE id = ?",
		id,
	)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(sc scanner) (leave.Employee, error) {
	var (
		emp                 leave.Employee
		email               sql.NullString
		hireDate, createdAt string
	)
	if err := sc.Scan(&emp.ID, &emp.Name, &email, &hireDate, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return emp, err
		}
		return emp, fmt.Errorf("failed to scan employee: %w", err)
	}
	emp.Email = email.String
	hd, err := parseColumnDate("hire_date", hireDate)
	if err != nil {
		return emp, err
	}
	emp.HireDate = hd
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return emp, nil
}

func parseColumnDate(column, value string) (leave.Date, error) {
	d, err := leave.ParseDate(value)
	if err != nil {
		return leave.Date{}, fmt.Errorf("corrupt %s %q: %w", column, value, err)
	}
	return d, nil
}

// =============================================================================
// LEAVE STORE (leave.LeaveStore interface)
// =============================================================================

const leaveColumns = `id, employee_id, start_date, end_date, leave_type, reason, status,
	applied_date, approved_by, approved_date, rejection_reason`

// CreateLeave inserts a new leave application.
func (r repo) CreateLeave(ctx context.Context, l leave.Leave) error {
	query := `INSERT INTO leaves (` + leaveColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.q.ExecContext(ctx, query, leaveArgs(l)...)
	if err != nil {
		return fmt.Errorf("failed to create leave: %w", err)
	}
	return nil
}

// UpdateLeave rewrites the mutable fields of a leave application.
func (r repo) UpdateLeave(ctx context.Context, l leave.Leave) error {
	query := `
		UPDATE leaves SET
			start_date = ?, end_date = ?, leave_type = ?, reason = ?, status = ?,
			approved_by = ?, approved_date = ?, rejection_reason = ?
		WHERE id = ?
	`

	args := leaveArgs(l)
	_, err := r.q.ExecContext(ctx, query,
		args[2], args[3], args[4], args[5], args[6], args[8], args[9], args[10], l.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave: %w", err)
	}
	return nil
}

// DeleteLeave removes a leave application.
func (r repo) DeleteLeave(ctx context.Context, id leave.LeaveID) error {
	if _, err := r.q.ExecContext(ctx, "DELETE FROM leaves WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete leave: %w", err)
	}
	return nil
}

// GetLeave retrieves a leave by ID. Returns nil if absent.
func (r repo) GetLeave(ctx context.Context, id leave.LeaveID) (*leave.Leave, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+leaveColumns+` FROM leaves WHERE id = ?`, id)
	l, err := scanLeave(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// AllLeaves lists every leave application ordered by start date.
func (r repo) AllLeaves(ctx context.Context) ([]leave.Leave, error) {
	return r.queryLeaves(ctx, ``)
}

func (r repo) LeavesByEmployee(ctx context.Context, employeeID leave.EmployeeID) ([]leave.Leave, error) {
	return r.queryLeaves(ctx, `WHERE employee_id = ?`, employeeID)
}

func (r repo) LeavesByEmployeeAndStatus(ctx context.Context, employeeID leave.EmployeeID, status leave.Status) ([]leave.Leave, error) {
	return r.queryLeaves(ctx, `WHERE employee_id = ? AND status = ?`, employeeID, status)
}

func (r repo) LeavesByEmployeeAndType(ctx context.Context, employeeID leave.EmployeeID, leaveType leave.Type) ([]leave.Leave, error) {
	return r.queryLeaves(ctx, `WHERE employee_id = ? AND leave_type = ?`, employeeID, leaveType)
}

// LeavesInRange returns leaves lying entirely inside [from, to].
func (r repo) LeavesInRange(ctx context.Context, employeeID leave.EmployeeID, from, to leave.Date) ([]leave.Leave, error) {
	return r.queryLeaves(ctx,
		`WHERE employee_id = ? AND start_date >= ? AND end_date <= ?`,
		employeeID, from.String(), to.String(),
	)
}

// ApprovedAnnualLeaves returns approved ANNUAL leaves starting in year.
func (r repo) ApprovedAnnualLeaves(ctx context.Context, employeeID leave.EmployeeID, year int) ([]leave.Leave, error) {
	return r.queryLeaves(ctx,
		`WHERE employee_id = ? AND status = ? AND leave_type = ? AND start_date >= ? AND start_date <= ?`,
		employeeID, leave.StatusApproved, leave.TypeAnnual,
		leave.StartOfYear(year).String(), leave.EndOfYear(year).String(),
	)
}

// OverlappingLeaves returns PENDING or APPROVED leaves sharing a day with [from, to].
func (r repo) OverlappingLeaves(ctx context.Context, employeeID leave.EmployeeID, from, to leave.Date) ([]leave.Leave, error) {
	return r.queryLeaves(ctx,
		`WHERE employee_id = ? AND status IN (?, ?) AND start_date <= ? AND end_date >= ?`,
		employeeID, leave.StatusPending, leave.StatusApproved, to.String(), from.String(),
	)
}

func (r repo) CountPending(ctx context.Context, employeeID leave.EmployeeID) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM leaves WHERE employee_id = ? AND status = ?",
		employeeID, leave.StatusPending,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending leaves: %w", err)
	}
	return count, nil
}

// PendingLeaves returns pending leaves of every employee.
func (r repo) PendingLeaves(ctx context.Context) ([]leave.Leave, error) {
	return r.queryLeaves(ctx, `WHERE status = ?`, leave.StatusPending)
}

func (r repo) queryLeaves(ctx context.Context, where string, args ...any) ([]leave.Leave, error) {
	query := `SELECT ` + leaveColumns + ` FROM leaves ` + where + ` ORDER BY start_date ASC, id ASC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaves: %w", err)
	}
	defer rows.Close()

	var leaves []leave.Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}

func leaveArgs(l leave.Leave) []any {
	var approvedBy, approvedDate, rejectionReason sql.NullString
	if l.ApprovedBy != nil {
		approvedBy = sql.NullString{String: string(*l.ApprovedBy), Valid: true}
	}
	if l.ApprovedDate != nil {
		approvedDate = nullString(l.ApprovedDate.String())
	}
	if l.RejectionReason != nil {
		rejectionReason = sql.NullString{String: *l.RejectionReason, Valid: true}
	}
	return []any{
		l.ID, l.EmployeeID, l.StartDate.String(), l.EndDate.String(), l.Type,
		nullString(l.Reason), l.Status, l.AppliedDate.String(),
		approvedBy, approvedDate, rejectionReason,
	}
}

func scanLeave(sc scanner) (leave.Leave, error) {
	var (
		l                                         leave.Leave
		startDate, endDate, appliedDate           string
		reason, approvedBy, approvedDate, rejectR sql.NullString
	)

	err := sc.Scan(
		&l.ID, &l.EmployeeID, &startDate, &endDate, &l.Type, &reason, &l.Status,
		&appliedDate, &approvedBy, &approvedDate, &rejectR,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return l, err
		}
		return l, fmt.Errorf("failed to scan leave: %w", err)
	}

	if l.StartDate, err = parseColumnDate("start_date", startDate); err != nil {
		return l, err
	}
	if l.EndDate, err = parseColumnDate("end_date", endDate); err != nil {
		return l, err
	}
	if l.AppliedDate, err = parseColumnDate("applied_date", appliedDate); err != nil {
		return l, err
	}
	l.Reason = reason.String
	if approvedBy.Valid {
		id := leave.EmployeeID(approvedBy.String)
		l.ApprovedBy = &id
	}
	if approvedDate.Valid {
		d, err := parseColumnDate("approved_date", approvedDate.String)
		if err != nil {
			return l, err
		}
		l.ApprovedDate = &d
	}
	if rejectR.Valid {
		r := rejectR.String
		l.RejectionReason = &r
	}
	return l, nil
}

// =============================================================================
// BALANCE STORE (leave.BalanceStore interface)
// =============================================================================

// GetBalance retrieves the balance for (employee, year). Returns nil if absent.
func (r repo) GetBalance(ctx context.Context, employeeID leave.EmployeeID, year int) (*leave.Balance, error) {
	query := `
		SELECT employee_id, year, total_allowance, used_days, remaining_days, created_at, updated_at
		FROM leave_balances WHERE employee_id = ? AND year = ?
	`

	var (
		b                      leave.Balance
		total, used, remaining string
		createdAt, updatedAt   string
	)
	err := r.q.QueryRowContext(ctx, query, employeeID, year).Scan(
		&b.EmployeeID, &b.Year, &total, &used, &remaining, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	if b.TotalAllowance, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("corrupt total_allowance %q: %w", total, err)
	}
	if b.UsedDays, err = decimal.NewFromString(used); err != nil {
		return nil, fmt.Errorf("corrupt used_days %q: %w", used, err)
	}
	if b.RemainingDays, err = decimal.NewFromString(remaining); err != nil {
		return nil, fmt.Errorf("corrupt remaining_days %q: %w", remaining, err)
	}
	b.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	b.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &b, nil
}

// InsertBalance writes b unless the (employee, year) row exists.
func (r repo) InsertBalance(ctx context.Context, b leave.Balance) error {
	query := `
		INSERT INTO leave_balances
		(employee_id, year, total_allowance, used_days, remaining_days, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, year) DO NOTHING
	`

	if _, err := r.q.ExecContext(ctx, query, balanceArgs(b)...); err != nil {
		return fmt.Errorf("failed to insert balance: %w", err)
	}
	return nil
}

// SaveBalance upserts b.
func (r repo) SaveBalance(ctx context.Context, b leave.Balance) error {
	query := `
		INSERT INTO leave_balances
		(employee_id, year, total_allowance, used_days, remaining_days, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, year) DO UPDATE SET
			total_allowance = excluded.total_allowance,
			used_days = excluded.used_days,
			remaining_days = excluded.remaining_days,
			updated_at = excluded.updated_at
	`

	if _, err := r.q.ExecContext(ctx, query, balanceArgs(b)...); err != nil {
		return fmt.Errorf("failed to save balance: %w", err)
	}
	return nil
}

func balanceArgs(b leave.Balance) []any {
	return []any{
		b.EmployeeID, b.Year,
		b.TotalAllowance.String(), b.UsedDays.String(), b.RemainingDays.String(),
		b.CreatedAt.UTC().Format(time.RFC3339Nano), b.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset deletes all data. Development only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"leave_balances", "leaves", "employees"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
