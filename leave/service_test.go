package leave_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/leave/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T, stores leave.TxStore) *leave.Service {
	svc := leave.NewService(stores, zaptest.NewLogger(t))
	svc.Now = func() time.Time { return fixedNow }
	seq := 0
	svc.NewID = func() string {
		seq++
		return fmt.Sprintf("leave-%d", seq)
	}
	return svc
}

func newMemoryWithEmployees(t *testing.T, ids ...leave.EmployeeID) *store.Memory {
	mem := store.NewMemory()
	for _, id := range ids {
		require.NoError(t, mem.SaveEmployee(context.Background(), leave.Employee{
			ID:       id,
			Name:     "Employee " + string(id),
			HireDate: leave.NewDate(2020, time.January, 6),
		}))
	}
	return mem
}

func march(day int) leave.Date { return leave.NewDate(2025, time.March, day) }

func annual(emp leave.EmployeeID, from, to leave.Date) leave.ApplyRequest {
	return leave.ApplyRequest{EmployeeID: emp, StartDate: from, EndDate: to, Type: leave.TypeAnnual, Reason: "holiday"}
}

func requireValidation(t *testing.T, err error, reason leave.Reason) *leave.ValidationError {
	t.Helper()
	var vErr *leave.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, reason, vErr.Reason)
	assert.Equal(t, leave.KindValidation, leave.KindOf(err))
	return vErr
}

// =============================================================================
// END-TO-END LIFECYCLE
// =============================================================================

func TestService_ApplyApproveLifecycle(t *testing.T) {
	// GIVEN: An employee with a fresh balance of 15 days
	// WHEN: Applying for March 10-14, approving it, then applying twice more
	// THEN: Balance drops to 10, an overlapping request and an oversized request fail
	ctx := context.Background()
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1"))

	l, err := svc.Apply(ctx, annual("emp-1", march(10), march(14)))
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, l.Status)
	assert.Equal(t, 5, l.Days())
	assert.Equal(t, leave.DateOf(fixedNow), l.AppliedDate)

	approved, err := svc.Approve(ctx, l.ID, "mgr-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, leave.EmployeeID("mgr-1"), *approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedDate)
	assert.Equal(t, leave.DateOf(fixedNow), *approved.ApprovedDate)

	b, err := svc.Balance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assertBalance(t, *b, 15, 5, 10)

	_, err = svc.Apply(ctx, annual("emp-1", march(12), march(13)))
	requireValidation(t, err, leave.ReasonOverlap)

	_, err = svc.Apply(ctx, annual("emp-1", leave.NewDate(2025, time.June, 1), leave.NewDate(2025, time.June, 20)))
	vErr := requireValidation(t, err, leave.ReasonInsufficientBalance)
	assert.Contains(t, vErr.Message, "Remaining: 10 days")

	remaining, err := svc.RemainingBalance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.Equal(t, "10", remaining.String(), "refused applications do not touch the balance")
}

// =============================================================================
// APPLY VALIDATION
// =============================================================================

func TestService_Apply_UnknownEmployee(t *testing.T) {
	svc := newTestService(t, newMemoryWithEmployees(t))

	_, err := svc.Apply(context.Background(), annual("ghost", march(10), march(11)))
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}

func TestService_Apply_InvalidType(t *testing.T) {
	// GIVEN: An employee with no leaves
	// WHEN: Applying with a type outside the catalog
	// THEN: Refused as invalid_type, nothing is stored
	ctx := context.Background()
	mem := newMemoryWithEmployees(t, "emp-1")
	svc := newTestService(t, mem)

	for _, typ := range []leave.Type{"VACATION", ""} {
		_, err := svc.Apply(ctx, leave.ApplyRequest{
			EmployeeID: "emp-1", StartDate: march(10), EndDate: march(11), Type: typ,
		})
		requireValidation(t, err, leave.ReasonInvalidType)
	}

	leaves, err := svc.EmployeeLeaves(ctx, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, leaves)
	b, err := mem.GetBalance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestService_Apply_StartInPast(t *testing.T) {
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1"))

	_, err := svc.Apply(context.Background(), annual("emp-1", leave.NewDate(2025, time.February, 27), march(3)))
	requireValidation(t, err, leave.ReasonStartInPast)
}

func TestService_Apply_EndBeforeStart(t *testing.T) {
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1"))

	_, err := svc.Apply(context.Background(), annual("emp-1", march(10), march(9)))
	requireValidation(t, err, leave.ReasonEndBeforeStart)
}

func TestService_Apply_OverlapWithPending(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1"))

	_, err := svc.Apply(ctx, annual("emp-1", march(10), march(14)))
	require.NoError(t, err)

	// Partial overlap on either edge is refused.
	_, err = svc.Apply(ctx, annual("emp-1", march(8), march(10)))
	requireValidation(t, err, leave.ReasonOverlap)
	_, err = svc.Apply(ctx, annual("emp-1", march(14), march(16)))
	requireValidation(t, err, leave.ReasonOverlap)

	// Adjacent ranges are fine.
	_, err = svc.Apply(ctx, annual("emp-1", march(15), march(16)))
	assert.NoError(t, err)
}

func TestService_Apply_CancelledDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1"))

	l, err := svc.Apply(ctx, annual("emp-1", march(10), march(14)))
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, l.ID, "emp-1")
	require.NoError(t, err)

	_, err = svc.Apply(ctx, annual("emp-1", march(10), march(14)))
	assert.NoError(t, err)
}

func TestService_Apply_FourthPendingRefused(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1"))

	for _, day := range []int{5, 10, 15} {
		_, err := svc.Apply(ctx, leave.ApplyRequest{
			EmployeeID: "emp-1", StartDate: march(day), EndDate: march(day), Type: leave.TypeSick,
		})
		require.NoError(t, err)
	}

	_, err := svc.Apply(ctx, leave.ApplyRequest{
		EmployeeID: "emp-1", StartDate: march(20), EndDate: march(20), Type: leave.TypeSick,
	})
	vErr := requireValidation(t, err, leave.ReasonTooManyPending)
	assert.Equal(t, "You cannot have more than 3 pending leave applications", vErr.Message)
}

func TestService_Apply_SickIgnoresBalance(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1"))

	l, err := svc.Apply(ctx, leave.ApplyRequest{
		EmployeeID: "emp-1", StartDate: march(1), EndDate: march(31), Type: leave.TypeSick,
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, l.ID, "mgr-1")
	require.NoError(t, err)

	b, err := svc.Balance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assertBalance(t, *b, 15, 0, 15)
}

func TestService_Apply_UsesStartYearBalance(t *testing.T) {
	// GIVEN: 2025 is exhausted
	// WHEN: Applying for leave in 2026
	// THEN: The 2026 balance is checked
	ctx := context.Background()
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1"))

	l, err := svc.Apply(ctx, annual("emp-1", leave.NewDate(2025, time.April, 1), leave.NewDate(2025, time.April, 15)))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, l.ID, "mgr-1")
	require.NoError(t, err)

	_, err = svc.Apply(ctx, annual("emp-1", leave.NewDate(2026, time.January, 5), leave.NewDate(2026, time.January, 9)))
	assert.NoError(t, err)
}

func TestService_Apply_FailedApplyPersistsNothing(t *testing.T) {
	ctx := context.Background()
	mem := newMemoryWithEmployees(t, "emp-1")
	svc := newTestService(t, mem)

	_, err := svc.Apply(ctx, annual("emp-1", march(10), march(9)))
	require.Error(t, err)

	b, err := mem.GetBalance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.Nil(t, b, "lazily created balance must be rolled back")

	leaves, err := svc.EmployeeLeaves(ctx, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, leaves)
}

// =============================================================================
// APPROVE / REJECT / CANCEL
// =============================================================================

func TestService_Reject(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1"))

	l, err := svc.Apply(ctx, annual("emp-1", march(10), march(14)))
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, l.ID, "mgr-1", "Team is short-staffed")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "Team is short-staffed", *rejected.RejectionReason)
	require.NotNil(t, rejected.ApprovedBy)
	assert.Equal(t, leave.EmployeeID("mgr-1"), *rejected.ApprovedBy)

	// Rejection never touches the balance.
	b, err := svc.Balance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assertBalance(t, *b, 15, 0, 15)
}

func TestService_ApproveOrReject_RequiresPending(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1"))

	l, err := svc.Apply(ctx, annual("emp-1", march(10), march(14)))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, l.ID, "mgr-1")
	require.NoError(t, err)

	// Approving twice must not charge the balance twice.
	_, err = svc.Approve(ctx, l.ID, "mgr-1")
	var stateErr *leave.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, leave.StatusApproved, stateErr.Status)
	assert.Equal(t, leave.KindInvalidState, leave.KindOf(err))

	_, err = svc.Reject(ctx, l.ID, "mgr-1", "too late")
	assert.ErrorIs(t, err, leave.ErrInvalidState)

	b, err := svc.Balance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assertBalance(t, *b, 15, 5, 10)
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1", "emp-2"))

	l, err := svc.Apply(ctx, annual("emp-1", march(10), march(14)))
	require.NoError(t, err)

	// Someone else cannot cancel it.
	_, err = svc.Cancel(ctx, l.ID, "emp-2")
	var forbidden *leave.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, "You can only cancel your own leave applications", forbidden.Message)
	assert.Equal(t, leave.KindForbidden, leave.KindOf(err))

	cancelled, err := svc.Cancel(ctx, l.ID, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, cancelled.Status)

	// Cancelling twice is an invalid state.
	_, err = svc.Cancel(ctx, l.ID, "emp-1")
	assert.ErrorIs(t, err, leave.ErrInvalidState)
	assert.Contains(t, err.Error(), "Only pending leave applications can be cancelled")
}

func TestService_Cancel_ApprovedRefused(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1"))

	l, err := svc.Apply(ctx, annual("emp-1", march(10), march(14)))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, l.ID, "mgr-1")
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, l.ID, "emp-1")
	assert.ErrorIs(t, err, leave.ErrInvalidState)
}

func TestService_UnknownLeave(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1"))

	_, err := svc.Approve(ctx, "missing", "mgr-1")
	assert.ErrorIs(t, err, leave.ErrLeaveNotFound)
	_, err = svc.Reject(ctx, "missing", "mgr-1", "no")
	assert.ErrorIs(t, err, leave.ErrLeaveNotFound)
	_, err = svc.Cancel(ctx, "missing", "emp-1")
	assert.ErrorIs(t, err, leave.ErrLeaveNotFound)
	_, err = svc.Leave(ctx, "missing")
	assert.ErrorIs(t, err, leave.ErrLeaveNotFound)
	assert.Equal(t, leave.KindNotFound, leave.KindOf(err))
}

func TestService_Delete(t *testing.T) {
	// GIVEN: An approved ANNUAL leave
	// WHEN: An administrator deletes it
	// THEN: The record is gone and the balance keeps its charge until reconciled
	ctx := context.Background()
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1"))

	l, err := svc.Apply(ctx, annual("emp-1", march(10), march(14)))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, l.ID, "mgr-1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, l.ID))
	_, err = svc.Leave(ctx, l.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveNotFound)

	report, err := svc.Reconcile(ctx, "emp-1", 2025, true)
	require.NoError(t, err)
	assert.True(t, report.Drift.Equal(decimal.NewFromInt(5)))
	assertBalance(t, report.Balance, 15, 0, 15)

	assert.ErrorIs(t, svc.Delete(ctx, l.ID), leave.ErrLeaveNotFound)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestService_Queries(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1", "emp-2"))

	a, err := svc.Apply(ctx, annual("emp-1", march(10), march(12)))
	require.NoError(t, err)
	s, err := svc.Apply(ctx, leave.ApplyRequest{EmployeeID: "emp-1", StartDate: march(20), EndDate: march(21), Type: leave.TypeSick})
	require.NoError(t, err)
	other, err := svc.Apply(ctx, annual("emp-2", march(5), march(6)))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, a.ID, "mgr-1")
	require.NoError(t, err)

	all, err := svc.EmployeeLeaves(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID, "ordered by start date")

	pending, err := svc.EmployeeLeavesByStatus(ctx, "emp-1", leave.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, s.ID, pending[0].ID)

	sick, err := svc.EmployeeLeavesByType(ctx, "emp-1", leave.TypeSick)
	require.NoError(t, err)
	require.Len(t, sick, 1)

	// Range queries return leaves lying entirely inside the range.
	inRange, err := svc.EmployeeLeavesInRange(ctx, "emp-1", march(1), march(15))
	require.NoError(t, err)
	require.Len(t, inRange, 1)
	assert.Equal(t, a.ID, inRange[0].ID)
	partial, err := svc.EmployeeLeavesInRange(ctx, "emp-1", march(11), march(31))
	require.NoError(t, err)
	require.Len(t, partial, 1)
	assert.Equal(t, s.ID, partial[0].ID)

	approved, err := svc.ApprovedAnnualLeaves(ctx, "emp-1", 2025)
	require.NoError(t, err)
	require.Len(t, approved, 1)

	// The full list spans every employee and every status.
	everything, err := svc.AllLeaves(ctx)
	require.NoError(t, err)
	require.Len(t, everything, 3)
	assert.Equal(t, other.ID, everything[0].ID)
	assert.Equal(t, a.ID, everything[1].ID)
	assert.Equal(t, s.ID, everything[2].ID)

	// The pending list spans every employee.
	allPending, err := svc.PendingLeaves(ctx)
	require.NoError(t, err)
	require.Len(t, allPending, 2)
	assert.Equal(t, other.ID, allPending[0].ID)
	assert.Equal(t, s.ID, allPending[1].ID)

	remaining, err := svc.RemainingBalance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.True(t, remaining.Equal(decimal.NewFromInt(12)), remaining.String())
}

func TestService_Balance_UnknownEmployee(t *testing.T) {
	svc := newTestService(t, newMemoryWithEmployees(t))

	_, err := svc.Balance(context.Background(), "ghost", 2025)
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestService_ConcurrentApply_SameRange(t *testing.T) {
	// GIVEN: 20 callers racing to book the same days
	// WHEN: All apply at once
	// THEN: Exactly one leave is stored, every other caller sees an overlap
	ctx := context.Background()
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1"))

	const callers = 20
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Apply(ctx, annual("emp-1", march(10), march(14)))
			if err == nil {
				succeeded.Add(1)
				return
			}
			var vErr *leave.ValidationError
			if assert.ErrorAs(t, err, &vErr) {
				assert.Equal(t, leave.ReasonOverlap, vErr.Reason)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	leaves, err := svc.EmployeeLeaves(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, leaves, 1)
}

func TestService_ConcurrentApprove_SumsUsage(t *testing.T) {
	// GIVEN: Three pending ANNUAL leaves of 2, 3 and 4 days
	// WHEN: They are approved in parallel
	// THEN: Used days is exactly 9, no charge is lost
	ctx := context.Background()
	svc := newTestService(t, newMemoryWithEmployees(t, "emp-1"))

	var pending []leave.LeaveID
	for _, r := range [][2]int{{3, 4}, {10, 12}, {20, 23}} {
		l, err := svc.Apply(ctx, annual("emp-1", march(r[0]), march(r[1])))
		require.NoError(t, err)
		pending = append(pending, l.ID)
	}

	var wg sync.WaitGroup
	for _, id := range pending {
		wg.Add(1)
		go func(id leave.LeaveID) {
			defer wg.Done()
			_, err := svc.Approve(ctx, id, "mgr-1")
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	b, err := svc.Balance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assertBalance(t, *b, 15, 9, 6)
}

func TestService_ConcurrentApprove_ManyEmployees(t *testing.T) {
	ctx := context.Background()
	employees := []leave.EmployeeID{"emp-1", "emp-2", "emp-3", "emp-4", "emp-5", "emp-6"}
	svc := newTestService(t, newMemoryWithEmployees(t, employees...))

	var pending []leave.LeaveID
	for _, emp := range employees {
		for _, r := range [][2]int{{3, 4}, {10, 12}} {
			l, err := svc.Apply(ctx, annual(emp, march(r[0]), march(r[1])))
			require.NoError(t, err)
			pending = append(pending, l.ID)
		}
	}

	var wg sync.WaitGroup
	for _, id := range pending {
		wg.Add(1)
		go func(id leave.LeaveID) {
			defer wg.Done()
			_, err := svc.Approve(ctx, id, "mgr-1")
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	for _, emp := range employees {
		b, err := svc.Balance(ctx, emp, 2025)
		require.NoError(t, err)
		assertBalance(t, *b, 15, 5, 10)
	}
}

// =============================================================================
// INFRASTRUCTURE FAILURES
// =============================================================================

var errBoom = errors.New("disk on fire")

// failingStore fails one named operation inside transactions.
type failingStore struct {
	*store.Memory
	failOn string
}

func (f *failingStore) WithTx(ctx context.Context, fn func(leave.Stores) error) error {
	return f.Memory.WithTx(ctx, func(tx leave.Stores) error {
		return fn(failingTx{Stores: tx, failOn: f.failOn})
	})
}

func (f *failingStore) PendingLeaves(ctx context.Context) ([]leave.Leave, error) {
	if f.failOn == "pending" {
		return nil, errBoom
	}
	return f.Memory.PendingLeaves(ctx)
}

type failingTx struct {
	leave.Stores
	failOn string
}

func (f failingTx) CountPending(ctx context.Context, id leave.EmployeeID) (int, error) {
	if f.failOn == "count" {
		return 0, errBoom
	}
	return f.Stores.CountPending(ctx, id)
}

func (f failingTx) UpdateLeave(ctx context.Context, l leave.Leave) error {
	if f.failOn == "update" {
		return errBoom
	}
	return f.Stores.UpdateLeave(ctx, l)
}

func TestService_Apply_StoreFailureIsInfrastructure(t *testing.T) {
	fs := &failingStore{Memory: newMemoryWithEmployees(t, "emp-1"), failOn: "count"}
	svc := newTestService(t, fs)

	_, err := svc.Apply(context.Background(), annual("emp-1", march(10), march(14)))
	require.Error(t, err)
	assert.ErrorIs(t, err, leave.ErrInfrastructure)
	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, leave.ErrValidationFailed)
	assert.Equal(t, leave.KindInfrastructure, leave.KindOf(err))

	var infraErr *leave.InfrastructureError
	require.ErrorAs(t, err, &infraErr)
	assert.Equal(t, "count pending leaves", infraErr.Op)
}

func TestService_Approve_LeaveWriteFailureRollsBackBalance(t *testing.T) {
	// GIVEN: A pending ANNUAL leave
	// WHEN: The leave write fails after the balance write
	// THEN: Neither write is visible
	ctx := context.Background()
	fs := &failingStore{Memory: newMemoryWithEmployees(t, "emp-1")}
	svc := newTestService(t, fs)

	l, err := svc.Apply(ctx, annual("emp-1", march(10), march(14)))
	require.NoError(t, err)

	fs.failOn = "update"
	_, err = svc.Approve(ctx, l.ID, "mgr-1")
	assert.ErrorIs(t, err, leave.ErrInfrastructure)

	fs.failOn = ""
	b, err := svc.Balance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assertBalance(t, *b, 15, 0, 15)

	got, err := svc.Leave(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, got.Status)
}

func TestService_Query_StoreFailure(t *testing.T) {
	fs := &failingStore{Memory: newMemoryWithEmployees(t), failOn: "pending"}
	svc := newTestService(t, fs)

	_, err := svc.PendingLeaves(context.Background())
	assert.ErrorIs(t, err, leave.ErrInfrastructure)
}
