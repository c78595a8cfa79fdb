// Package store provides an in-memory implementation of the leave stores.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	state *state
}

var _ leave.TxStore = (*Memory)(nil)

type balanceKey struct {
	EmployeeID leave.EmployeeID
	Year       int
}

// state holds the data. Its methods assume the caller holds the lock.
type state struct {
	employees map[leave.EmployeeID]leave.Employee
	leaves    map[leave.LeaveID]leave.Leave
	balances  map[balanceKey]leave.Balance
}

func NewMemory() *Memory {
	return &Memory{state: &state{
		employees: make(map[leave.EmployeeID]leave.Employee),
		leaves:    make(map[leave.LeaveID]leave.Leave),
		balances:  make(map[balanceKey]leave.Balance),
	}}
}

// SaveEmployee adds or replaces a directory entry.
func (m *Memory) SaveEmployee(_ context.Context, e leave.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.employees[e.ID] = e
	return nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn while holding the write lock.
// Writes go straight to the maps; a snapshot is restored if fn fails.
func (m *Memory) WithTx(_ context.Context, fn func(leave.Stores) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(m.state); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (s *state) clone() *state {
	c := &state{
		employees: make(map[leave.EmployeeID]leave.Employee, len(s.employees)),
		leaves:    make(map[leave.LeaveID]leave.Leave, len(s.leaves)),
		balances:  make(map[balanceKey]leave.Balance, len(s.balances)),
	}
	for k, v := range s.employees {
		c.employees[k] = v
	}
	for k, v := range s.leaves {
		c.leaves[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	return c
}

// =============================================================================
// LOCKED ACCESSORS - leave.Stores on the root store
// =============================================================================

func (m *Memory) read(fn func(s *state)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(m.state)
}

func (m *Memory) write(fn func(s *state) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.state)
}

func (m *Memory) GetEmployee(ctx context.Context, id leave.EmployeeID) (e *leave.Employee, err error) {
	m.read(func(s *state) { e, err = s.GetEmployee(ctx, id) })
	return
}

func (m *Memory) CreateLeave(ctx context.Context, l leave.Leave) error {
	return m.write(func(s *state) error { return s.CreateLeave(ctx, l) })
}

func (m *Memory) UpdateLeave(ctx context.Context, l leave.Leave) error {
	return m.write(func(s *state) error { return s.UpdateLeave(ctx, l) })
}

func (m *Memory) DeleteLeave(ctx context.Context, id leave.LeaveID) error {
	return m.write(func(s *state) error { return s.DeleteLeave(ctx, id) })
}

func (m *Memory) GetLeave(ctx context.Context, id leave.LeaveID) (l *leave.Leave, err error) {
	m.read(func(s *state) { l, err = s.GetLeave(ctx, id) })
	return
}

func (m *Memory) AllLeaves(ctx context.Context) (out []leave.Leave, err error) {
	m.read(func(s *state) { out, err = s.AllLeaves(ctx) })
	return
}

func (m *Memory) LeavesByEmployee(ctx context.Context, employeeID leave.EmployeeID) (out []leave.Leave, err error) {
	m.read(func(s *state) { out, err = s.LeavesByEmployee(ctx, employeeID) })
	return
}

func (m *Memory) LeavesByEmployeeAndStatus(ctx context.Context, employeeID leave.EmployeeID, status leave.Status) (out []leave.Leave, err error) {
	m.read(func(s *state) { out, err = s.LeavesByEmployeeAndStatus(ctx, employeeID, status) })
	return
}

func (m *Memory) LeavesByEmployeeAndType(ctx context.Context, employeeID leave.EmployeeID, leaveType leave.Type) (out []leave.Leave, err error) {
	m.read(func(s *state) { out, err = s.LeavesByEmployeeAndType(ctx, employeeID, leaveType) })
	return
}

func (m *Memory) LeavesInRange(ctx context.Context, employeeID leave.EmployeeID, from, to leave.Date) (out []leave.Leave, err error) {
	m.read(func(s *state) { out, err = s.LeavesInRange(ctx, employeeID, from, to) })
	return
}

func (m *Memory) ApprovedAnnualLeaves(ctx context.Context, employeeID leave.EmployeeID, year int) (out []leave.Leave, err error) {
	m.read(func(s *state) { out, err = s.ApprovedAnnualLeaves(ctx, employeeID, year) })
	return
}

func (m *Memory) OverlappingLeaves(ctx context.Context, employeeID leave.EmployeeID, from, to leave.Date) (out []leave.Leave, err error) {
	m.read(func(s *state) { out, err = s.OverlappingLeaves(ctx, employeeID, from, to) })
	return
}

func (m *Memory) CountPending(ctx context.Context, employeeID leave.EmployeeID) (n int, err error) {
	m.read(func(s *state) { n, err = s.CountPending(ctx, employeeID) })
	return
}

func (m *Memory) PendingLeaves(ctx context.Context) (out []leave.Leave, err error) {
	m.read(func(s *state) { out, err = s.PendingLeaves(ctx) })
	return
}

func (m *Memory) GetBalance(ctx context.Context, employeeID leave.EmployeeID, year int) (b *leave.Balance, err error) {
	m.read(func(s *state) { b, err = s.GetBalance(ctx, employeeID, year) })
	return
}

func (m *Memory) InsertBalance(ctx context.Context, b leave.Balance) error {
	return m.write(func(s *state) error { return s.InsertBalance(ctx, b) })
}

func (m *Memory) SaveBalance(ctx context.Context, b leave.Balance) error {
	return m.write(func(s *state) error { return s.SaveBalance(ctx, b) })
}

// =============================================================================
// STATE - unlocked implementation, also the view handed to WithTx
// =============================================================================

func (s *state) GetEmployee(_ context.Context, id leave.EmployeeID) (*leave.Employee, error) {
	e, ok := s.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *state) CreateLeave(_ context.Context, l leave.Leave) error {
	s.leaves[l.ID] = l
	return nil
}

func (s *state) UpdateLeave(_ context.Context, l leave.Leave) error {
	s.leaves[l.ID] = l
	return nil
}

func (s *state) DeleteLeave(_ context.Context, id leave.LeaveID) error {
	delete(s.leaves, id)
	return nil
}

func (s *state) GetLeave(_ context.Context, id leave.LeaveID) (*leave.Leave, error) {
	l, ok := s.leaves[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (s *state) AllLeaves(_ context.Context) ([]leave.Leave, error) {
	return s.filter(func(leave.Leave) bool { return true }), nil
}

func (s *state) LeavesByEmployee(_ context.Context, employeeID leave.EmployeeID) ([]leave.Leave, error) {
	return s.filter(func(l leave.Leave) bool { return l.EmployeeID == employeeID }), nil
}

func (s *state) LeavesByEmployeeAndStatus(_ context.Context, employeeID leave.EmployeeID, status leave.Status) ([]leave.Leave, error) {
	return s.filter(func(l leave.Leave) bool {
		return l.EmployeeID == employeeID && l.Status == status
	}), nil
}

func (s *state) LeavesByEmployeeAndType(_ context.Context, employeeID leave.EmployeeID, leaveType leave.Type) ([]leave.Leave, error) {
	return s.filter(func(l leave.Leave) bool {
		return l.EmployeeID == employeeID && l.Type == leaveType
	}), nil
}

func (s *state) LeavesInRange(_ context.Context, employeeID leave.EmployeeID, from, to leave.Date) ([]leave.Leave, error) {
	return s.filter(func(l leave.Leave) bool {
		return l.EmployeeID == employeeID && l.Within(from, to)
	}), nil
}

func (s *state) ApprovedAnnualLeaves(_ context.Context, employeeID leave.EmployeeID, year int) ([]leave.Leave, error) {
	return s.filter(func(l leave.Leave) bool {
		return l.EmployeeID == employeeID &&
			l.Status == leave.StatusApproved &&
			l.Type == leave.TypeAnnual &&
			l.StartDate.Year() == year
	}), nil
}

func (s *state) OverlappingLeaves(_ context.Context, employeeID leave.EmployeeID, from, to leave.Date) ([]leave.Leave, error) {
	return s.filter(func(l leave.Leave) bool {
		return l.EmployeeID == employeeID && l.Status.Active() && l.Overlaps(from, to)
	}), nil
}

func (s *state) CountPending(_ context.Context, employeeID leave.EmployeeID) (int, error) {
	n := 0
	for _, l := range s.leaves {
		if l.EmployeeID == employeeID && l.Status == leave.StatusPending {
			n++
		}
	}
	return n, nil
}

func (s *state) PendingLeaves(_ context.Context) ([]leave.Leave, error) {
	return s.filter(func(l leave.Leave) bool { return l.Status == leave.StatusPending }), nil
}

// filter returns matches ordered by start date, then id.
func (s *state) filter(match func(leave.Leave) bool) []leave.Leave {
	var out []leave.Leave
	for _, l := range s.leaves {
		if match(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *state) GetBalance(_ context.Context, employeeID leave.EmployeeID, year int) (*leave.Balance, error) {
	b, ok := s.balances[balanceKey{EmployeeID: employeeID, Year: year}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *state) InsertBalance(_ context.Context, b leave.Balance) error {
	k := balanceKey{EmployeeID: b.EmployeeID, Year: b.Year}
	if _, exists := s.balances[k]; !exists {
		s.balances[k] = b
	}
	return nil
}

func (s *state) SaveBalance(_ context.Context, b leave.Balance) error {
	s.balances[balanceKey{EmployeeID: b.EmployeeID, Year: b.Year}] = b
	return nil
}
