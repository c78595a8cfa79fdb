/*
handlers.go - HTTP API handlers for the leave workflow

PURPOSE:
  Exposes the leave service via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the leave package.

ENDPOINTS:
  Employees:
    GET    /api/employees                          List all employees
    POST   /api/employees                          Create employee
    GET    /api/employees/{id}                     Get employee details

  Leaves:
    POST   /api/employees/{id}/leaves              Apply for leave
    GET    /api/employees/{id}/leaves              Leave history (filters below)
    GET    /api/leaves                             All leaves
    GET    /api/leaves/pending                     Pending leaves of all employees
    GET    /api/leaves/{id}                        Single leave
    DELETE /api/leaves/{id}                        Remove a leave record
    POST   /api/leaves/{id}/approve                Approve
    POST   /api/leaves/{id}/reject                 Reject with reason
    POST   /api/leaves/{id}/cancel                 Cancel (owner only)

  Balances:
    GET    /api/employees/{id}/balance             ?year=2025 (default: current year)
    GET    /api/employees/{id}/balance/remaining   ?year=2025

  Admin:
    POST   /api/admin/reconcile                    Balance drift check / repair
    POST   /api/admin/reset                        Wipe database (dev only)

LEAVE HISTORY FILTERS (first one present wins):
  ?year=2025            Approved ANNUAL leaves starting in 2025
  ?from=...&to=...      Leaves lying entirely inside the range
  ?status=PENDING       By status
  ?type=SICK            By leave type

ERROR HANDLING:
  Errors are returned as JSON with an HTTP status derived from leave.KindOf:
  - 400: Validation errors, invalid input
  - 403: Acting on someone else's leave
  - 404: Employee or leave not found
  - 409: Leave is not in a state that allows the operation
  - 500: Infrastructure errors (logged)

SECURITY NOTE:
  No authentication. Approver and employee identities are taken from the
  request body as given.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *leave.Service
	Store   *sqlite.Store
	Logger  *zap.Logger

	// DevMode enables destructive admin endpoints.
	DevMode bool
}

// NewHandler creates a new handler. The service must run on store.
func NewHandler(service *leave.Service, store *sqlite.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Service: service,
		Store:   store,
		Logger:  logger.Named("api"),
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeInternal(w, r, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.writeInternal(w, r, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates a new employee. A missing id is generated.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	hireDate, err := leave.ParseDate(req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	emp := leave.Employee{
		ID:       leave.EmployeeID(req.ID),
		Name:     req.Name,
		Email:    req.Email,
		HireDate: hireDate,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.writeInternal(w, r, "Failed to create employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// ApplyLeave submits a leave application.
// POST /api/employees/{id}/leaves
func (h *Handler) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	var req ApplyLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := leave.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}
	end, err := leave.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
		return
	}
	leaveType, err := leave.ParseType(req.LeaveType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave_type", err)
		return
	}

	l, err := h.Service.Apply(r.Context(), leave.ApplyRequest{
		EmployeeID: leave.EmployeeID(chi.URLParam(r, "id")),
		StartDate:  start,
		EndDate:    end,
		Type:       leaveType,
		Reason:     req.Reason,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toLeaveDTO(*l))
}

// ListEmployeeLeaves returns the employee's leave history, optionally filtered.
// GET /api/employees/{id}/leaves
func (h *Handler) ListEmployeeLeaves(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := leave.EmployeeID(chi.URLParam(r, "id"))
	q := r.URL.Query()

	var (
		leaves []leave.Leave
		err    error
	)
	switch {
	case q.Get("year") != "":
		year, perr := strconv.Atoi(q.Get("year"))
		if perr != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", perr)
			return
		}
		leaves, err = h.Service.ApprovedAnnualLeaves(ctx, employeeID, year)

	case q.Get("from") != "" || q.Get("to") != "":
		from, ferr := leave.ParseDate(q.Get("from"))
		to, terr := leave.ParseDate(q.Get("to"))
		if ferr != nil || terr != nil {
			writeError(w, http.StatusBadRequest, "from and to are both required (use YYYY-MM-DD)", errors.Join(ferr, terr))
			return
		}
		leaves, err = h.Service.EmployeeLeavesInRange(ctx, employeeID, from, to)

	case q.Get("status") != "":
		status, perr := leave.ParseStatus(q.Get("status"))
		if perr != nil {
			writeError(w, http.StatusBadRequest, "Invalid status", perr)
			return
		}
		leaves, err = h.Service.EmployeeLeavesByStatus(ctx, employeeID, status)

	case q.Get("type") != "":
		leaveType, perr := leave.ParseType(q.Get("type"))
		if perr != nil {
			writeError(w, http.StatusBadRequest, "Invalid type", perr)
			return
		}
		leaves, err = h.Service.EmployeeLeavesByType(ctx, employeeID, leaveType)

	default:
		leaves, err = h.Service.EmployeeLeaves(ctx, employeeID)
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toLeaveDTOs(leaves))
}

// ListAllLeaves returns every leave application.
// GET /api/leaves
func (h *Handler) ListAllLeaves(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.Service.AllLeaves(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(leaves))
}

// ListPendingLeaves returns pending leaves of every employee, for approvers.
// GET /api/leaves/pending
func (h *Handler) ListPendingLeaves(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.Service.PendingLeaves(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(leaves))
}

// GetLeave returns a single leave.
// GET /api/leaves/{id}
func (h *Handler) GetLeave(w http.ResponseWriter, r *http.Request) {
	l, err := h.Service.Leave(r.Context(), leave.LeaveID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(*l))
}

// DeleteLeave removes a leave record.
// DELETE /api/leaves/{id}
func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), leave.LeaveID(chi.URLParam(r, "id"))); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApproveLeave approves a pending leave.
// POST /api/leaves/{id}/approve
func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	var req ApproveLeaveRequest
	json.NewDecoder(r.Body).Decode(&req)

	if req.ApproverID == "" {
		req.ApproverID = "admin"
	}

	l, err := h.Service.Approve(r.Context(), leave.LeaveID(chi.URLParam(r, "id")), leave.EmployeeID(req.ApproverID))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(*l))
}

// RejectLeave rejects a pending leave.
// POST /api/leaves/{id}/reject
func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	var req RejectLeaveRequest
	json.NewDecoder(r.Body).Decode(&req)

	if req.ApproverID == "" {
		req.ApproverID = "admin"
	}

	l, err := h.Service.Reject(r.Context(), leave.LeaveID(chi.URLParam(r, "id")), leave.EmployeeID(req.ApproverID), req.Reason)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(*l))
}

// CancelLeave withdraws a pending leave on behalf of its owner.
// POST /api/leaves/{id}/cancel
func (h *Handler) CancelLeave(w http.ResponseWriter, r *http.Request) {
	var req CancelLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}

	l, err := h.Service.Cancel(r.Context(), leave.LeaveID(chi.URLParam(r, "id")), leave.EmployeeID(req.EmployeeID))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(*l))
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// GetBalance returns the employee's annual balance for a year.
// GET /api/employees/{id}/balance?year=2025
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}

	b, err := h.Service.Balance(r.Context(), leave.EmployeeID(chi.URLParam(r, "id")), year)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(*b))
}

// GetRemainingBalance returns only the remaining day count.
// GET /api/employees/{id}/balance/remaining?year=2025
func (h *Handler) GetRemainingBalance(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}

	employeeID := chi.URLParam(r, "id")
	remaining, err := h.Service.RemainingBalance(r.Context(), leave.EmployeeID(employeeID), year)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RemainingBalanceDTO{
		EmployeeID:    employeeID,
		Year:          year,
		RemainingDays: remaining,
	})
}

// yearParam reads ?year=, defaulting to the service's current year.
func (h *Handler) yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return h.Service.Now().Year(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return 0, false
	}
	return year, true
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// Reconcile compares a balance with its approved leaves and optionally repairs it.
// POST /api/admin/reconcile
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}
	if req.Year == 0 {
		req.Year = h.Service.Now().Year()
	}

	report, err := h.Service.Reconcile(r.Context(), leave.EmployeeID(req.EmployeeID), req.Year, req.Repair)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReconciliationDTO(*report))
}

// ResetDatabase clears all data.
// POST /api/admin/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if !h.DevMode {
		writeError(w, http.StatusForbidden, "Reset is only available in dev mode", nil)
		return
	}
	if err := h.Store.Reset(r.Context()); err != nil {
		h.writeInternal(w, r, "Failed to reset database", err)
		return
	}

	h.Logger.Warn("database reset", zap.String("request_id", middleware.GetReqID(r.Context())))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// statusFor maps an error kind to an HTTP status.
func statusFor(kind leave.Kind) int {
	switch kind {
	case leave.KindNotFound:
		return http.StatusNotFound
	case leave.KindValidation:
		return http.StatusBadRequest
	case leave.KindForbidden:
		return http.StatusForbidden
	case leave.KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders an error returned by the leave service.
// Client errors carry their message; infrastructure details stay in the log.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := leave.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		h.writeInternal(w, r, "Internal error", err)
		return
	}

	msg := err.Error()
	var stateErr *leave.StateError
	if errors.As(err, &stateErr) {
		msg = stateErr.Message
	}
	writeJSON(w, status, ErrorResponse{Error: msg, Kind: string(kind)})
}

func (h *Handler) writeInternal(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.Logger.Error(message,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: message,
		Kind:  string(leave.KindInfrastructure),
	})
}

func strPtr(s string) *string {
	return &s
}
