/*
errors.go - Error taxonomy for the leave workflow

PURPOSE:
  Every business failure crosses the package boundary as a returned error
  carrying a kind and a message. Adapters classify with errors.Is or KindOf.

ERROR CATEGORIES:
  1. Not found      - ErrEmployeeNotFound, ErrLeaveNotFound
  2. Validation     - *ValidationError (wraps ErrValidationFailed)
  3. Authorization  - *ForbiddenError (wraps ErrForbidden)
  4. State          - *StateError (wraps ErrInvalidState)
  5. Infrastructure - *InfrastructureError (wraps ErrInfrastructure and the cause)

  Infrastructure failures are never mapped to validation failures.

SEE ALSO:
  - validator.go: Produces ValidationError
  - service.go:   Wraps store failures in InfrastructureError
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrLeaveNotFound    = errors.New("leave application not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidState     = errors.New("invalid state for operation")
	ErrInfrastructure   = errors.New("infrastructure error")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// Reason is a stable code for a validation failure.
type Reason string

const (
	ReasonInvalidType         Reason = "invalid_type"
	ReasonStartInPast         Reason = "start_in_past"
	ReasonEndBeforeStart      Reason = "end_before_start"
	ReasonInsufficientBalance Reason = "insufficient_balance"
	ReasonOverlap             Reason = "overlap"
	ReasonTooManyPending      Reason = "too_many_pending"
)

type ValidationError struct {
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// StateError reports an operation attempted on a leave in the wrong status.
type StateError struct {
	LeaveID LeaveID
	Status  Status
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s (leave %s is %s)", e.Message, e.LeaveID, e.Status)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// ForbiddenError reports an actor touching a leave that is not theirs.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// InfrastructureError wraps a store failure with the operation that hit it.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() []error { return []error{ErrInfrastructure, e.Err} }

// =============================================================================
// KIND - Coarse classification for adapters
// =============================================================================

type Kind string

const (
	KindNone           Kind = ""
	KindNotFound       Kind = "not_found"
	KindValidation     Kind = "validation_failed"
	KindForbidden      Kind = "forbidden"
	KindInvalidState   Kind = "invalid_state"
	KindInfrastructure Kind = "infrastructure"
)

// KindOf classifies err. Unknown errors count as infrastructure.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case IsNotFound(err):
		return KindNotFound
	case errors.Is(err, ErrValidationFailed):
		return KindValidation
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	default:
		return KindInfrastructure
	}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) || errors.Is(err, ErrLeaveNotFound)
}

// IsClientError returns true if the error is due to the caller's input or the leave's state.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidState)
}

func isDomainError(err error) bool {
	return IsNotFound(err) || IsClientError(err) || errors.Is(err, ErrInfrastructure)
}

// infra wraps a store error once. Domain errors pass through untouched.
func infra(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return &InfrastructureError{Op: op, Err: err}
}
