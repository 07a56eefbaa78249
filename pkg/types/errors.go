package types

import "fmt"

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation            ErrorType = "validation"
	ErrorTypeInvalidTransition     ErrorType = "invalid_transition"
	ErrorTypeRoomUnavailable       ErrorType = "room_unavailable"
	ErrorTypeInsuranceVerification ErrorType = "insurance_verification"
	ErrorTypeIncompleteDischarge   ErrorType = "incomplete_discharge"
	ErrorTypeNotFound              ErrorType = "not_found"
	ErrorTypeConflict              ErrorType = "conflict"
	ErrorTypeTimeout               ErrorType = "timeout"
	ErrorTypeInternal              ErrorType = "internal"
)

// HospitalError represents a structured error in the hospital-flow system
type HospitalError struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *HospitalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *HospitalError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error carrying every offending field
func NewValidationError(message string, fields []string) *HospitalError {
	return &HospitalError{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeValidationFailed,
		Message: message,
		Details: map[string]interface{}{"fields": fields},
	}
}

// NewInvalidTransitionError creates an error for a state machine edge that is
// not permitted from the current state
func NewInvalidTransitionError(entity, from, to string) *HospitalError {
	return &HospitalError{
		Type:    ErrorTypeInvalidTransition,
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("%s cannot transition from %s to %s", entity, from, to),
		Details: map[string]interface{}{"entity": entity, "from": from, "to": to},
	}
}

// NewRoomUnavailableError creates an error for an allocation attempt on a room
// that is not free, including lost compare-and-swap races
func NewRoomUnavailableError(roomID string, status RoomStatus) *HospitalError {
	return &HospitalError{
		Type:    ErrorTypeRoomUnavailable,
		Code:    ErrCodeRoomUnavailable,
		Message: fmt.Sprintf("room %s is not available for allocation", roomID),
		Details: map[string]interface{}{"room_id": roomID, "status": string(status)},
	}
}

// NewInsuranceVerificationError creates an error for a failed provider call
func NewInsuranceVerificationError(message string, cause error) *HospitalError {
	return &HospitalError{
		Type:    ErrorTypeInsuranceVerification,
		Code:    ErrCodeInsuranceVerification,
		Message: message,
		Cause:   cause,
	}
}

// NewIncompleteDischargeError creates an error carrying the full list of
// blocking reasons reported by the discharge readiness check
func NewIncompleteDischargeError(reasons []string) *HospitalError {
	return &HospitalError{
		Type:    ErrorTypeIncompleteDischarge,
		Code:    ErrCodeIncompleteDischarge,
		Message: "admission is not ready for discharge",
		Details: map[string]interface{}{"blocking_reasons": reasons},
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(entity, id string) *HospitalError {
	return &HospitalError{
		Type:    ErrorTypeNotFound,
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// NewConflictError creates an error for a lost optimistic-concurrency update
func NewConflictError(entity, id string) *HospitalError {
	return &HospitalError{
		Type:    ErrorTypeConflict,
		Code:    ErrCodeConflict,
		Message: fmt.Sprintf("%s %s was modified concurrently", entity, id),
	}
}

// NewTimeoutError creates an error for an external call that exceeded its deadline
func NewTimeoutError(operation string, cause error) *HospitalError {
	return &HospitalError{
		Type:    ErrorTypeTimeout,
		Code:    ErrCodeTimeout,
		Message: fmt.Sprintf("%s timed out", operation),
		Cause:   cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *HospitalError {
	return &HospitalError{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternalError,
		Message: message,
		Cause:   cause,
	}
}

// Common error codes
const (
	ErrCodeValidationFailed      = "VALIDATION_FAILED"
	ErrCodeInvalidTransition     = "INVALID_TRANSITION"
	ErrCodeRoomUnavailable       = "ROOM_UNAVAILABLE"
	ErrCodeInsuranceVerification = "INSURANCE_VERIFICATION_FAILED"
	ErrCodeIncompleteDischarge   = "INCOMPLETE_DISCHARGE"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeConflict              = "CONFLICT"
	ErrCodeTimeout               = "TIMEOUT"
	ErrCodeInternalError         = "INTERNAL_ERROR"
)
