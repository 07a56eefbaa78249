package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medrex/hospital-flow/pkg/types"
)

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError maps a typed failure onto an HTTP status and surfaces its detail
// list (missing fields, blocking reasons) to the caller instead of a generic
// error string
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusForError(err), errorBody(err))
}

// StatusForError maps the error taxonomy onto HTTP status codes
func StatusForError(err error) int {
	var hospitalErr *types.HospitalError
	if !errors.As(err, &hospitalErr) {
		return http.StatusInternalServerError
	}

	switch hospitalErr.Type {
	case types.ErrorTypeValidation:
		return http.StatusBadRequest
	case types.ErrorTypeNotFound:
		return http.StatusNotFound
	case types.ErrorTypeInvalidTransition, types.ErrorTypeRoomUnavailable,
		types.ErrorTypeConflict, types.ErrorTypeIncompleteDischarge:
		return http.StatusConflict
	case types.ErrorTypeInsuranceVerification:
		return http.StatusBadGateway
	case types.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) interface{} {
	var hospitalErr *types.HospitalError
	if errors.As(err, &hospitalErr) {
		return map[string]interface{}{"error": hospitalErr}
	}
	return map[string]interface{}{
		"error": map[string]interface{}{
			"type":    types.ErrorTypeInternal,
			"code":    types.ErrCodeInternalError,
			"message": err.Error(),
		},
	}
}
