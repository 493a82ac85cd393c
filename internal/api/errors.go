package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/hearth/internal/device"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeValidation   = "validation_error"
	ErrCodeNotSupported = "not_supported"
	ErrCodeUnreachable  = "device_unreachable"
	ErrCodeDeviceError  = "device_error"
	ErrCodeInternal     = "internal_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDeviceError maps a device error onto an HTTP status by its kind.
//
// Validation failures are the caller's fault (400). An unsupported
// capability is 501: the request was understood but this hardware cannot do
// it. Unreachable devices are 503 and devices that rejected an operation
// 502, mirroring how a gateway reports its upstreams.
func writeDeviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, device.ErrValidation):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, device.ErrNotSupported):
		writeError(w, http.StatusNotImplemented, ErrCodeNotSupported, err.Error())
	case errors.Is(err, device.ErrConnection):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnreachable, err.Error())
	case errors.Is(err, device.ErrOperation):
		writeError(w, http.StatusBadGateway, ErrCodeDeviceError, err.Error())
	default:
		writeInternalError(w, err.Error())
	}
}
