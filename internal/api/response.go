package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"etforacle/pkg/etforacle"
)

// ErrorResponse represents an error API response with structured information.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type errorRecorder interface {
	recordError(err error)
}

// writeErrorResponse writes err as an ErrorResponse. A structured
// *etforacle.Error overrides httpStatus with the status for its code.
func writeErrorResponse(w http.ResponseWriter, r *http.Request, httpStatus int, err error) {
	response := ErrorResponse{
		Code:    httpStatus,
		Message: err.Error(),
	}

	var coreErr *etforacle.Error
	if errors.As(err, &coreErr) {
		httpStatus = mapErrorCodeToHTTPStatus(coreErr.Code)
		response.Code = httpStatus
		response.ErrorCode = string(coreErr.Code)
		response.Message = coreErr.Message
	}
	if r != nil {
		response.RequestID = middleware.GetReqID(r.Context())
	}
	if recorder, ok := w.(errorRecorder); ok {
		recorder.recordError(err)
	}

	writeJSON(w, httpStatus, response)
}

// writeError writes a plain message with the given status.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeErrorResponse(w, r, status, errors.New(message))
}

// mapErrorCodeToHTTPStatus maps core error codes to HTTP status codes.
func mapErrorCodeToHTTPStatus(code etforacle.ErrorCode) int {
	switch code {
	case etforacle.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case etforacle.ErrCodeNotFound:
		return http.StatusNotFound
	case etforacle.ErrCodeRequestFailed:
		return http.StatusBadGateway
	case etforacle.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case etforacle.ErrCodeDatabase, etforacle.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
