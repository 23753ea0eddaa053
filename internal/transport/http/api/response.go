package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"intranet/internal/domain/evaluation"
	"intranet/internal/domain/managers"
	"intranet/internal/domain/periods"
)

type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details map[string]any, requestID string) {
	WriteJSON(w, status, Envelope{
		Success:   false,
		Error:     &Error{Code: code, Message: message, Details: details},
		RequestID: requestID,
	})
}

// FailDomain maps the workflow error taxonomy onto HTTP statuses, one code
// per sentinel, so handlers never branch on errors themselves.
func FailDomain(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, evaluation.ErrNotFound), errors.Is(err, periods.ErrNotFound):
		Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrPermissionDenied):
		Fail(w, http.StatusForbidden, "permission_denied", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrInvalidTransition):
		Fail(w, http.StatusConflict, "invalid_transition", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrStaleState):
		Fail(w, http.StatusConflict, "stale_state", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrPeriodClosed):
		Fail(w, http.StatusUnprocessableEntity, "period_closed", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrValidationFailed), errors.Is(err, periods.ErrInvalidDates):
		Fail(w, http.StatusBadRequest, "validation_failed", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrAlreadyExists):
		Fail(w, http.StatusConflict, "already_exists", err.Error(), requestID)
	case errors.Is(err, managers.ErrNoManager):
		Fail(w, http.StatusUnprocessableEntity, "no_manager", err.Error(), requestID)
	case errors.Is(err, periods.ErrReferenced):
		Fail(w, http.StatusConflict, "period_referenced", err.Error(), requestID)
	default:
		slog.Error("unhandled domain error", "err", err)
		Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}
