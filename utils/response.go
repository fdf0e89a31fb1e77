package utils

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fitshare/errs"
)

// M is shorthand for ad-hoc JSON bodies.
type M map[string]any

func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// RespondWithMessage writes {"message": msg}.
func RespondWithMessage(w http.ResponseWriter, statusCode int, msg string) {
	RespondWithJSON(w, statusCode, M{"message": msg})
}

// RespondWithError writes err as {"code","message","details"} with the status
// its code maps to. Errors that are not *errs.Error are reported as internal
// without leaking their text. Server-side failures are logged when log is set.
func RespondWithError(w http.ResponseWriter, log *slog.Logger, err error) {
	var e *errs.Error
	if !errors.As(err, &e) {
		e = errs.Internal("internal server error").WithCause(err)
	}

	status := e.HTTPStatus()
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", "code", e.Code, "error", err)
	}

	body := struct {
		Code    errs.Code `json:"code"`
		Message string    `json:"message"`
		Details any       `json:"details,omitempty"`
	}{Code: e.Code, Message: e.Message, Details: e.Details}
	if status >= http.StatusInternalServerError {
		body.Message = "internal server error"
	}
	RespondWithJSON(w, status, body)
}
