package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/invoicedesk/svc/auth"
)

// envelope is the uniform response wrapper. Data and Message are
// mutually exclusive in practice except for the forced-enrollment
// login response, which carries both an error status and a payload.
type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, envelope{Status: statusSuccess, Data: data})
}

func respondMessage(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{Status: statusSuccess, Message: message})
}

func respondBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, envelope{Status: statusError, Message: message})
}

// respondError maps domain errors onto HTTP statuses. Anything outside
// the known set is logged and hidden behind a generic 500.
func (m *Module) respondError(ctx context.Context, w http.ResponseWriter, err error) {
	var code int
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidChallenge),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrInvalidMFACode),
		errors.Is(err, auth.ErrInvalidPassword):
		code = http.StatusUnauthorized
	case errors.Is(err, auth.ErrUserNotFound):
		code = http.StatusNotFound
	case errors.Is(err, auth.ErrMFAAlreadyEnabled),
		errors.Is(err, auth.ErrMFANotEnabled),
		errors.Is(err, auth.ErrMFASecretMissing):
		code = http.StatusBadRequest
	default:
		m.log.ErrorContext(ctx, "request failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, envelope{
			Status:  statusError,
			Message: "Internal server error",
		})
		return
	}
	writeJSON(w, code, envelope{Status: statusError, Message: err.Error()})
}

// decodeJSON parses the request body into dst, tolerating an empty body
// so optional-field endpoints like logout still work.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
