package users

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/invoicedesk/svc/auth"
)

type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, envelope{Status: "success", Data: data})
}

func respondMessage(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{Status: "success", Message: message})
}

func respondBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, envelope{Status: "error", Message: message})
}

func (m *Module) respondError(ctx context.Context, w http.ResponseWriter, err error) {
	var code int
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		code = http.StatusNotFound
	case errors.Is(err, auth.ErrEmailTaken):
		code = http.StatusBadRequest
	default:
		m.log.ErrorContext(ctx, "request failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, envelope{
			Status:  "error",
			Message: "Internal server error",
		})
		return
	}
	writeJSON(w, code, envelope{Status: "error", Message: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
