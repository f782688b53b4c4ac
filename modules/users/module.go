package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/invoicedesk/svc/auth"
)

// Middleware is a standard net/http middleware.
type Middleware = func(http.Handler) http.Handler

// Options configures optional per-route throttles.
type Options struct {
	// CreateLimiter throttles account creation.
	CreateLimiter Middleware
	// PasswordLimiter throttles admin-driven password resets.
	PasswordLimiter Middleware
}

// Module exposes admin user management over HTTP. Authentication and
// the admin role guard are applied by the caller when mounting.
type Module struct {
	auth *auth.Service
	opts Options
	log  *slog.Logger
}

func New(svc *auth.Service, opts Options, log *slog.Logger) *Module {
	if log == nil {
		log = slog.Default()
	}
	return &Module{auth: svc, opts: opts, log: log}
}

func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()

	r.With(mw(m.opts.CreateLimiter)).Post("/", m.create)
	r.Get("/", m.list)
	r.Get("/{id}", m.get)
	r.Patch("/{id}", m.update)
	r.Delete("/{id}", m.delete)
	r.Patch("/{id}/toggle-status", m.toggleStatus)
	r.With(mw(m.opts.PasswordLimiter)).Patch("/{id}/password", m.updatePassword)

	return r
}

func mw(m Middleware) Middleware {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return m
}
