package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/invoicedesk/pkg/token"
	"github.com/dmitrymomot/invoicedesk/svc/auth"
)

// Middleware is a standard net/http middleware.
type Middleware = func(http.Handler) http.Handler

// Options configures per-route middlewares. Each limiter is optional;
// a nil entry mounts the route unprotected.
type Options struct {
	// LoginLimiter throttles password and MFA login attempts.
	LoginLimiter Middleware
	// RefreshLimiter throttles token refreshes.
	RefreshLimiter Middleware
	// EnrollmentLimiter throttles the public MFA bootstrap endpoints.
	EnrollmentLimiter Middleware
	// SetupLimiter throttles authenticated MFA management.
	SetupLimiter Middleware
	// PasswordLimiter throttles endpoints that re-check the password.
	PasswordLimiter Middleware
}

// Module exposes the auth service over HTTP.
type Module struct {
	auth   *auth.Service
	tokens *token.Service
	opts   Options
	log    *slog.Logger
}

// New builds the HTTP module on top of the auth service. The token
// service is needed directly by the bearer middleware.
func New(svc *auth.Service, tokens *token.Service, opts Options, log *slog.Logger) *Module {
	if log == nil {
		log = slog.Default()
	}
	return &Module{auth: svc, tokens: tokens, opts: opts, log: log}
}

// Handle returns the module router, ready to be mounted on a parent
// chi router.
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.With(mw(m.opts.LoginLimiter)).Post("/login", m.login)
		r.With(mw(m.opts.LoginLimiter)).Post("/login/mfa", m.verifyMFA)
		r.With(mw(m.opts.RefreshLimiter)).Post("/refresh", m.refresh)
		r.Post("/logout", m.logout)
		r.Group(func(r chi.Router) {
			r.Use(m.Authenticate)
			r.Get("/profile", m.profile)
		})
	})

	r.Route("/admin/mfa", func(r chi.Router) {
		// Public bootstrap for forced enrollment during login. The
		// target account is named in the body since no session exists yet.
		r.With(mw(m.opts.EnrollmentLimiter)).Post("/enroll/secret", m.enrollSecret)
		r.With(mw(m.opts.EnrollmentLimiter)).Post("/enroll/enable", m.enrollEnable)

		r.Group(func(r chi.Router) {
			r.Use(m.Authenticate, m.RequireAdmin)
			r.With(mw(m.opts.SetupLimiter)).Post("/secret", m.issueSecret)
			r.With(mw(m.opts.SetupLimiter)).Post("/enable", m.enable)
			r.With(mw(m.opts.PasswordLimiter)).Post("/disable", m.disable)
		})
	})

	return r
}

func mw(m Middleware) Middleware {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return m
}
