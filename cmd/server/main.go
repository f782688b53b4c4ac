package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	redisclient "github.com/redis/go-redis/v9"

	authmodule "github.com/dmitrymomot/invoicedesk/modules/auth"
	usersmodule "github.com/dmitrymomot/invoicedesk/modules/users"
	"github.com/dmitrymomot/invoicedesk/pkg/config"
	"github.com/dmitrymomot/invoicedesk/pkg/httpserver"
	"github.com/dmitrymomot/invoicedesk/pkg/logger"
	"github.com/dmitrymomot/invoicedesk/pkg/pg"
	"github.com/dmitrymomot/invoicedesk/pkg/ratelimit"
	redisconn "github.com/dmitrymomot/invoicedesk/pkg/redis"
	"github.com/dmitrymomot/invoicedesk/pkg/token"
	"github.com/dmitrymomot/invoicedesk/storage/postgres"
	authsvc "github.com/dmitrymomot/invoicedesk/svc/auth"
)

type appConfig struct {
	Log    logger.Config
	HTTP   httpserver.Config
	PG     pg.Config
	Redis  redisconn.Config
	Tokens token.Config
	Auth   authsvc.Config
	Limits limitsConfig
}

// limitsConfig mirrors the per-endpoint throttles of the upstream API.
type limitsConfig struct {
	Login            int           `env:"RATE_LIMIT_LOGIN" envDefault:"10"`
	LoginWindow      time.Duration `env:"RATE_LIMIT_LOGIN_WINDOW" envDefault:"15m"`
	Refresh          int           `env:"RATE_LIMIT_REFRESH" envDefault:"60"`
	RefreshWindow    time.Duration `env:"RATE_LIMIT_REFRESH_WINDOW" envDefault:"15m"`
	Enrollment       int           `env:"RATE_LIMIT_MFA_ENROLLMENT" envDefault:"10"`
	EnrollmentWindow time.Duration `env:"RATE_LIMIT_MFA_ENROLLMENT_WINDOW" envDefault:"15m"`
	Setup            int           `env:"RATE_LIMIT_MFA_SETUP" envDefault:"20"`
	SetupWindow      time.Duration `env:"RATE_LIMIT_MFA_SETUP_WINDOW" envDefault:"15m"`
	Password         int           `env:"RATE_LIMIT_PASSWORD" envDefault:"5"`
	PasswordWindow   time.Duration `env:"RATE_LIMIT_PASSWORD_WINDOW" envDefault:"15m"`
	CreateUser       int           `env:"RATE_LIMIT_CREATE_USER" envDefault:"20"`
	CreateUserWindow time.Duration `env:"RATE_LIMIT_CREATE_USER_WINDOW" envDefault:"15m"`
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg.Log)
	config.MustLoad(&cfg.HTTP)
	config.MustLoad(&cfg.PG)
	config.MustLoad(&cfg.Redis)
	config.MustLoad(&cfg.Tokens)
	config.MustLoad(&cfg.Auth)
	config.MustLoad(&cfg.Limits)

	log := logger.NewFromConfig(cfg.Log)
	logger.SetAsDefault(log)

	ctx := context.Background()
	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return err
	}

	rdb, err := redisconn.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	tokens, err := token.New(cfg.Tokens)
	if err != nil {
		return err
	}

	store := postgres.New(pool)
	svc, err := authsvc.New(store, tokens, cfg.Auth, log)
	if err != nil {
		return err
	}

	authOpts, usersOpts, err := limiters(rdb, cfg.Limits)
	if err != nil {
		return err
	}
	mod := authmodule.New(svc, tokens, authOpts, log)
	usersMod := usersmodule.New(svc, usersOpts, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Get("/health", healthHandler(pg.Healthcheck(pool), redisconn.Healthcheck(rdb)))
	r.Mount("/", mod.Handle())
	r.Group(func(r chi.Router) {
		r.Use(mod.Authenticate, mod.RequireAdmin)
		r.Mount("/users", usersMod.Handle())
	})

	server := httpserver.New(cfg.HTTP, log)
	return server.Run(ctx, r)
}

// limiters builds the redis-backed fixed-window throttles for the auth
// and user-management endpoints, keyed by client IP.
func limiters(rdb *redisclient.Client, cfg limitsConfig) (authmodule.Options, usersmodule.Options, error) {
	build := func(prefix string, limit int, window time.Duration) (authmodule.Middleware, error) {
		limiter, err := ratelimit.NewFixedWindow(
			ratelimit.NewRedisStore(rdb, prefix),
			ratelimit.Config{Limit: limit, Window: window},
		)
		if err != nil {
			return nil, err
		}
		return ratelimit.Middleware(limiter, ratelimit.ByClientIP), nil
	}

	var authOpts authmodule.Options
	var usersOpts usersmodule.Options
	var err error
	if authOpts.LoginLimiter, err = build("rl:login", cfg.Login, cfg.LoginWindow); err != nil {
		return authOpts, usersOpts, err
	}
	if authOpts.RefreshLimiter, err = build("rl:refresh", cfg.Refresh, cfg.RefreshWindow); err != nil {
		return authOpts, usersOpts, err
	}
	if authOpts.EnrollmentLimiter, err = build("rl:mfa-enroll", cfg.Enrollment, cfg.EnrollmentWindow); err != nil {
		return authOpts, usersOpts, err
	}
	if authOpts.SetupLimiter, err = build("rl:mfa-setup", cfg.Setup, cfg.SetupWindow); err != nil {
		return authOpts, usersOpts, err
	}
	if authOpts.PasswordLimiter, err = build("rl:password", cfg.Password, cfg.PasswordWindow); err != nil {
		return authOpts, usersOpts, err
	}
	if usersOpts.CreateLimiter, err = build("rl:user-create", cfg.CreateUser, cfg.CreateUserWindow); err != nil {
		return authOpts, usersOpts, err
	}
	usersOpts.PasswordLimiter = authOpts.PasswordLimiter
	return authOpts, usersOpts, nil
}

func healthHandler(probes ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, probe := range probes {
			if err := probe(r.Context()); err != nil {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
				return
			}
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
