package server

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"intranet/internal/domain/auth"
	"intranet/internal/domain/evaluation"
	"intranet/internal/domain/managers"
	"intranet/internal/domain/notifications"
	"intranet/internal/domain/periods"
	"intranet/internal/domain/reports"
	"intranet/internal/platform/config"
	"intranet/internal/platform/db"
	"intranet/internal/platform/email"
	"intranet/internal/platform/jobs"
	"intranet/internal/platform/metrics"
	"intranet/internal/transport/http/api"
	authhandler "intranet/internal/transport/http/handlers/auth"
	evaluationshandler "intranet/internal/transport/http/handlers/evaluations"
	managershandler "intranet/internal/transport/http/handlers/managers"
	notificationshandler "intranet/internal/transport/http/handlers/notifications"
	periodshandler "intranet/internal/transport/http/handlers/periods"
	"intranet/internal/transport/http/middleware"
)

func Run() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if err := db.Seed(ctx, pool, cfg); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	authStore := auth.NewStore(pool)
	periodSvc := periods.NewService(periods.NewStore(pool))
	managerSvc := managers.NewService(managers.NewStore(pool))

	notifSvc := notifications.New(notifications.NewStore(pool), email.New(cfg))
	notifSvc.DefaultFrom = cfg.EmailFrom

	evalStore := evaluation.NewStore(pool)
	evalSvc := evaluation.NewService(evalStore, managerSvc, periodSvc, notifSvc)
	reportSvc := reports.NewService(evalSvc, authStore, periodSvc)

	jobSvc := jobs.New(pool, cfg, evalSvc, notifSvc)
	jobSvc.Start(ctx)

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret)
		r.With(middleware.LoginRateLimit(max(cfg.RateLimitPerMinute/4, 1), time.Minute)).
			Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.With(middleware.RequireUser).Get("/auth/me", authHandler.HandleMe)

		evaluationshandler.NewHandler(evalSvc, reportSvc, collector).RegisterRoutes(r)
		periodshandler.NewHandler(periodSvc, evalSvc, jobSvc).RegisterRoutes(r)
		managershandler.NewHandler(managerSvc).RegisterRoutes(r)
		notificationshandler.NewHandler(notifSvc).RegisterRoutes(r)

		if collector != nil {
			r.With(middleware.RequireUser, middleware.RequireRole(auth.RoleAdmin)).
				Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
					api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
				})
		}
	})

	log.Printf("intranet server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
