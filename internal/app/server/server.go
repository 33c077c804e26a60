package server

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"staffpay/internal/domain/attendance"
	"staffpay/internal/domain/notifications"
	"staffpay/internal/domain/payroll"
	"staffpay/internal/domain/staff"
	"staffpay/internal/platform/config"
	cryptoutil "staffpay/internal/platform/crypto"
	"staffpay/internal/platform/db"
	"staffpay/internal/platform/email"
	"staffpay/internal/platform/jobs"
	"staffpay/internal/platform/metrics"
	"staffpay/internal/transport/http/api"
	attendancehandler "staffpay/internal/transport/http/handlers/attendance"
	authhandler "staffpay/internal/transport/http/handlers/auth"
	companyhandler "staffpay/internal/transport/http/handlers/company"
	notificationshandler "staffpay/internal/transport/http/handlers/notifications"
	payrollhandler "staffpay/internal/transport/http/handlers/payroll"
	reportshandler "staffpay/internal/transport/http/handlers/reports"
	staffhandler "staffpay/internal/transport/http/handlers/staff"
	"staffpay/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		log.Fatalf("encryption key invalid: %v", err)
	}

	collector := metrics.New()

	staffStore := staff.NewStore(pool)
	attendanceService := attendance.NewService(attendance.NewStore(pool), staffStore)

	notifier := notifications.New(
		notifications.NewStore(pool),
		email.New(cfg),
		cfg.EmailFrom,
		cfg.EmailEnabled,
		func(ctx context.Context, staffID string) (string, error) {
			member, err := staffStore.MemberByID(ctx, staffID)
			if err != nil {
				return "", err
			}
			return member.CompanyID, nil
		},
	)

	payrollService := payroll.NewService(
		&payroll.Store{DB: pool},
		attendance.NewStore(pool),
		staffStore,
		notifier,
	)
	payslips := &payroll.PayslipWriter{Dir: cfg.PayslipDir, Crypto: crypto}

	jobRunner := jobs.New(pool, cfg, payrollService, collector)
	jobRunner.Start(ctx)

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recover)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

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
	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(pool, cfg.JWTSecret, cfg.TokenTTL, crypto).RegisterRoutes(r)
		companyhandler.NewHandler(pool).RegisterRoutes(r)
		staffhandler.NewHandler(pool).RegisterRoutes(r)
		attendancehandler.NewHandler(pool, attendanceService).RegisterRoutes(r)
		payrollhandler.NewHandler(pool, payrollService, payslips).RegisterRoutes(r)
		reportshandler.NewHandler(pool).RegisterRoutes(r)
		notificationshandler.NewHandler(notifier).RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "err", err)
	}
}
