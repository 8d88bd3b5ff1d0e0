package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/adamanr/ems_service/internal/api/http"
	"github.com/adamanr/ems_service/internal/config"
	"github.com/adamanr/ems_service/internal/controllers"
	"github.com/adamanr/ems_service/internal/database"
	"github.com/adamanr/ems_service/internal/metrics"
	"github.com/adamanr/ems_service/internal/notify"
	"github.com/adamanr/ems_service/internal/report"
	logging "github.com/adamanr/ems_service/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the TOML config file")
	flag.Parse()

	bootLogger := logging.SetupLogger(os.Stdout, "server.log", slog.LevelInfo)

	cfg, err := config.GetConfig(*configPath, bootLogger)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := logging.SetupLogger(os.Stdout, cfg.Log.File, cfg.LogLevel())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg, logger)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer pool.Close()

	if err = database.Migrate(ctx, pool, logger); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	rdb, err := database.NewRedisConn(cfg, logger)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer func() { _ = rdb.Close() }()

	m := metrics.New(prometheus.DefaultRegisterer)

	dispatcher := notify.NewDispatcher(notify.NewSMTPSender(cfg), notify.Options{
		Workers:   cfg.Mail.Workers,
		QueueSize: cfg.Mail.QueueSize,
		CodeTTL:   cfg.Verification.CodeTTL,
	}, m, logger)

	deps := &controllers.Dependens{
		Store:    database.NewStore(pool),
		Notifier: dispatcher,
		Limiter:  database.NewCodeLimiter(rdb, cfg.Verification.MaxCodesPerWindow, cfg.Verification.Window),
		Exporter: report.NewWorkbook(),
		Metrics:  m,
		Validate: validator.New(),
		Logger:   logger,
		Config:   cfg,
		Clock:    time.Now,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logging.Middleware(logger))
	r.Use(m.Middleware)

	r.Handle("/metrics", promhttp.Handler())

	api.NewServer(deps).Routes(r)

	s := &http.Server{
		Handler:           r,
		Addr:              cfg.Server.Host,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	go func() {
		logger.Info("Server is starting", slog.String("address", cfg.Server.Host))
		if serveErr := s.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("Server stopped", slog.String("error", serveErr.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = s.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", slog.String("error", err.Error()))
	}
	if err = dispatcher.Close(shutdownCtx); err != nil {
		logger.Error("Error draining notifications", slog.String("error", err.Error()))
	}
}
