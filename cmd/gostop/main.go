package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"gostop.app/internal/app"
	"gostop.app/internal/config"
	"gostop.app/internal/geocode"
	"gostop.app/internal/report"
)

const version = "1.0.0"

func main() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg, err := loadConfig(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	logger := newLogger(cfg)

	if err := report.SetupSentry(os.Getenv("SENTRY_DSN"), cfg.Env, version); err != nil {
		logger.Error("failed to initialise sentry", "error", err)
	}
	defer report.FlushSentry()
	report.ConfigureScope(cfg.Env, version)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		report.ReportError(err, sentry.LevelFatal)
		report.FlushSentry()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(err.Error())
		report.ReportError(err, sentry.LevelFatal)
		report.FlushSentry()
		os.Exit(1)
	}
}

// loadConfig layers defaults, the optional JSON file, environment
// variables and finally explicitly set flags.
func loadConfig(args []string, getenv func(string) string) (*config.Config, error) {
	fs := flag.NewFlagSet("gostop", flag.ContinueOnError)
	port := fs.Int("port", config.DefaultPort, "API server port")
	env := fs.String("env", config.DefaultEnv, "Environment (development|staging|production)")
	configFile := fs.String("config-file", "", "Path to a local JSON configuration file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg := config.NewConfig(config.DefaultPort, config.DefaultEnv)
	if *configFile != "" {
		loaded, err := config.LoadConfigFromFile(*configFile, cfg)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(cfg, getenv); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "env":
			cfg.Env = *env
		}
	})

	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = geocode.OpenDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := geocode.NewSQLCache(db).Migrate(ctx); err != nil {
			return err
		}
		logger.Info("reverse geocode cache backed by postgres")
	}

	application := app.New(cfg, logger, app.NewPooledClient(), db, version)
	application.StartBackgroundJobs(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      application.Routes(ctx),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env, "land_check", cfg.LandCheck.Enabled)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
