/*
main.go - Application entry point

PURPOSE:
  Runs the payroll engine either as a one-shot command over the data
  directory or as an HTTP server.

COMMANDS:
  payments   Compute and save the payments for a year-month
  payslips   Render PDF payslips for a saved year-month
  revert     Remove the payments saved for a year-month
  fs3        Generate every employee's annual FS3
  fs5        Generate the monthly FS5
  fs7        Generate the annual FS7 from the year's FS3 files
  serve      Start the HTTP API

COMMAND-LINE FLAGS:
  -config     Configuration file path (default: payroll.yml)
  -year       Year to process (default: current year)
  -month      Month to process (default: current month)
  -log-level  Log level override (debug, info, warn, error)

EXAMPLES:
  # Run January's payroll
  ./payroll -year=2026 -month=1 payments

  # Render the payslips afterwards
  ./payroll -year=2026 -month=1 payslips

  # Year-end forms
  ./payroll -year=2026 fs3
  ./payroll -year=2026 fs7

  # Serve the API
  ./payroll serve

SEE ALSO:
  - api/server.go: Router configuration
  - batch: The run driver behind every command
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/batch"
	"github.com/warp/payroll-engine/config"
)

// initializeLogger creates a zap logger based on configuration and CLI override.
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	var cfg zap.Config
	switch loggingConfig.Format {
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", loggingConfig.Format)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	return cfg.Build()
}

func main() {
	now := time.Now()
	configPath := flag.String("config", "payroll.yml", "path to configuration file")
	year := flag.Int("year", now.Year(), "year to process")
	month := flag.Int("month", int(now.Month()), "month to process")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		fmt.Fprintln(os.Stderr, "usage: payroll [flags] payments|payslips|revert|fs3|fs5|fs7|serve")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initializeLogger(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	payroll, err := batch.New(cfg.DataDir, batch.Options{
		PartTimeRate:   cfg.PartTimeRate(),
		TransactionsDB: cfg.TransactionsDB,
	}, logger)
	if err != nil {
		logger.Fatal("failed to assemble payroll", zap.Error(err))
	}
	defer payroll.Close()

	if err := run(command, payroll, cfg, *year, *month, logger); err != nil {
		logger.Fatal("command failed",
			zap.String("command", command),
			zap.Error(err))
	}
}

func run(command string, payroll *batch.Payroll, cfg *config.Configuration, year, month int, logger *zap.Logger) error {
	ctx := context.Background()

	switch command {
	case "payments":
		payments, err := payroll.Run(ctx, year, time.Month(month))
		if err != nil {
			return err
		}
		logger.Info("payroll run complete",
			zap.Int("year", year),
			zap.Int("month", month),
			zap.Int("payments", len(payments)))
		return nil

	case "payslips":
		paths, err := payroll.Payslips(year, time.Month(month))
		if err != nil {
			return err
		}
		logger.Info("payslips rendered", zap.Int("count", len(paths)))
		return nil

	case "revert":
		if err := payroll.Revert(year, time.Month(month)); err != nil {
			return err
		}
		logger.Info("payroll reverted", zap.Int("year", year), zap.Int("month", month))
		return nil

	case "fs3":
		return payroll.FS3Generator().GenerateAll(year)

	case "fs5":
		return payroll.FS5Generator().Generate(year, month)

	case "fs7":
		return payroll.FS7Generator().Generate(year)

	case "serve":
		return serve(payroll, cfg, logger)

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func serve(payroll *batch.Payroll, cfg *config.Configuration, logger *zap.Logger) error {
	handler := api.NewHandler(payroll, cfg.DataDir, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	errs := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("listen", cfg.Listen))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errs:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
