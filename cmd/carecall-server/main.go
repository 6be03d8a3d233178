package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carecall/carecall/internal/config"
	"github.com/carecall/carecall/internal/domain/call"
	"github.com/carecall/carecall/internal/domain/patient"
	"github.com/carecall/carecall/internal/domain/prompt"
	"github.com/carecall/carecall/internal/domain/schedule"
	"github.com/carecall/carecall/internal/platform/db"
	"github.com/carecall/carecall/internal/platform/middleware"
	"github.com/carecall/carecall/internal/platform/vapi"
	"github.com/carecall/carecall/internal/scheduler"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "carecall-server",
		Short: "Care-coordination call scheduling server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(runDueCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and call poller",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Apply(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
	cmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	return cmd
}

// runDueCmd runs a single executor pass and exits. Useful for debugging a
// schedule that does not seem to fire.
func runDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run-due",
		Short: "Run one scheduler pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			defaultLoc, err := time.LoadLocation(cfg.DefaultTimezone)
			if err != nil {
				return err
			}

			provider := vapi.NewClient(cfg.VAPIBaseURL, cfg.VAPIAPIKey, vapi.WithTimeout(cfg.VAPITimeout()))
			exec := scheduler.NewExecutor(
				schedule.NewRepoPG(pool), patient.NewRepoPG(pool), prompt.NewRepoPG(pool),
				call.NewRepoPG(pool), provider, scheduler.Config{
					AssistantID:   cfg.VAPIAssistantID,
					PhoneNumberID: cfg.VAPIPhoneNumberID,
					DefaultLoc:    defaultLoc,
					MaxAttempts:   cfg.ScheduleMaxAttempts,
				}, logger)

			sum := exec.Run(ctx, time.Now())
			fmt.Printf("executed=%d failed=%d skipped=%d\n", sum.Executed, sum.Failed, sum.Skipped)
			return nil
		},
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	defaultLoc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid default timezone")
	}

	// Repositories and services
	patientRepo := patient.NewRepoPG(pool)
	promptRepo := prompt.NewRepoPG(pool)
	scheduleRepo := schedule.NewRepoPG(pool)
	callRepo := call.NewRepoPG(pool)

	provider := vapi.NewClient(cfg.VAPIBaseURL, cfg.VAPIAPIKey, vapi.WithTimeout(cfg.VAPITimeout()))

	patientSvc := patient.NewService(patientRepo)
	promptSvc := prompt.NewService(promptRepo)
	scheduleSvc := schedule.NewService(scheduleRepo)
	callSvc := call.NewService(callRepo, provider)

	exec := scheduler.NewExecutor(scheduleRepo, patientRepo, promptRepo, callRepo, provider, scheduler.Config{
		AssistantID:   cfg.VAPIAssistantID,
		PhoneNumberID: cfg.VAPIPhoneNumberID,
		DefaultLoc:    defaultLoc,
		MaxAttempts:   cfg.ScheduleMaxAttempts,
	}, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	prompt.NewHandler(promptSvc).RegisterRoutes(apiV1)
	schedule.NewHandler(scheduleSvc, exec).RegisterRoutes(apiV1)
	call.NewHandler(callSvc).RegisterRoutes(apiV1)

	// Poller
	pollerCtx, pollerCancel := context.WithCancel(ctx)
	defer pollerCancel()
	poller := scheduler.NewPoller(exec, cfg.PollInterval(), logger)
	if err := poller.Start(pollerCtx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start poller")
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	pollerCancel()
	<-poller.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
