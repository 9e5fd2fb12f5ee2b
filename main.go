package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/c14220110/hms-backend/config"
	"github.com/c14220110/hms-backend/internal/common/middlewares"
	"github.com/c14220110/hms-backend/internal/jobs"
	labServices "github.com/c14220110/hms-backend/internal/labs/services"
	"github.com/c14220110/hms-backend/internal/routes"
	"github.com/c14220110/hms-backend/pkg/events"
	"github.com/c14220110/hms-backend/pkg/logger"
	"github.com/c14220110/hms-backend/pkg/storage/mariadb"
	"github.com/c14220110/hms-backend/ws"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-server",
		Short: "Hospital management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedLabCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API, live dashboard hub and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			log := logger.New(cfg.AppEnv)
			db, err := mariadb.Connect(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := mariadb.Migrate(cmd.Context(), db)
			if err != nil {
				return err
			}
			log.Info().Int("statements", n).Msg("schema is up to date")
			return nil
		},
	}
}

func seedLabCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "seed-lab",
		Short: "Fill the lab queue with paid requests for existing patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			log := logger.New(cfg.AppEnv)
			db, err := mariadb.Connect(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := labServices.NewLabService(db, events.Nop{}, log).SeedPaidRequests(cmd.Context(), count)
			if err != nil {
				return err
			}
			log.Info().Int("created", n).Msg("lab requests seeded")
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "number of paid lab requests to create")
	return cmd
}

func runServer() error {
	cfg := config.LoadConfig()
	log := logger.New(cfg.AppEnv)
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is not set")
	}

	db, err := mariadb.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("connected to database")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// stopped only after the HTTP server has drained
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := ws.NewHub(log)
	go hub.Run(hubCtx)

	publishers := events.Multi{hub}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error().Err(err).Strs("brokers", cfg.KafkaBrokers).Msg("kafka unavailable, continuing without event stream")
		} else {
			defer kafka.Close()
			publishers = append(publishers, kafka)
			log.Info().Str("topic", cfg.KafkaTopic).Msg("publishing workflow events to kafka")
		}
	}

	e := newEcho(cfg, log)
	svc := routes.Init(e, db, routes.Deps{Config: cfg, Events: publishers, Hub: hub, Log: log})

	sweep := jobs.NewStockSweep(svc.Pharmacy, publishers, log)
	scheduler, err := sweep.Start(ctx, cfg.StockSweepInterval)
	if err != nil {
		log.Error().Err(err).Msg("stock sweep not scheduled")
	} else {
		defer scheduler.Stop()
	}

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = e.Shutdown(shutdownCtx)
	stopHub()
	if err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func newEcho(cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewares.Recovery(log))
	e.Use(echomw.RequestID())
	e.Use(middlewares.Logger(log))
	e.Use(middlewares.Metrics())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))
	return e
}
