package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"nutricare-server/internal/config"
	"nutricare-server/internal/jobs"
	"nutricare-server/internal/logger"
	"nutricare-server/internal/middleware"
	"nutricare-server/internal/models"
	"nutricare-server/internal/repository"
	"nutricare-server/internal/routes"
	"nutricare-server/internal/scheduling"
	"nutricare-server/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nutricare",
		Short: "NutriCare scheduling and patient follow-up API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and the realize sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			if err := models.Migrate(db); err != nil {
				return err
			}
			log.Info().Str("driver", cfg.Database.Driver).Msg("schema migrated")
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark elapsed confirmed appointments as realized once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			svc, err := newService(cfg, db, log)
			if err != nil {
				return err
			}
			n, err := jobs.RunSweep(cmd.Context(), svc, log)
			if err != nil {
				return err
			}
			fmt.Printf("Realized %d appointment(s).\n", n)
			return nil
		},
	}
}

// bootstrap loads .env, the configuration and the logger.
func bootstrap() (*config.Config, zerolog.Logger, error) {
	// .env is optional; the environment may already carry every key.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	return cfg, logger.New(cfg.Environment), nil
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	return models.Open(models.DatabaseConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Debug:  cfg.IsDev(),
	})
}

func newService(cfg *config.Config, db *gorm.DB, log zerolog.Logger) (*scheduling.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return scheduling.NewService(repository.New(db), scheduling.Options{
		Location:     loc,
		CancelPolicy: scheduling.CancelPolicy(cfg.PendingCancelPolicy),
		AppURL:       cfg.AppURL,
		Logger:       log.With().Str("component", "scheduling").Logger(),
	}), nil
}

func runServer() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	if err := models.Migrate(db); err != nil {
		return err
	}

	svc, err := newService(cfg, db, log)
	if err != nil {
		return err
	}

	if err := utils.RegisterValidators(); err != nil {
		return err
	}

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.RequestLogger(log), gin.Recovery())

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Deps{DB: db, Cfg: cfg, Svc: svc, Logger: log})

	sweeper, err := jobs.NewScheduler(cfg.SweepCron, svc, log.With().Str("component", "sweep").Logger())
	if err != nil {
		return err
	}
	sweeper.Start()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	<-sweeper.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
