package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kutbudev/todoflow/api"
	"github.com/kutbudev/todoflow/internal/logger"
	"github.com/kutbudev/todoflow/internal/observability"
	"github.com/kutbudev/todoflow/internal/service"
	"github.com/kutbudev/todoflow/pkg/config"
	"github.com/kutbudev/todoflow/pkg/repository"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// setup loads config, installs the default logger and opens the database.
func setup(configPath string) (*config.Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.New(cfg.Log, os.Stdout)
	slog.SetDefault(log)

	db, err := repository.NewDatabase(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *configPath)
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, log, db, err := setup(configPath)
	if err != nil {
		return err
	}
	defer repository.Close(db)

	loc, err := cfg.Server.Location()
	if err != nil {
		return err
	}
	opts := []service.Option{service.WithLocation(loc)}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
		opts = append(opts, service.WithObserver(metrics))
	}

	shutdownTracer, err := observability.InitTracer(cfg.Tracing.Exporter, cfg.Tracing.ServiceName, os.Stderr)
	if err != nil {
		return err
	}
	var tracingService string
	if cfg.Tracing.Exporter == "stdout" {
		tracingService = cfg.Tracing.ServiceName
	}

	svc, err := service.New(db, opts...)
	if err != nil {
		return err
	}

	gin.SetMode(cfg.Server.Mode)
	router, err := api.NewRouter(api.Options{
		Service:        svc,
		Logger:         log,
		APIKey:         cfg.Server.APIKey,
		Metrics:        metrics,
		MetricsPath:    cfg.Metrics.Path,
		TracingService: tracingService,
	})
	if err != nil {
		return err
	}
	if cfg.Server.APIKey == "" {
		log.Warn("server.api_key is empty, /v1 is unauthenticated")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr, "driver", cfg.Database.Driver, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", "error", err)
	}
	return nil
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := setup(*configPath)
			if err != nil {
				return err
			}
			log.Info("schema migrated", "driver", cfg.Database.Driver)
			return repository.Close(db)
		},
	}
}

func newRollupCmd(configPath *string) *cobra.Command {
	var (
		date   string
		userID uint
	)
	cmd := &cobra.Command{
		Use:   "rollup",
		Short: "Compute and store the daily analytics row",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, db, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer repository.Close(db)

			loc, err := cfg.Server.Location()
			if err != nil {
				return err
			}
			svc, err := service.New(db, service.WithLocation(loc))
			if err != nil {
				return err
			}

			day := svc.Now()
			if date != "" {
				d, err := time.ParseInLocation("2006-01-02", date, loc)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
				day = d.Add(12 * time.Hour)
			}
			var user *uint
			if cmd.Flags().Changed("user") {
				user = &userID
			}

			row, err := svc.Rollup(cmd.Context(), day, user)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(row)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to roll up, YYYY-MM-DD (default today)")
	cmd.Flags().UintVar(&userID, "user", 0, "limit to a user")
	return cmd
}
