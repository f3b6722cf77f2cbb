package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/candidate-tracker/internal/config"
	"github.com/jonathan/candidate-tracker/internal/db"
	"github.com/jonathan/candidate-tracker/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the screening, review and bulk action endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply the database schema before serving")
	_ = v.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	defer a.Close()

	if serveMigrate {
		if err := migrateStore(ctx, a); err != nil {
			return err
		}
	}

	srv := server.New(server.Config{
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimit:       cfg.RateLimit.Config(),
	}, server.Deps{
		Lifecycle: a.lifecycle,
		Screening: a.screening,
		Bulk:      a.bulk,
		Tokens:    server.NewJWTService(jwtConfig).AsTokenValidator(),
		Health:    a.store,
	}, zlog.Named("http"))

	zlog.Info("candidate tracker ready",
		zap.String("store", cfg.Store),
		zap.String("scoring", cfg.Scoring.Provider),
		zap.Bool("auto_invite", cfg.Classification.AutoInviteEnabled),
		zap.Bool("auto_reject", cfg.Classification.AutoRejectEnabled),
	)
	return srv.Start(ctx)
}

func migrateStore(ctx context.Context, a *app) error {
	pg, ok := a.store.(*db.DB)
	if !ok {
		zlog.Info("in-memory store needs no migration")
		return nil
	}
	if err := pg.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	zlog.Info("database schema applied")
	return nil
}
