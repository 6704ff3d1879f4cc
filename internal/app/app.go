// Package app wires the HTTP API: config, database, object storage,
// broker, usecases and the router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"brandmark/internal/auth"
	kafka_impl "brandmark/internal/broker/kafka"
	"brandmark/internal/config"
	batch_h "brandmark/internal/http-server/handler/batch"
	session_h "brandmark/internal/http-server/handler/session"
	"brandmark/internal/http-server/router"
	repo_batch "brandmark/internal/repository/batch"
	postgres_repo "brandmark/internal/repository/batch/db/postgres"
	minio_repo "brandmark/internal/repository/file/minio"
	batch_uc "brandmark/internal/usecase/batch"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

type App struct {
	cfg      *config.Config
	server   *http.Server
	logger   *zlog.Zerolog
	db       *dbpg.DB
	producer *kafka_impl.TaskProducer
}

func NewApp(cfg *config.Config, logger *zlog.Zerolog) (*App, error) {
	if err := cfg.ValidateAuth(); err != nil {
		return nil, fmt.Errorf("auth configuration: %w", err)
	}

	dbOpts := &dbpg.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}

	db, err := dbpg.New(cfg.DBDSN(), []string{}, dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := repo_batch.Migrate(db.Master, cfg.DB.MigrationsPath); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	fileRepo, err := minio_repo.NewFileRepository(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file repository: %w", err)
	}

	batchRepo := postgres_repo.NewBatchRepository(db, cfg.DefaultRetryStrategy())
	producer := kafka_impl.NewTaskProducer(cfg)

	batchUsecase := batch_uc.NewBatchUsecase(batchRepo, fileRepo, producer, logger, cfg.DefaultRetryStrategy())

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	h := &router.Handler{
		SessionHandler: session_h.NewSessionHandler(cfg.Auth.PasswordHash, tokens, logger),
		BatchHandler:   batch_h.NewBatchHandler(batchUsecase, logger),
		Tokens:         tokens,
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Addr,
		Handler:      router.SetupRouter(h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:      cfg,
		server:   server,
		logger:   logger,
		db:       db,
		producer: producer,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info().Str("addr", a.cfg.Server.Addr).Msg("Starting server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.handleSignals(cancel)

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		a.logger.Error().Err(err).Msg("Server error")
		return err
	case <-ctx.Done():
		a.logger.Info().Msg("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("Server shutdown failed")
		}

		if a.db != nil && a.db.Master != nil {
			a.db.Master.Close()
		}
		if a.producer != nil {
			a.producer.Close()
		}

		a.logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}

func (a *App) handleSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	a.logger.Info().Str("signal", sig.String()).Msg("Received signal")
	cancel()
}
