// Package worker consumes processing tasks and runs the watermarking
// pipeline. Each batch is handled by exactly one goroutine; the pool
// parallelism is across batches, never within one.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	kafka_impl "brandmark/internal/broker/kafka"
	"brandmark/internal/config"
	"brandmark/internal/domain"
	repo_batch "brandmark/internal/repository/batch"
	postgres_repo "brandmark/internal/repository/batch/db/postgres"
	minio_repo "brandmark/internal/repository/file/minio"
	"brandmark/internal/usecase/processor"
	"brandmark/internal/watermark"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

type Worker struct {
	cfg       *config.Config
	logger    *zlog.Zerolog
	db        *dbpg.DB
	consumer  *kafka_impl.TaskConsumer
	results   *kafka_impl.ResultProducer
	processor *processor.BatchProcessor
	batchRepo *postgres_repo.BatchRepository
}

func NewWorker(cfg *config.Config, logger *zlog.Zerolog) (*Worker, error) {
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

	compositor, err := watermark.NewCompositor(cfg.Watermark.FontPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load watermark font: %w", err)
	}

	return &Worker{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		consumer:  kafka_impl.NewTaskConsumer(cfg),
		results:   kafka_impl.NewResultProducer(cfg),
		processor: processor.NewBatchProcessor(compositor, fileRepo, logger),
		batchRepo: postgres_repo.NewBatchRepository(db, cfg.DefaultRetryStrategy()),
	}, nil
}

func (w *Worker) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages := make(chan kafka.Message, w.cfg.Worker.Concurrency)

	go w.consumer.StartConsuming(ctx, messages, w.cfg.DefaultRetryStrategy())

	for i := 0; i < w.cfg.Worker.Concurrency; i++ {
		go w.worker(ctx, i, messages)
	}

	w.logger.Info().Int("concurrency", w.cfg.Worker.Concurrency).Msg("Worker started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	w.logger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
	cancel()

	w.consumer.Close()
	w.results.Close()
	if w.db != nil && w.db.Master != nil {
		w.db.Master.Close()
	}

	return nil
}

func (w *Worker) worker(ctx context.Context, id int, messages <-chan kafka.Message) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Int("worker_id", id).Msg("Worker stopped")
			return
		case msg := <-messages:
			w.processMessage(ctx, id, msg)
		}
	}
}

func (w *Worker) processMessage(ctx context.Context, workerID int, msg kafka.Message) {
	var task domain.ProcessingTask
	if err := json.Unmarshal(msg.Value, &task); err != nil {
		w.logger.Error().Err(err).Int("worker_id", workerID).Msg("Failed to unmarshal task")
		return
	}

	w.logger.Info().
		Int("worker_id", workerID).
		Str("task_id", task.ID).
		Str("batch_id", task.BatchID).
		Int("inputs", len(task.Inputs)).
		Msg("Processing batch")

	result, outputs, err := w.processor.Process(ctx, &task)
	if err != nil {
		w.logger.Error().Err(err).Str("batch_id", task.BatchID).Msg("Processing failed")
	}

	for i := range outputs {
		if err := w.batchRepo.SaveOutput(ctx, &outputs[i]); err != nil {
			w.logger.Error().Err(err).
				Str("batch_id", task.BatchID).
				Str("path", outputs[i].Path).
				Msg("Failed to save output record")
		}
	}

	if err := w.batchRepo.SaveResult(ctx, result); err != nil {
		w.logger.Error().Err(err).Str("batch_id", task.BatchID).Msg("Failed to save batch result")
	}

	if err := w.sendResult(ctx, result); err != nil {
		w.logger.Error().Err(err).Str("batch_id", task.BatchID).Msg("Failed to publish result")
	}

	if err := w.consumer.Commit(ctx, msg); err != nil {
		w.logger.Error().Err(err).Str("batch_id", task.BatchID).Msg("Failed to commit message")
	}

	w.logger.Info().
		Int("worker_id", workerID).
		Str("batch_id", task.BatchID).
		Str("status", string(result.Status)).
		Int("processed", result.ProcessedCount).
		Int("errors", result.ErrorCount).
		Msg("Batch completed")
}

func (w *Worker) sendResult(ctx context.Context, result *domain.ProcessingResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return w.results.Send(ctx, w.cfg.DefaultRetryStrategy(), []byte(result.BatchID), payload)
}
