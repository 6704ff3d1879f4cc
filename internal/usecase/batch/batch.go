// Package batch implements the server-side batch lifecycle: ingest,
// queue, status, result streaming, deletion.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"brandmark/internal/domain"
	"brandmark/internal/ingest"
	repoBatch "brandmark/internal/repository/batch"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// UploadFile is one incoming multipart file.
type UploadFile struct {
	Filename    string
	ContentType string
	Data        io.Reader
	Size        int64
}

// UploadResult reports what was accepted and what was skipped at ingress.
type UploadResult struct {
	Batch   *domain.Batch
	Skipped []string
}

type BatchUsecase struct {
	repo     batchRepository
	fileRepo fileRepository
	producer taskProducer
	logger   *zlog.Zerolog
	retries  retry.Strategy
}

func NewBatchUsecase(repo batchRepository, fileRepo fileRepository, producer taskProducer, logger *zlog.Zerolog, retries retry.Strategy) *BatchUsecase {
	return &BatchUsecase{
		repo:     repo,
		fileRepo: fileRepo,
		producer: producer,
		logger:   logger,
		retries:  retries,
	}
}

// UploadBatch classifies and stores the uploads, records the batch and
// queues it for processing. Unsupported files are skipped with a warning;
// the call fails only when nothing usable remains.
func (u *BatchUsecase) UploadBatch(ctx context.Context, logo UploadFile, files []UploadFile, cfg domain.WatermarkConfig, profiles []string) (*UploadResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if len(files) > domain.MaxFilesPerBatch {
		return nil, ErrTooManyFiles
	}
	if kind, err := ingest.Classify(logo.Filename, logo.ContentType); err != nil || kind != domain.KindImage {
		return nil, ErrInvalidLogo
	}
	for _, name := range profiles {
		if _, ok := domain.Profiles[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
		}
	}
	if len(profiles) == 0 {
		profiles = []string{domain.ProfileOriginal}
	}

	batchID := uuid.New().String()

	logoPath := inputObjectPath(batchID, "logo"+path.Ext(logo.Filename))
	if err := u.fileRepo.SaveObject(ctx, logoPath, logo.Data, logo.Size, logo.ContentType); err != nil {
		return nil, fmt.Errorf("%w: failed to store logo: %v", ErrStorageError, err)
	}

	var (
		inputs  []domain.UploadRef
		skipped []string
	)
	for _, f := range files {
		kind, err := ingest.Classify(f.Filename, f.ContentType)
		if err != nil {
			skipped = append(skipped, f.Filename)
			u.logger.Warn().Str("filename", f.Filename).Str("content_type", f.ContentType).Msg("Skipping unsupported file")
			continue
		}

		objPath := inputObjectPath(batchID, f.Filename)
		if err := u.fileRepo.SaveObject(ctx, objPath, f.Data, f.Size, f.ContentType); err != nil {
			return nil, fmt.Errorf("%w: failed to store %q: %v", ErrStorageError, f.Filename, err)
		}

		inputs = append(inputs, domain.UploadRef{
			Kind:     kind,
			Path:     objPath,
			Filename: f.Filename,
		})
	}
	if len(inputs) == 0 {
		return nil, ErrNoValidFiles
	}

	now := time.Now()
	b := &domain.Batch{
		ID:         batchID,
		Status:     domain.StatusUploaded,
		Config:     cfg,
		Profiles:   profiles,
		LogoPath:   logoPath,
		InputCount: len(inputs),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := u.repo.Save(ctx, b); err != nil {
		u.fileRepo.DeleteObjectsWithPrefix(ctx, batchPrefix(batchID))
		return nil, fmt.Errorf("failed to save batch: %w", err)
	}

	task := &domain.ProcessingTask{
		ID:       uuid.New().String(),
		BatchID:  batchID,
		LogoPath: logoPath,
		Inputs:   inputs,
		Config:   cfg,
		Profiles: profiles,
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}
	if err := u.producer.Send(ctx, u.retries, []byte(batchID), payload); err != nil {
		u.logger.Error().Err(err).Str("batch_id", batchID).Msg("Failed to queue task")
		u.markStatus(ctx, batchID, domain.StatusFailed)
		return nil, fmt.Errorf("%w: %v", ErrMessageQueueError, err)
	}

	if err := u.repo.UpdateStatus(ctx, batchID, domain.StatusProcessing); err != nil {
		u.logger.Error().Err(err).Str("batch_id", batchID).Msg("Failed to update status")
	} else {
		b.Status = domain.StatusProcessing
	}

	u.logger.Info().
		Str("batch_id", batchID).
		Int("inputs", len(inputs)).
		Int("skipped", len(skipped)).
		Msg("Batch uploaded and queued")

	return &UploadResult{Batch: b, Skipped: skipped}, nil
}

func (u *BatchUsecase) GetBatch(ctx context.Context, id string) (*domain.Batch, error) {
	b, err := u.repo.GetByID(ctx, id)
	if errors.Is(err, repoBatch.ErrBatchNotFound) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	return b, nil
}

func (u *BatchUsecase) ListOutputs(ctx context.Context, id string) ([]domain.BatchOutput, error) {
	if _, err := u.GetBatch(ctx, id); err != nil {
		return nil, err
	}

	outputs, err := u.repo.GetOutputs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list outputs: %w", err)
	}
	return outputs, nil
}

// StreamOutput returns one branded PNG.
func (u *BatchUsecase) StreamOutput(ctx context.Context, batchID, outputID string) (*domain.BatchOutput, io.ReadCloser, error) {
	out, err := u.repo.GetOutputByID(ctx, batchID, outputID)
	if errors.Is(err, repoBatch.ErrOutputNotFound) {
		return nil, nil, ErrOutputNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get output: %w", err)
	}

	reader, err := u.fileRepo.GetObject(ctx, out.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStorageError, err)
	}
	return out, reader, nil
}

// StreamArchive returns the bundled results ZIP once the batch completed.
func (u *BatchUsecase) StreamArchive(ctx context.Context, id string) (io.ReadCloser, error) {
	b, err := u.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.StatusCompleted || b.ArchivePath == "" {
		return nil, ErrResultNotReady
	}

	reader, err := u.fileRepo.GetObject(ctx, b.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageError, err)
	}
	return reader, nil
}

// DeleteBatch removes stored objects and output rows, then soft-deletes
// the batch.
func (u *BatchUsecase) DeleteBatch(ctx context.Context, id string) error {
	if _, err := u.GetBatch(ctx, id); err != nil {
		return err
	}

	if err := u.fileRepo.DeleteObjectsWithPrefix(ctx, batchPrefix(id)); err != nil {
		u.logger.Error().Err(err).Str("batch_id", id).Msg("Failed to delete stored objects")
	}
	if err := u.repo.DeleteOutputs(ctx, id); err != nil {
		u.logger.Error().Err(err).Str("batch_id", id).Msg("Failed to delete output rows")
	}
	if err := u.repo.UpdateStatus(ctx, id, domain.StatusDeleted); err != nil {
		return fmt.Errorf("failed to mark batch deleted: %w", err)
	}

	u.logger.Info().Str("batch_id", id).Msg("Batch deleted")
	return nil
}

func (u *BatchUsecase) markStatus(ctx context.Context, id string, status domain.BatchStatus) {
	if err := u.repo.UpdateStatus(ctx, id, status); err != nil {
		u.logger.Error().Err(err).Str("batch_id", id).Str("status", string(status)).Msg("Failed to update status")
	}
}

func inputObjectPath(batchID, filename string) string {
	return "batches/" + batchID + "/" + domain.PathPrefixInput + path.Base(filename)
}

func batchPrefix(batchID string) string {
	return "batches/" + batchID + "/"
}
