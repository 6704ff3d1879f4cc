package batch

import (
	"context"
	"io"

	"brandmark/internal/domain"
	batch_uc "brandmark/internal/usecase/batch"
)

type batchUsecase interface {
	UploadBatch(ctx context.Context, logo batch_uc.UploadFile, files []batch_uc.UploadFile, cfg domain.WatermarkConfig, profiles []string) (*batch_uc.UploadResult, error)
	GetBatch(ctx context.Context, id string) (*domain.Batch, error)
	ListOutputs(ctx context.Context, id string) ([]domain.BatchOutput, error)
	StreamOutput(ctx context.Context, batchID, outputID string) (*domain.BatchOutput, io.ReadCloser, error)
	StreamArchive(ctx context.Context, id string) (io.ReadCloser, error)
	DeleteBatch(ctx context.Context, id string) error
}
