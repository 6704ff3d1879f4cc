package batch

import (
	"context"
	"io"

	"brandmark/internal/domain"

	"github.com/wb-go/wbf/retry"
)

type batchRepository interface {
	Save(ctx context.Context, b *domain.Batch) error
	GetByID(ctx context.Context, id string) (*domain.Batch, error)
	UpdateStatus(ctx context.Context, id string, status domain.BatchStatus) error
	GetOutputs(ctx context.Context, batchID string) ([]domain.BatchOutput, error)
	GetOutputByID(ctx context.Context, batchID, outputID string) (*domain.BatchOutput, error)
	DeleteOutputs(ctx context.Context, batchID string) error
}

type fileRepository interface {
	SaveObject(ctx context.Context, path string, data io.Reader, size int64, contentType string) error
	GetObject(ctx context.Context, path string) (io.ReadCloser, error)
	DeleteObjectsWithPrefix(ctx context.Context, prefix string) error
}

type taskProducer interface {
	Send(ctx context.Context, strategy retry.Strategy, key, value []byte) error
}
