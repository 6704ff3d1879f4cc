// Package minio stores batch inputs, outputs and result archives in
// object storage.
package minio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"brandmark/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/zlog"
)

type FileRepository struct {
	client *minio.Client
	bucket string
	logger *zlog.Zerolog
}

func NewFileRepository(cfg *config.Config, logger *zlog.Zerolog) (*FileRepository, error) {
	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	repo := &FileRepository{
		client: client,
		bucket: cfg.Minio.Bucket,
		logger: logger,
	}

	if err := repo.ensureBucket(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket %q: %w", cfg.Minio.Bucket, err)
	}

	return repo, nil
}

func (r *FileRepository) ensureBucket(ctx context.Context) error {
	exists, err := r.client.BucketExists(ctx, r.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	r.logger.Info().Str("bucket", r.bucket).Msg("Creating bucket")
	return r.client.MakeBucket(ctx, r.bucket, minio.MakeBucketOptions{})
}

func (r *FileRepository) SaveObject(ctx context.Context, path string, data io.Reader, size int64, contentType string) error {
	if data == nil {
		return errors.New("nil reader passed to SaveObject")
	}

	_, err := r.client.PutObject(ctx, r.bucket, path, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %q: %w", path, err)
	}
	return nil
}

func (r *FileRepository) GetObject(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := r.client.GetObject(ctx, r.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %q: %w", path, err)
	}

	// GetObject is lazy; Stat surfaces a missing key before first read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf("failed to stat object %q: %w", path, err)
	}

	return obj, nil
}

func (r *FileRepository) DeleteObjectsWithPrefix(ctx context.Context, prefix string) error {
	objects := r.client.ListObjects(ctx, r.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var errs []error
	for obj := range objects {
		if obj.Err != nil {
			errs = append(errs, obj.Err)
			continue
		}
		if err := r.client.RemoveObject(ctx, r.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %q: %w", obj.Key, err))
		}
	}

	return errors.Join(errs...)
}
