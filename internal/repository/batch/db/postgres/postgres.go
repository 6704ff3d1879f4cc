package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"brandmark/internal/domain"
	"brandmark/internal/repository/batch"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

type BatchRepository struct {
	db      *dbpg.DB
	retries retry.Strategy
}

func NewBatchRepository(db *dbpg.DB, retries retry.Strategy) *BatchRepository {
	return &BatchRepository{
		db:      db,
		retries: retries,
	}
}

func (r *BatchRepository) Save(ctx context.Context, b *domain.Batch) error {
	cfg, err := json.Marshal(b.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	query := `
		INSERT INTO batches (
			id, status, config, profiles, logo_path, input_count,
			processed_count, error_count, archive_path, error, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.ExecWithRetry(ctx, r.retries, query,
		b.ID,
		b.Status,
		cfg,
		pq.Array(b.Profiles),
		b.LogoPath,
		b.InputCount,
		b.ProcessedCount,
		b.ErrorCount,
		b.ArchivePath,
		b.Error,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save batch: %w", err)
	}

	return nil
}

func (r *BatchRepository) GetByID(ctx context.Context, id string) (*domain.Batch, error) {
	query := `
		SELECT id, status, config, profiles, logo_path, input_count,
		       processed_count, error_count, archive_path, error, created_at, updated_at
		FROM batches
		WHERE id = $1 AND status != $2
	`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, id, domain.StatusDeleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, batch.ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query batch: %w", err)
	}

	var b domain.Batch
	var cfg []byte
	err = row.Scan(
		&b.ID,
		&b.Status,
		&cfg,
		pq.Array(&b.Profiles),
		&b.LogoPath,
		&b.InputCount,
		&b.ProcessedCount,
		&b.ErrorCount,
		&b.ArchivePath,
		&b.Error,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, batch.ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan batch: %w", err)
	}

	if err := json.Unmarshal(cfg, &b.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &b, nil
}

func (r *BatchRepository) UpdateStatus(ctx context.Context, id string, status domain.BatchStatus) error {
	query := `UPDATE batches SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecWithRetry(ctx, r.retries, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return batch.ErrBatchNotFound
	}

	return nil
}

// SaveResult records the outcome of a processing run.
func (r *BatchRepository) SaveResult(ctx context.Context, res *domain.ProcessingResult) error {
	query := `
		UPDATE batches
		SET status = $1, processed_count = $2, error_count = $3,
		    archive_path = $4, error = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.db.ExecWithRetry(ctx, r.retries, query,
		res.Status,
		res.ProcessedCount,
		res.ErrorCount,
		res.ArchivePath,
		res.Error,
		time.Now(),
		res.BatchID,
	)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return batch.ErrBatchNotFound
	}

	return nil
}

func (r *BatchRepository) SaveOutput(ctx context.Context, out *domain.BatchOutput) error {
	query := `
		INSERT INTO batch_outputs (id, batch_id, source_path, profile, path, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	out.ID = uuid.New().String()
	out.CreatedAt = time.Now()

	_, err := r.db.ExecWithRetry(ctx, r.retries, query,
		out.ID,
		out.BatchID,
		out.SourcePath,
		out.Profile,
		out.Path,
		out.Size,
		out.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save output: %w", err)
	}

	return nil
}

func (r *BatchRepository) GetOutputs(ctx context.Context, batchID string) ([]domain.BatchOutput, error) {
	query := `
		SELECT id, batch_id, source_path, profile, path, size, created_at
		FROM batch_outputs
		WHERE batch_id = $1
		ORDER BY source_path, profile
	`

	rows, err := r.db.QueryWithRetry(ctx, r.retries, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outputs: %w", err)
	}
	defer rows.Close()

	var outputs []domain.BatchOutput
	for rows.Next() {
		var out domain.BatchOutput
		if err := rows.Scan(&out.ID, &out.BatchID, &out.SourcePath, &out.Profile, &out.Path, &out.Size, &out.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan output: %w", err)
		}
		outputs = append(outputs, out)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outputs: %w", err)
	}

	return outputs, nil
}

func (r *BatchRepository) GetOutputByID(ctx context.Context, batchID, outputID string) (*domain.BatchOutput, error) {
	query := `
		SELECT id, batch_id, source_path, profile, path, size, created_at
		FROM batch_outputs
		WHERE batch_id = $1 AND id = $2
	`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, batchID, outputID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, batch.ErrOutputNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query output: %w", err)
	}

	var out domain.BatchOutput
	err = row.Scan(&out.ID, &out.BatchID, &out.SourcePath, &out.Profile, &out.Path, &out.Size, &out.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, batch.ErrOutputNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan output: %w", err)
	}

	return &out, nil
}

func (r *BatchRepository) DeleteOutputs(ctx context.Context, batchID string) error {
	query := `DELETE FROM batch_outputs WHERE batch_id = $1`

	if _, err := r.db.ExecWithRetry(ctx, r.retries, query, batchID); err != nil {
		return fmt.Errorf("failed to delete outputs: %w", err)
	}
	return nil
}
