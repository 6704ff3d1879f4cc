// Package processor runs the watermarking pipeline for one batch at a
// time: fetch inputs, extract archives, composite, persist variants.
package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"brandmark/internal/domain"
	"brandmark/internal/ingest"
	"brandmark/internal/watermark"

	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/zlog"
)

type BatchProcessor struct {
	compositor *watermark.Compositor
	fileRepo   fileRepository
	logger     *zlog.Zerolog
}

func NewBatchProcessor(compositor *watermark.Compositor, fileRepo fileRepository, logger *zlog.Zerolog) *BatchProcessor {
	return &BatchProcessor{
		compositor: compositor,
		fileRepo:   fileRepo,
		logger:     logger,
	}
}

// Process executes the full pipeline for task. Images are handled strictly
// one at a time; a failed image is counted and skipped, and the batch
// fails only when nothing succeeded.
func (p *BatchProcessor) Process(ctx context.Context, task *domain.ProcessingTask) (*domain.ProcessingResult, []domain.BatchOutput, error) {
	result := &domain.ProcessingResult{
		ID:      task.ID,
		BatchID: task.BatchID,
		Status:  domain.StatusCompleted,
	}

	workDir, err := os.MkdirTemp("", "brandmark-"+task.BatchID+"-")
	if err != nil {
		result.Status = domain.StatusFailed
		result.Error = fmt.Sprintf("Failed to create workspace: %v", err)
		return result, nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	defer os.RemoveAll(workDir)

	inputDir := filepath.Join(workDir, "input")
	outputDir := filepath.Join(workDir, "output")
	for _, dir := range []string{inputDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			result.Status = domain.StatusFailed
			result.Error = fmt.Sprintf("Failed to create workspace: %v", err)
			return result, nil, fmt.Errorf("failed to create workspace: %w", err)
		}
	}

	logo, err := p.fetchLogo(ctx, task.LogoPath)
	if err != nil {
		result.Status = domain.StatusFailed
		result.Error = fmt.Sprintf("Failed to load logo: %v", err)
		return result, nil, fmt.Errorf("failed to load logo: %w", err)
	}

	p.stageInputs(ctx, task, workDir, inputDir, result)

	files, err := ingest.ListImages(inputDir)
	if err != nil {
		result.Status = domain.StatusFailed
		result.Error = fmt.Sprintf("Failed to scan inputs: %v", err)
		return result, nil, fmt.Errorf("failed to scan inputs: %w", err)
	}
	if len(files) == 0 {
		result.Status = domain.StatusFailed
		result.Error = "No valid image files were found after processing uploads"
		return result, nil, nil
	}

	profiles := resolveProfiles(task.Profiles)

	p.logger.Info().
		Str("batch_id", task.BatchID).
		Int("images", len(files)).
		Int("profiles", len(profiles)).
		Msg("Starting batch processing")

	var outputs []domain.BatchOutput
	for _, rel := range files {
		outs, err := p.processImage(ctx, task, logo, inputDir, outputDir, rel, profiles)
		if err != nil {
			result.ErrorCount++
			p.logger.Error().Err(err).
				Str("batch_id", task.BatchID).
				Str("file", rel).
				Msg("Failed to process image")
			continue
		}
		outputs = append(outputs, outs...)
		result.ProcessedCount++
	}

	if result.ProcessedCount == 0 {
		result.Status = domain.StatusFailed
		result.Error = "No images were processed successfully"
		return result, nil, nil
	}

	archivePath, err := p.storeArchive(ctx, task.BatchID, outputDir)
	if err != nil {
		// Outputs are already stored individually; a missing bundle does
		// not fail the batch.
		p.logger.Error().Err(err).Str("batch_id", task.BatchID).Msg("Failed to store result archive")
	} else {
		result.ArchivePath = archivePath
	}

	p.logger.Info().
		Str("batch_id", task.BatchID).
		Int("processed", result.ProcessedCount).
		Int("errors", result.ErrorCount).
		Msg("Batch processing completed")

	return result, outputs, nil
}

func (p *BatchProcessor) fetchLogo(ctx context.Context, path string) (image.Image, error) {
	reader, err := p.fileRepo.GetObject(ctx, path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return imaging.Decode(reader)
}

// stageInputs materializes every upload into the run workspace. Failures
// here are the per-upload-file tier: skip, count, continue.
func (p *BatchProcessor) stageInputs(ctx context.Context, task *domain.ProcessingTask, workDir, inputDir string, result *domain.ProcessingResult) {
	for _, ref := range task.Inputs {
		if err := p.stageInput(ctx, ref, workDir, inputDir); err != nil {
			result.ErrorCount++
			p.logger.Warn().Err(err).
				Str("batch_id", task.BatchID).
				Str("file", ref.Filename).
				Msg("Skipping upload")
		}
	}
}

func (p *BatchProcessor) stageInput(ctx context.Context, ref domain.UploadRef, workDir, inputDir string) error {
	reader, err := p.fileRepo.GetObject(ctx, ref.Path)
	if err != nil {
		return fmt.Errorf("failed to fetch upload: %w", err)
	}
	defer reader.Close()

	switch ref.Kind {
	case domain.KindArchive:
		archivePath, err := ingest.WriteFile(workDir, ref.Filename, reader)
		if err != nil {
			return fmt.Errorf("failed to stage archive: %w", err)
		}
		if err := ingest.ExtractArchive(archivePath, inputDir); err != nil {
			return err
		}
	case domain.KindImage:
		if _, err := ingest.WriteFile(inputDir, ref.Filename, reader); err != nil {
			return fmt.Errorf("failed to stage image: %w", err)
		}
	default:
		return fmt.Errorf("unknown upload kind %q", ref.Kind)
	}
	return nil
}

func (p *BatchProcessor) processImage(ctx context.Context, task *domain.ProcessingTask, logo image.Image, inputDir, outputDir, rel string, profiles []domain.OutputProfile) ([]domain.BatchOutput, error) {
	src, err := imaging.Open(filepath.Join(inputDir, rel))
	if err != nil {
		return nil, fmt.Errorf("failed to decode: %w", err)
	}

	composited, err := p.compositor.Apply(src, logo, task.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to composite: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	relDir := filepath.Dir(rel)

	var outputs []domain.BatchOutput
	for _, profile := range profiles {
		variant := composited
		if !profile.Original() {
			variant = watermark.ResizeWithPadding(composited, profile.Width, profile.Height, task.Config.Background.NRGBA())
		}

		name := fmt.Sprintf("%s_branded_%s.png", stem, profile.Label())
		outRel := filepath.Join(relDir, name)

		var buf bytes.Buffer
		if err := png.Encode(&buf, variant); err != nil {
			return nil, fmt.Errorf("failed to encode %q: %w", name, err)
		}

		localPath := filepath.Join(outputDir, outRel)
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output dir: %w", err)
		}
		if err := os.WriteFile(localPath, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %q: %w", name, err)
		}

		objectPath := outputObjectPath(task.BatchID, outRel)
		if err := p.fileRepo.SaveObject(ctx, objectPath, bytes.NewReader(buf.Bytes()), int64(buf.Len()), domain.MimePNG); err != nil {
			return nil, fmt.Errorf("failed to store %q: %w", name, err)
		}

		outputs = append(outputs, domain.BatchOutput{
			BatchID:    task.BatchID,
			SourcePath: rel,
			Profile:    profile.Name,
			Path:       objectPath,
			Size:       int64(buf.Len()),
		})
	}

	return outputs, nil
}

func (p *BatchProcessor) storeArchive(ctx context.Context, batchID, outputDir string) (string, error) {
	var buf bytes.Buffer
	if err := ingest.BundleDir(&buf, outputDir); err != nil {
		return "", fmt.Errorf("failed to bundle outputs: %w", err)
	}

	path := archiveObjectPath(batchID)
	if err := p.fileRepo.SaveObject(ctx, path, bytes.NewReader(buf.Bytes()), int64(buf.Len()), domain.MimeZIP); err != nil {
		return "", fmt.Errorf("failed to store archive: %w", err)
	}
	return path, nil
}

// resolveProfiles maps selected names onto the registry; unknown names are
// dropped and an empty selection falls back to the original size.
func resolveProfiles(names []string) []domain.OutputProfile {
	var profiles []domain.OutputProfile
	seen := make(map[string]bool)
	for _, name := range names {
		profile, ok := domain.Profiles[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		profiles = append(profiles, profile)
	}
	if len(profiles) == 0 {
		profiles = append(profiles, domain.Profiles[domain.ProfileOriginal])
	}
	return profiles
}

func outputObjectPath(batchID, rel string) string {
	return "batches/" + batchID + "/" + domain.PathPrefixOutput + filepath.ToSlash(rel)
}

func archiveObjectPath(batchID string) string {
	return "batches/" + batchID + "/" + domain.ArchiveObjectName
}
