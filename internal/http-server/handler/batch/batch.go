package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"

	"brandmark/internal/domain"
	"brandmark/internal/http-server/handler/batch/dto"
	batch_uc "brandmark/internal/usecase/batch"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

const maxMemory = 32 << 20

type BatchHandler struct {
	usecase  batchUsecase
	validate *validator.Validate
	logger   *zlog.Zerolog
}

func NewBatchHandler(usecase batchUsecase, logger *zlog.Zerolog) *BatchHandler {
	return &BatchHandler{
		usecase:  usecase,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *BatchHandler) UploadBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, domain.DefaultMaxUploadSize)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to parse multipart form")
		h.respondError(w, http.StatusBadRequest, "Invalid request format", nil)
		return
	}

	logoHeaders := r.MultipartForm.File["logo"]
	if len(logoHeaders) == 0 {
		h.respondError(w, http.StatusBadRequest, "Logo file is required", nil)
		return
	}
	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		h.respondError(w, http.StatusBadRequest, "Product files are required", nil)
		return
	}

	cfg, profiles, err := h.parseConfig(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	logo, closeLogo, err := openUpload(logoHeaders[0])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Failed to read logo", err)
		return
	}
	defer closeLogo()

	files := make([]batch_uc.UploadFile, 0, len(fileHeaders))
	var closers []func()
	defer func() {
		for _, c := range closers {
			c()
		}
	}()
	for _, fh := range fileHeaders {
		f, closeFile, err := openUpload(fh)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read %q", fh.Filename), err)
			return
		}
		closers = append(closers, closeFile)
		files = append(files, f)
	}

	result, err := h.usecase.UploadBatch(ctx, logo, files, cfg, profiles)
	if err != nil {
		h.handleUploadError(w, err)
		return
	}

	h.logger.Info().
		Str("batch_id", result.Batch.ID).
		Int("inputs", result.Batch.InputCount).
		Msg("Batch accepted")

	h.respondJSON(w, http.StatusAccepted, dto.UploadResponse{
		ID:         result.Batch.ID,
		Status:     string(result.Batch.Status),
		InputCount: result.Batch.InputCount,
		Skipped:    result.Skipped,
		CreatedAt:  result.Batch.CreatedAt,
	})
}

func (h *BatchHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "Batch ID is required", nil)
		return
	}

	b, err := h.usecase.GetBatch(r.Context(), id)
	if err != nil {
		h.handleBatchError(w, err, id)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.BatchResponse{
		ID:             b.ID,
		Status:         string(b.Status),
		InputCount:     b.InputCount,
		ProcessedCount: b.ProcessedCount,
		ErrorCount:     b.ErrorCount,
		Error:          b.Error,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	})
}

func (h *BatchHandler) ListOutputs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "Batch ID is required", nil)
		return
	}

	outputs, err := h.usecase.ListOutputs(r.Context(), id)
	if err != nil {
		h.handleBatchError(w, err, id)
		return
	}

	resp := make([]dto.OutputResponse, 0, len(outputs))
	for _, out := range outputs {
		resp = append(resp, dto.OutputResponse{
			ID:         out.ID,
			SourcePath: out.SourcePath,
			Profile:    out.Profile,
			Filename:   path.Base(out.Path),
			Size:       out.Size,
		})
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *BatchHandler) DownloadOutput(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "id")
	outputID := chi.URLParam(r, "outputID")
	if batchID == "" || outputID == "" {
		h.respondError(w, http.StatusBadRequest, "Batch and output IDs are required", nil)
		return
	}

	out, reader, err := h.usecase.StreamOutput(r.Context(), batchID, outputID)
	if err != nil {
		h.handleBatchError(w, err, batchID)
		return
	}
	defer reader.Close()

	filename := path.Base(out.Path)
	w.Header().Set("Content-Type", domain.MimePNG)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	h.stream(w, reader, batchID)
}

func (h *BatchHandler) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "Batch ID is required", nil)
		return
	}

	reader, err := h.usecase.StreamArchive(r.Context(), id)
	if err != nil {
		h.handleBatchError(w, err, id)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", domain.MimeZIP)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", domain.ArchiveObjectName))
	h.stream(w, reader, id)
}

func (h *BatchHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "Batch ID is required", nil)
		return
	}

	if err := h.usecase.DeleteBatch(r.Context(), id); err != nil {
		h.handleBatchError(w, err, id)
		return
	}

	h.logger.Info().Str("batch_id", id).Msg("Batch deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *BatchHandler) parseConfig(r *http.Request) (domain.WatermarkConfig, []string, error) {
	req := dto.ConfigRequest{
		BrandText:    r.FormValue("brand_text"),
		TextColor:    r.FormValue("text_color"),
		TextPosition: r.FormValue("text_position"),
		Background:   r.FormValue("background"),
		Profiles:     r.FormValue("profiles"),
		Backdrop:     r.FormValue("backdrop") != "false",
	}

	var err error
	if req.FontSize, err = formFloat(r, "font_size", domain.DefaultFontSize); err != nil {
		return domain.WatermarkConfig{}, nil, err
	}
	if req.TextOpacity, err = formFloat(r, "text_opacity", domain.DefaultTextOpacity); err != nil {
		return domain.WatermarkConfig{}, nil, err
	}
	if req.LogoScale, err = formFloat(r, "logo_scale", domain.DefaultLogoScale); err != nil {
		return domain.WatermarkConfig{}, nil, err
	}
	if req.HorizontalSpacing, err = formInt(r, "horizontal_spacing", domain.DefaultHorizontalSpacing); err != nil {
		return domain.WatermarkConfig{}, nil, err
	}
	if req.Padding, err = formInt(r, "padding", domain.DefaultPadding); err != nil {
		return domain.WatermarkConfig{}, nil, err
	}

	if err := h.validate.Struct(req); err != nil {
		return domain.WatermarkConfig{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := domain.DefaultWatermarkConfig()
	cfg.BrandText = req.BrandText
	cfg.FontSize = req.FontSize
	cfg.TextOpacity = req.TextOpacity
	cfg.LogoScale = req.LogoScale
	cfg.HorizontalSpacing = req.HorizontalSpacing
	cfg.Padding = req.Padding
	cfg.Backdrop = req.Backdrop
	if req.TextPosition != "" {
		cfg.TextPosition = domain.TextPosition(req.TextPosition)
	}
	if req.TextColor != "" {
		rgb, err := parseHexColor(req.TextColor)
		if err != nil {
			return domain.WatermarkConfig{}, nil, err
		}
		cfg.TextColor = rgb
	}
	if req.Background != "" {
		rgb, err := parseHexColor(req.Background)
		if err != nil {
			return domain.WatermarkConfig{}, nil, err
		}
		cfg.Background = rgb
	}

	var profiles []string
	for _, name := range strings.Split(req.Profiles, ",") {
		if name = strings.TrimSpace(name); name != "" {
			profiles = append(profiles, name)
		}
	}

	return cfg, profiles, nil
}

func (h *BatchHandler) handleUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, batch_uc.ErrInvalidLogo):
		h.respondError(w, http.StatusBadRequest, "Logo must be a PNG or JPEG image", nil)
	case errors.Is(err, batch_uc.ErrNoFiles), errors.Is(err, batch_uc.ErrNoValidFiles):
		h.respondError(w, http.StatusBadRequest, "No supported product files uploaded", nil)
	case errors.Is(err, batch_uc.ErrTooManyFiles):
		h.respondError(w, http.StatusRequestEntityTooLarge, "Too many files in one batch", nil)
	case errors.Is(err, batch_uc.ErrUnknownProfile):
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		h.logger.Error().Err(err).Msg("Upload failed")
		h.respondError(w, http.StatusInternalServerError, "Failed to upload batch", err)
	}
}

func (h *BatchHandler) handleBatchError(w http.ResponseWriter, err error, batchID string) {
	switch {
	case errors.Is(err, batch_uc.ErrBatchNotFound):
		h.respondError(w, http.StatusNotFound, "Batch not found", nil)
	case errors.Is(err, batch_uc.ErrOutputNotFound):
		h.respondError(w, http.StatusNotFound, "Output not found", nil)
	case errors.Is(err, batch_uc.ErrResultNotReady):
		h.respondError(w, http.StatusConflict, "Batch result is not ready yet", nil)
	default:
		h.logger.Error().Err(err).Str("batch_id", batchID).Msg("Batch request failed")
		h.respondError(w, http.StatusInternalServerError, "Request failed", err)
	}
}

func (h *BatchHandler) stream(w http.ResponseWriter, r io.Reader, batchID string) {
	if _, err := io.Copy(w, r); err != nil {
		h.logger.Error().Err(err).Str("batch_id", batchID).Msg("Failed to stream response")
	}
}

func (h *BatchHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *BatchHandler) respondError(w http.ResponseWriter, status int, message string, err error) {
	resp := dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}
	if err != nil {
		resp.Details = err.Error()
	}
	h.respondJSON(w, status, resp)
}

func openUpload(fh *multipart.FileHeader) (batch_uc.UploadFile, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return batch_uc.UploadFile{}, nil, err
	}
	return batch_uc.UploadFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        f,
		Size:        fh.Size,
	}, func() { f.Close() }, nil
}

func formFloat(r *http.Request, key string, def float64) (float64, error) {
	v := r.FormValue(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return f, nil
}

func formInt(r *http.Request, key string, def int) (int, error) {
	v := r.FormValue(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

// parseHexColor accepts "#rgb" and "#rrggbb".
func parseHexColor(s string) (domain.RGB, error) {
	s = strings.TrimPrefix(s, "#")

	var r, g, b uint8
	switch len(s) {
	case 3:
		n, err := strconv.ParseUint(s, 16, 16)
		if err != nil {
			return domain.RGB{}, fmt.Errorf("invalid color %q", s)
		}
		r = uint8(n>>8&0xf) * 17
		g = uint8(n>>4&0xf) * 17
		b = uint8(n&0xf) * 17
	case 6:
		n, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return domain.RGB{}, fmt.Errorf("invalid color %q", s)
		}
		r = uint8(n >> 16)
		g = uint8(n >> 8)
		b = uint8(n)
	default:
		return domain.RGB{}, fmt.Errorf("invalid color %q", s)
	}

	return domain.RGB{R: r, G: g, B: b}, nil
}
