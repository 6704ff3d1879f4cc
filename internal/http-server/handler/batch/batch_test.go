package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"brandmark/internal/domain"
	"brandmark/internal/http-server/handler/batch/dto"
	batch_uc "brandmark/internal/usecase/batch"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

type mockUsecase struct {
	uploadFn  func(ctx context.Context, logo batch_uc.UploadFile, files []batch_uc.UploadFile, cfg domain.WatermarkConfig, profiles []string) (*batch_uc.UploadResult, error)
	getFn     func(ctx context.Context, id string) (*domain.Batch, error)
	listFn    func(ctx context.Context, id string) ([]domain.BatchOutput, error)
	streamFn  func(ctx context.Context, batchID, outputID string) (*domain.BatchOutput, io.ReadCloser, error)
	archiveFn func(ctx context.Context, id string) (io.ReadCloser, error)
	deleteFn  func(ctx context.Context, id string) error
}

func (m *mockUsecase) UploadBatch(ctx context.Context, logo batch_uc.UploadFile, files []batch_uc.UploadFile, cfg domain.WatermarkConfig, profiles []string) (*batch_uc.UploadResult, error) {
	return m.uploadFn(ctx, logo, files, cfg, profiles)
}

func (m *mockUsecase) GetBatch(ctx context.Context, id string) (*domain.Batch, error) {
	return m.getFn(ctx, id)
}

func (m *mockUsecase) ListOutputs(ctx context.Context, id string) ([]domain.BatchOutput, error) {
	return m.listFn(ctx, id)
}

func (m *mockUsecase) StreamOutput(ctx context.Context, batchID, outputID string) (*domain.BatchOutput, io.ReadCloser, error) {
	return m.streamFn(ctx, batchID, outputID)
}

func (m *mockUsecase) StreamArchive(ctx context.Context, id string) (io.ReadCloser, error) {
	return m.archiveFn(ctx, id)
}

func (m *mockUsecase) DeleteBatch(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func newTestHandler(uc *mockUsecase) *BatchHandler {
	zlog.Init()
	return NewBatchHandler(uc, &zlog.Logger)
}

func newTestRouter(h *BatchHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/api/batches", h.UploadBatch)
	r.Get("/api/batches/{id}", h.GetBatch)
	r.Get("/api/batches/{id}/outputs", h.ListOutputs)
	r.Get("/api/batches/{id}/outputs/{outputID}", h.DownloadOutput)
	r.Get("/api/batches/{id}/archive", h.DownloadArchive)
	r.Delete("/api/batches/{id}", h.DeleteBatch)
	return r
}

type formFile struct {
	field       string
	filename    string
	contentType string
	body        []byte
}

func newMultipartRequest(t *testing.T, fields map[string]string, files []formFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		hdr.Set("Content-Type", f.contentType)
		fw, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = fw.Write(f.body)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/batches", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestBatchHandler_UploadBatch_OK(t *testing.T) {
	var gotProfiles []string
	var gotCfg domain.WatermarkConfig

	uc := &mockUsecase{
		uploadFn: func(_ context.Context, logo batch_uc.UploadFile, files []batch_uc.UploadFile, cfg domain.WatermarkConfig, profiles []string) (*batch_uc.UploadResult, error) {
			require.Equal(t, "logo.png", logo.Filename)
			require.Len(t, files, 2)
			gotProfiles = profiles
			gotCfg = cfg
			return &batch_uc.UploadResult{
				Batch: &domain.Batch{
					ID:         "b1",
					Status:     domain.StatusProcessing,
					InputCount: 2,
					CreatedAt:  time.Now(),
				},
				Skipped: []string{"notes.txt"},
			}, nil
		},
	}

	req := newMultipartRequest(t,
		map[string]string{
			"brand_text": "ACME",
			"text_color": "#ff0000",
			"font_size":  "42",
			"profiles":   "instagram-post, original",
		},
		[]formFile{
			{field: "logo", filename: "logo.png", contentType: "image/png", body: []byte("logo")},
			{field: "files", filename: "a.png", contentType: "image/png", body: []byte("a")},
			{field: "files", filename: "pack.zip", contentType: "application/zip", body: []byte("z")},
		})
	rec := httptest.NewRecorder()

	newTestRouter(newTestHandler(uc)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp dto.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "b1", resp.ID)
	require.Equal(t, []string{"notes.txt"}, resp.Skipped)

	require.Equal(t, []string{"instagram-post", "original"}, gotProfiles)
	require.Equal(t, "ACME", gotCfg.BrandText)
	require.Equal(t, 42.0, gotCfg.FontSize)
	require.Equal(t, domain.RGB{R: 255}, gotCfg.TextColor)
}

func TestBatchHandler_UploadBatch_MissingParts(t *testing.T) {
	uc := &mockUsecase{}
	router := newTestRouter(newTestHandler(uc))

	tests := []struct {
		name  string
		files []formFile
	}{
		{
			name:  "no logo",
			files: []formFile{{field: "files", filename: "a.png", contentType: "image/png", body: []byte("a")}},
		},
		{
			name:  "no product files",
			files: []formFile{{field: "logo", filename: "logo.png", contentType: "image/png", body: []byte("l")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, newMultipartRequest(t, nil, tt.files))
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestBatchHandler_UploadBatch_InvalidConfig(t *testing.T) {
	uc := &mockUsecase{}
	router := newTestRouter(newTestHandler(uc))

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"bad font size", map[string]string{"font_size": "not-a-number"}},
		{"bad color", map[string]string{"text_color": "red"}},
		{"opacity out of range", map[string]string{"text_opacity": "1.5"}},
		{"bad position", map[string]string{"text_position": "diagonal"}},
	}

	files := []formFile{
		{field: "logo", filename: "logo.png", contentType: "image/png", body: []byte("l")},
		{field: "files", filename: "a.png", contentType: "image/png", body: []byte("a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, newMultipartRequest(t, tt.fields, files))
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestBatchHandler_UploadBatch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid logo", batch_uc.ErrInvalidLogo, http.StatusBadRequest},
		{"no valid files", batch_uc.ErrNoValidFiles, http.StatusBadRequest},
		{"too many files", batch_uc.ErrTooManyFiles, http.StatusRequestEntityTooLarge},
		{"unknown profile", batch_uc.ErrUnknownProfile, http.StatusBadRequest},
		{"storage down", batch_uc.ErrStorageError, http.StatusInternalServerError},
	}

	files := []formFile{
		{field: "logo", filename: "logo.png", contentType: "image/png", body: []byte("l")},
		{field: "files", filename: "a.png", contentType: "image/png", body: []byte("a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUsecase{
				uploadFn: func(context.Context, batch_uc.UploadFile, []batch_uc.UploadFile, domain.WatermarkConfig, []string) (*batch_uc.UploadResult, error) {
					return nil, tt.err
				},
			}
			rec := httptest.NewRecorder()
			newTestRouter(newTestHandler(uc)).ServeHTTP(rec, newMultipartRequest(t, nil, files))
			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestBatchHandler_GetBatch(t *testing.T) {
	uc := &mockUsecase{
		getFn: func(_ context.Context, id string) (*domain.Batch, error) {
			require.Equal(t, "b1", id)
			return &domain.Batch{ID: "b1", Status: domain.StatusCompleted, ProcessedCount: 3}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/batches/b1", nil)
	rec := httptest.NewRecorder()
	newTestRouter(newTestHandler(uc)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "b1", resp.ID)
	require.Equal(t, string(domain.StatusCompleted), resp.Status)
	require.Equal(t, 3, resp.ProcessedCount)
}

func TestBatchHandler_GetBatch_NotFound(t *testing.T) {
	uc := &mockUsecase{
		getFn: func(context.Context, string) (*domain.Batch, error) {
			return nil, batch_uc.ErrBatchNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/batches/nope", nil)
	rec := httptest.NewRecorder()
	newTestRouter(newTestHandler(uc)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchHandler_ListOutputs(t *testing.T) {
	uc := &mockUsecase{
		listFn: func(context.Context, string) ([]domain.BatchOutput, error) {
			return []domain.BatchOutput{
				{ID: "o1", SourcePath: "a.png", Profile: "original", Path: "batches/b1/output/a_branded_original.png", Size: 10},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/batches/b1/outputs", nil)
	rec := httptest.NewRecorder()
	newTestRouter(newTestHandler(uc)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.OutputResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Equal(t, "a_branded_original.png", resp[0].Filename)
}

func TestBatchHandler_DownloadOutput(t *testing.T) {
	uc := &mockUsecase{
		streamFn: func(_ context.Context, batchID, outputID string) (*domain.BatchOutput, io.ReadCloser, error) {
			require.Equal(t, "b1", batchID)
			require.Equal(t, "o1", outputID)
			out := &domain.BatchOutput{ID: "o1", Path: "batches/b1/output/a_branded_original.png"}
			return out, io.NopCloser(bytes.NewReader([]byte("png-bytes"))), nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/batches/b1/outputs/o1", nil)
	rec := httptest.NewRecorder()
	newTestRouter(newTestHandler(uc)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, domain.MimePNG, rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "a_branded_original.png")
	require.Equal(t, "png-bytes", rec.Body.String())
}

func TestBatchHandler_DownloadArchive(t *testing.T) {
	uc := &mockUsecase{
		archiveFn: func(context.Context, string) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte("zip-bytes"))), nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/batches/b1/archive", nil)
	rec := httptest.NewRecorder()
	newTestRouter(newTestHandler(uc)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, domain.MimeZIP, rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	require.Equal(t, "zip-bytes", rec.Body.String())
}

func TestBatchHandler_DownloadArchive_NotReady(t *testing.T) {
	uc := &mockUsecase{
		archiveFn: func(context.Context, string) (io.ReadCloser, error) {
			return nil, batch_uc.ErrResultNotReady
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/batches/b1/archive", nil)
	rec := httptest.NewRecorder()
	newTestRouter(newTestHandler(uc)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestBatchHandler_DeleteBatch(t *testing.T) {
	deleted := false
	uc := &mockUsecase{
		deleteFn: func(_ context.Context, id string) error {
			require.Equal(t, "b1", id)
			deleted = true
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/batches/b1", nil)
	rec := httptest.NewRecorder()
	newTestRouter(newTestHandler(uc)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, deleted)
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.RGB
		wantErr bool
	}{
		{in: "#ffffff", want: domain.RGB{R: 255, G: 255, B: 255}},
		{in: "000000", want: domain.RGB{}},
		{in: "#f00", want: domain.RGB{R: 255}},
		{in: "#1a2b3c", want: domain.RGB{R: 0x1a, G: 0x2b, B: 0x3c}},
		{in: "red", wantErr: true},
		{in: "#ff", wantErr: true},
		{in: "#gggggg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHexColor(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
