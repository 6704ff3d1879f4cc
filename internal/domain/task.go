package domain

type ProcessingTask struct {
	ID       string          `json:"id"`
	BatchID  string          `json:"batch_id"`
	LogoPath string          `json:"logo_path"`
	Inputs   []UploadRef     `json:"inputs"`
	Config   WatermarkConfig `json:"config"`
	Profiles []string        `json:"profiles"`
}

// UploadKind is decided once at ingress; downstream code never re-sniffs
// the payload.
type UploadKind string

const (
	KindArchive UploadKind = "archive"
	KindImage   UploadKind = "image"
)

// UploadRef points at a stored upload together with its ingress
// classification.
type UploadRef struct {
	Kind     UploadKind `json:"kind"`
	Path     string     `json:"path"`
	Filename string     `json:"filename"`
}

type ProcessingResult struct {
	ID             string      `json:"id"`
	BatchID        string      `json:"batch_id"`
	Status         BatchStatus `json:"status"`
	ProcessedCount int         `json:"processed_count"`
	ErrorCount     int         `json:"error_count"`
	ArchivePath    string      `json:"archive_path"`
	Error          string      `json:"error,omitempty"`
}

const (
	MimeZIP         = "application/zip"
	MimeZIPAlt      = "application/x-zip"
	MimeZIPCompress = "application/x-zip-compressed"
	MimeJPEG        = "image/jpeg"
	MimePNG         = "image/png"
)

// ZipMimes are the content types recognized as archives at ingress.
var ZipMimes = map[string]bool{
	MimeZIP:         true,
	MimeZIPAlt:      true,
	MimeZIPCompress: true,
}

// ImageMimes are the content types accepted for logo and product uploads.
var ImageMimes = map[string]bool{
	MimeJPEG: true,
	MimePNG:  true,
}

// ImageExtensions is the extension fallback used when the declared
// content type is missing or unhelpful.
var ImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}
