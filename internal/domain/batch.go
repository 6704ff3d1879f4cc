package domain

import "time"

type Batch struct {
	ID             string
	Status         BatchStatus
	Config         WatermarkConfig
	Profiles       []string
	LogoPath       string
	InputCount     int
	ProcessedCount int
	ErrorCount     int
	ArchivePath    string
	Error          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type BatchOutput struct {
	ID         string
	BatchID    string
	SourcePath string
	Profile    string
	Path       string
	Size       int64
	CreatedAt  time.Time
}

type BatchStatus string

const (
	StatusUploaded   BatchStatus = "uploaded"
	StatusProcessing BatchStatus = "processing"
	StatusCompleted  BatchStatus = "completed"
	StatusFailed     BatchStatus = "failed"
	StatusDeleted    BatchStatus = "deleted"
)

const (
	PathPrefixInput   = "input/"
	PathPrefixOutput  = "output/"
	ArchiveObjectName = "branded_images.zip"
)

const (
	DefaultMaxUploadSize = 256 << 20
	MaxFilesPerBatch     = 500
)
