package dto

import "time"

type UploadResponse struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	InputCount int       `json:"input_count"`
	Skipped    []string  `json:"skipped,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type BatchResponse struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	InputCount     int       `json:"input_count"`
	ProcessedCount int       `json:"processed_count"`
	ErrorCount     int       `json:"error_count"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type OutputResponse struct {
	ID         string `json:"id"`
	SourcePath string `json:"source_path"`
	Profile    string `json:"profile"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
