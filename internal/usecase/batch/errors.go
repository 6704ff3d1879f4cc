package batch

import "errors"

var (
	ErrInvalidLogo       = errors.New("invalid logo file")
	ErrNoFiles           = errors.New("no product files uploaded")
	ErrNoValidFiles      = errors.New("no supported files in upload")
	ErrTooManyFiles      = errors.New("too many files in upload")
	ErrBatchNotFound     = errors.New("batch not found")
	ErrOutputNotFound    = errors.New("output not found")
	ErrResultNotReady    = errors.New("batch result is not ready")
	ErrUnknownProfile    = errors.New("unknown output profile")
	ErrStorageError      = errors.New("storage error")
	ErrMessageQueueError = errors.New("message queue error")
)
