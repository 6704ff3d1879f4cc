package batch

import "errors"

var (
	ErrBatchNotFound  = errors.New("batch not found")
	ErrOutputNotFound = errors.New("output not found")
)
