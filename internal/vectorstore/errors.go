package vectorstore

import "errors"

var (
	ErrUnreachable       = errors.New("qdrant server unreachable")
	ErrCourseNotFound    = errors.New("course metadata not found")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
