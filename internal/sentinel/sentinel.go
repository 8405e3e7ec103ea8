package sentinel

import "errors"

// Sentinel dependency errors. Stores and backends return these (optionally wrapped)
// so services can translate them into domain errors exactly once.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnavailable      = errors.New("unavailable")
	ErrClosed           = errors.New("closed")
	ErrPermissionDenied = errors.New("missing or insufficient permissions")
)
