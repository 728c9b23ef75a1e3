package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrQuotaExceeded   = errors.New("quota exceeded")
	ErrInvalidInput    = errors.New("invalid input")
	ErrProviderFailure = errors.New("provider failure")
)
