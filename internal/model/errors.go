package model

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation error")
	ErrProviderUnavailable = errors.New("language-model provider unavailable")
	ErrRateLimited         = errors.New("rate limited")
)
