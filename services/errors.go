package services

import "errors"

// Common service-level errors
var (
	// Auth errors
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")

	// Repository errors
	ErrInvalidQuery       = errors.New("invalid repository query")
	ErrRepositoryNotFound = errors.New("repository not found")
	ErrRateLimited        = errors.New("upstream rate limit exceeded")
	ErrUpstreamTimeout    = errors.New("upstream request timed out")
)
