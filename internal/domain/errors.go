package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrServerOffline indicates the task service is unreachable
	ErrServerOffline = errors.New("task service is unreachable")

	// ErrUnexpectedResponse indicates the service replied with something we cannot use
	ErrUnexpectedResponse = errors.New("unexpected response from task service")

	// ErrFeedClosed indicates the log feed ended or broke
	ErrFeedClosed = errors.New("log feed closed")

	// ErrEmptyTarget indicates no scrape target URL was given
	ErrEmptyTarget = errors.New("target URL is empty")

	// ErrInvalidTarget indicates the scrape target is not an http(s) URL
	ErrInvalidTarget = errors.New("target URL is invalid")
)
