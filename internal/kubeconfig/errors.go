package kubeconfig

import "errors"

var (
	// ErrSourceUnavailable means the file does not exist (expected, not logged as an error)
	ErrSourceUnavailable = errors.New("credential source unavailable")

	// ErrIOFailure means the file exists but could not be read
	ErrIOFailure = errors.New("failed to read credential source")

	// ErrMalformedConfig means the file was read but is not a valid kubeconfig
	ErrMalformedConfig = errors.New("malformed kubeconfig")

	// ErrEmptyToken means a token field was present but blank
	ErrEmptyToken = errors.New("empty token")
)
