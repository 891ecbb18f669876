package domain

import "errors"

var (
	// ErrInvalidConfiguration signals malformed build-time parameters
	// (chunking band, vectorizer settings). Fatal for the offline build.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidArgument signals malformed per-request input (empty query, k <= 0).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstreamUnavailable signals that the LLM call failed or timed out after retries.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrSnapshotNotReady signals that no corpus snapshot has been published yet.
	ErrSnapshotNotReady = errors.New("corpus snapshot not ready")
	// ErrNotFound signals a missing stored artifact.
	ErrNotFound = errors.New("not found")
)
