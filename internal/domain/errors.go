package domain

import "errors"

var (
	// ErrSystemNotFound signals a request for an unregistered terminology system.
	ErrSystemNotFound = errors.New("terminology system not found")
	// ErrIndexMismatch signals misaligned index tables for a system.
	ErrIndexMismatch = errors.New("index tables misaligned")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingDimMismatch signals a query embedding of the wrong dimensionality.
	ErrEmbeddingDimMismatch = errors.New("embedding dimension mismatch")
	// ErrNoCandidates signals an operation that requires a non-empty candidate list.
	ErrNoCandidates = errors.New("no candidates")
)
