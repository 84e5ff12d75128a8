package pipeline

import "errors"

var (
	// ErrFileRepositoryRequired is returned when a file repository is not provided.
	ErrFileRepositoryRequired = errors.New("file repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrBlobStoreRequired is returned when a blob store is not provided.
	ErrBlobStoreRequired = errors.New("blob store required")

	// ErrAnalyzerRequired is returned when a layout analyzer is not provided.
	ErrAnalyzerRequired = errors.New("layout analyzer required")

	// ErrProviderRequired is returned when an AI provider is not provided.
	ErrProviderRequired = errors.New("AI provider required")

	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrTokenizerRequired is returned when a tokenizer is not provided.
	ErrTokenizerRequired = errors.New("tokenizer required")

	// ErrInvalidMaxAttempts is returned when a retry policy allows no attempts.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNoConverter is returned when a file needs format conversion but no
	// converter is configured.
	ErrNoConverter = errors.New("no converter configured")

	// ErrUnsupportedFile is returned when no parser kind exists for a
	// file's extension. It is a permanent failure.
	ErrUnsupportedFile = errors.New("unsupported file type")
)
