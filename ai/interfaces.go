package ai

import (
	"context"

	"github.com/poiesic/doctwin/core"
)

// LayoutAnalyzer is the document-intelligence collaborator: given raw or
// converted document bytes it returns the provider-native layout result.
// Mapping that result into the canonical enriched document is the parse
// stage's job, not the analyzer's.
// Implementations must be thread-safe for concurrent use.
type LayoutAnalyzer interface {
	// AnalyzeLayout analyzes document bytes and returns paragraphs, tables
	// and page geometry with polygon coordinates.
	// Returns ErrUnsupportedFormat for formats the service rejects and
	// ErrServiceUnavailable for timeouts and rate limits.
	AnalyzeLayout(ctx context.Context, content []byte, filename string) (*LayoutResult, error)
}

// HeaderExtractor is the semantic-enrichment collaborator: given extracted
// document text it returns a fully populated SemanticHeaders block.
// Enrichment is best-effort; callers must tolerate failure.
// Implementations must be thread-safe for concurrent use.
type HeaderExtractor interface {
	// ExtractHeaders analyzes text and returns semantic headers
	// (document type, summary, tags, authoring date, source, reliability).
	ExtractHeaders(ctx context.Context, text, filename string) (*core.SemanticHeaders, error)
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex is the embedding-index collaborator. The pipeline stores only
// the ids it returns; the index itself is external.
// Implementations must be thread-safe for concurrent use.
type VectorIndex interface {
	// Upsert writes vectors under the given ids, overwriting existing
	// entries. ids and vectors are parallel slices.
	Upsert(ctx context.Context, ids []string, vectors [][]float32) error

	// Remove deletes vectors by id. Missing ids are ignored.
	Remove(ctx context.Context, ids []string) error
}

// Provider aggregates the AI-backed collaborators for convenient
// initialization and lifecycle management.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// HeaderExtractor returns the semantic header extraction service.
	HeaderExtractor() HeaderExtractor

	// Close releases resources held by the provider and its services.
	Close() error
}
