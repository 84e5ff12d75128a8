// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.LayoutAnalyzer,
// ai.HeaderExtractor, ai.Embedder, ai.VectorIndex, and ai.Provider for use in
// unit tests. The mocks allow tests to run without external AI service
// dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	embeddings, err := mockProvider.Embedder().EmbedTexts(ctx, texts)
//
//	// Custom behavior injection
//	analyzer := mock.NewMockAnalyzer()
//	analyzer.AnalyzeLayoutFunc = func(ctx context.Context, content []byte, filename string) (*ai.LayoutResult, error) {
//	    return nil, ai.ErrUnsupportedFormat
//	}
//
//	// Check call counts
//	count := analyzer.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockAnalyzer: Returns a small two-page layout derived from the input
//   - MockEnricher: Returns headers derived from the filename and text
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockIndex: Records upserted vectors in memory
//   - MockProvider: Aggregates mock embedder and enricher
package mock
