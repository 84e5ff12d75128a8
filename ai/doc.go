// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides abstractions for AI services used in Doctwin.
//
// This package defines interfaces for the AI-backed stages of the ingestion
// pipeline: layout analysis, semantic header extraction, text embeddings and
// vector indexing. It follows the dependency inversion principle, allowing
// the pipeline and business logic to depend on abstractions rather than
// concrete implementations.
//
// # Design Principles
//
// The package is designed around four key interfaces:
//
//   - LayoutAnalyzer: Extracts paragraphs, tables and page geometry from
//     document bytes
//   - HeaderExtractor: Derives semantic headers (type, summary, tags) from
//     document text
//   - Embedder: Generates vector embeddings from text
//   - VectorIndex: Stores embedding vectors for similarity search
//
// The Provider interface aggregates the embedding and enrichment services
// for convenient initialization. The layout analyzer is kept separate
// because it talks to a different class of service with its own lifecycle.
//
// # Implementation Packages
//
//   - ai/openai: Production embedder and header extractor using
//     OpenAI-compatible APIs
//   - ai/docintel: Production layout analyzer client for the document
//     intelligence HTTP service
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, docintel.NewClient) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.Provider
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockAnalyzer)
// return CONCRETE types to enable test assertions and behavior injection via
// the mock's public methods (CallCount, WithXFunc, Reset, etc.).
//
// # Error Classification
//
// Implementations map transport failures onto the package's sentinel errors
// so the pipeline can decide between retrying and failing permanently:
//
//   - ErrUnsupportedFormat: the service permanently rejects the input
//   - ErrServiceUnavailable: timeouts, rate limits and 5xx responses;
//     retrying may succeed
//   - ErrBadResponse: the service answered but the payload was unusable
package ai
