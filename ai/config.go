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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service collaborators.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	EmbeddingHost string

	// EnrichmentHost is the base URL for the header-extraction service API.
	EnrichmentHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// EnrichmentModel is the model identifier to use for header extraction.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	EnrichmentModel string

	// MaxEnrichmentChars caps how much document text is sent to the
	// enrichment model. Longer documents are truncated at a whitespace
	// boundary. Default: 8000.
	MaxEnrichmentChars int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEnrichmentHost sets the enrichment service host URL.
func WithEnrichmentHost(host string) ConfigOption {
	return func(c *Config) {
		c.EnrichmentHost = host
	}
}

// WithHost sets both embedding and enrichment hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.EnrichmentHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithEnrichmentModel sets the enrichment model identifier.
func WithEnrichmentModel(model string) ConfigOption {
	return func(c *Config) {
		c.EnrichmentModel = model
	}
}

// WithMaxEnrichmentChars sets the truncation cap for enrichment input.
func WithMaxEnrichmentChars(max int) ConfigOption {
	return func(c *Config) {
		c.MaxEnrichmentChars = max
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services. By default, both services use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:      defaultHost,
		EnrichmentHost:     defaultHost,
		EmbeddingModel:     "embeddinggemma",
		EnrichmentModel:    "qwen2.5:3b",
		MaxEnrichmentChars: 8000,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.EmbeddingHost) == "" {
		return errors.New("embedding host required")
	}
	if strings.TrimSpace(c.EnrichmentHost) == "" {
		return errors.New("enrichment host required")
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		return errors.New("embedding model required")
	}
	if strings.TrimSpace(c.EnrichmentModel) == "" {
		return errors.New("enrichment model required")
	}
	if c.MaxEnrichmentChars < 1 {
		return errors.New("max enrichment chars must be positive")
	}
	return nil
}
