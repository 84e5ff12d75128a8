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


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/doctwin/ai"
	"github.com/poiesic/doctwin/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// HeaderEnricher implements ai.HeaderExtractor using OpenAI-compatible chat APIs.
type HeaderEnricher struct {
	client   llms.Model
	maxChars int
	logger   *slog.Logger
}

// headers is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type headers struct {
	DocumentType    string   `json:"document_type"`
	Summary         string   `json:"summary"`
	Tags            []string `json:"tags"`
	DateOfAuthoring string   `json:"date_of_authoring"`
	Source          string   `json:"source"`
	Reliability     string   `json:"reliability"`
}

// newHeaderEnricher is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newHeaderEnricher(config *ai.Config) (*HeaderEnricher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/enrichment
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.EnrichmentHost),
		openai.WithToken("none"),
		openai.WithModel(config.EnrichmentModel),
	)
	if err != nil {
		return nil, err
	}

	return &HeaderEnricher{
		client:   client,
		maxChars: config.MaxEnrichmentChars,
		logger:   slog.Default().With("component", "openai-enricher"),
	}, nil
}

// NewHeaderEnricher creates a new header enricher using the provided configuration.
//
// Returns ai.HeaderExtractor interface to enforce abstraction.
func NewHeaderEnricher(config *ai.Config) (ai.HeaderExtractor, error) {
	return newHeaderEnricher(config)
}

// ExtractHeaders derives semantic headers from document text using an LLM.
// Input longer than the configured cap is truncated at a whitespace boundary
// before being sent to the model.
func (e *HeaderEnricher) ExtractHeaders(ctx context.Context, text, filename string) (*core.SemanticHeaders, error) {
	text = truncateText(text, e.maxChars)

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(enrichmentSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildEnrichmentInput(text, filename)),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result headers
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return nil, fmt.Errorf("%w: empty response", ai.ErrBadResponse)
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing enrichment response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse enrichment response after retries", "err", lastErr)
		return nil, fmt.Errorf("%w: %w", ai.ErrBadResponse, lastErr)
	}

	extracted := &core.SemanticHeaders{
		DocumentType:    strings.TrimSpace(result.DocumentType),
		Summary:         strings.TrimSpace(result.Summary),
		Tags:            normalizeTags(result.Tags),
		DateOfAuthoring: strings.TrimSpace(result.DateOfAuthoring),
		Source:          strings.TrimSpace(result.Source),
		Reliability:     normalizeReliability(result.Reliability),
	}

	if err := core.ValidateHeaders(extracted); err != nil {
		e.logger.Error("enrichment response failed validation", "err", err)
		return nil, fmt.Errorf("%w: %w", ai.ErrBadResponse, err)
	}

	e.logger.Debug("extracted semantic headers",
		"document_type", extracted.DocumentType,
		"tags", len(extracted.Tags))

	return extracted, nil
}

// normalizeTags lowercases tags, trims whitespace and drops empties.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeReliability maps model output onto the known reliability levels.
// Unknown values fall back to low rather than failing the whole extraction.
func normalizeReliability(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case core.ReliabilityHigh:
		return core.ReliabilityHigh
	case core.ReliabilityMedium:
		return core.ReliabilityMedium
	default:
		return core.ReliabilityLow
	}
}
