package mock

import (
	"context"
	"strings"

	"github.com/poiesic/doctwin/core"
)

// MockEnricher is a test double for ai.HeaderExtractor.
// It allows custom behavior injection via function fields.
type MockEnricher struct {
	// ExtractHeadersFunc is called by ExtractHeaders if set.
	// If nil, uses default deterministic behavior.
	ExtractHeadersFunc func(ctx context.Context, text, filename string) (*core.SemanticHeaders, error)

	callCount int
}

// NewMockEnricher creates a mock header extractor with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockEnricher() *MockEnricher {
	return &MockEnricher{}
}

// ExtractHeaders derives deterministic headers from the input: the first
// three distinct words of the text become tags and the summary is the first
// sentence worth of text.
func (m *MockEnricher) ExtractHeaders(ctx context.Context, text, filename string) (*core.SemanticHeaders, error) {
	m.callCount++

	if m.ExtractHeadersFunc != nil {
		return m.ExtractHeadersFunc(ctx, text, filename)
	}

	summary := text
	if len(summary) > 120 {
		summary = summary[:120]
	}
	if strings.TrimSpace(summary) == "" {
		summary = "empty document"
	}

	tags := []string{"document"}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len(tags) >= 4 {
			break
		}
		word = strings.Trim(word, ".,;:!?")
		if len(word) > 3 {
			tags = append(tags, word)
		}
	}

	return &core.SemanticHeaders{
		DocumentType: "report",
		Summary:      summary,
		Tags:         tags,
		Source:       filename,
		Reliability:  core.ReliabilityMedium,
	}, nil
}

// CallCount returns the number of times ExtractHeaders was called.
func (m *MockEnricher) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockEnricher) Reset() {
	m.callCount = 0
	m.ExtractHeadersFunc = nil
}
