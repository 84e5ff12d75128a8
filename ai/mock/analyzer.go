package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/doctwin/ai"
)

// MockAnalyzer is a test double for ai.LayoutAnalyzer.
// It allows custom behavior injection via function fields.
type MockAnalyzer struct {
	// AnalyzeLayoutFunc is called by AnalyzeLayout if set.
	// If nil, uses default deterministic behavior.
	AnalyzeLayoutFunc func(ctx context.Context, content []byte, filename string) (*ai.LayoutResult, error)

	callCount int
}

// NewMockAnalyzer creates a mock layout analyzer with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{}
}

// AnalyzeLayout returns a small deterministic layout derived from the input.
// The default layout has one page, one title paragraph naming the file, one
// body paragraph per non-empty line of the content, and one table.
func (m *MockAnalyzer) AnalyzeLayout(ctx context.Context, content []byte, filename string) (*ai.LayoutResult, error) {
	m.callCount++

	if m.AnalyzeLayoutFunc != nil {
		return m.AnalyzeLayoutFunc(ctx, content, filename)
	}

	result := &ai.LayoutResult{
		Pages: []ai.LayoutPage{
			{Number: 1, Width: 8.5, Height: 11.0, Unit: "inch"},
		},
		Paragraphs: []ai.LayoutParagraph{
			{
				Content:    filename,
				Role:       "title",
				Polygon:    []float64{1, 1, 7, 1, 7, 2, 1, 2},
				PageNumber: 1,
				Offset:     0,
			},
		},
	}

	offset := len(filename) + 1
	y := 2.0
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		result.Paragraphs = append(result.Paragraphs, ai.LayoutParagraph{
			Content:    line,
			Polygon:    []float64{1, y, 7, y, 7, y + 0.5, 1, y + 0.5},
			PageNumber: 1,
			Offset:     offset,
		})
		offset += len(line) + 1
		y += 0.5
	}

	result.Tables = []ai.LayoutTable{
		{
			HTML:        fmt.Sprintf("<table>\n  <tr><th>file</th></tr>\n  <tr><td>%s</td></tr>\n</table>", filename),
			RowCount:    2,
			ColumnCount: 1,
			Polygon:     []float64{1, y, 7, y, 7, y + 1, 1, y + 1},
			PageNumber:  1,
			Offset:      offset,
		},
	}

	return result, nil
}

// CallCount returns the number of times AnalyzeLayout was called.
func (m *MockAnalyzer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockAnalyzer) Reset() {
	m.callCount = 0
	m.AnalyzeLayoutFunc = nil
}
