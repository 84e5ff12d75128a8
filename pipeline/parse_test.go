package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/doctwin/ai"
	"github.com/poiesic/doctwin/core"
)

func TestParserKindFor(t *testing.T) {
	tests := []struct {
		filename string
		want     ParserKind
		wantErr  bool
	}{
		{"report.pdf", ParserPDF, false},
		{"REPORT.PDF", ParserPDF, false},
		{"sheet.xlsx", ParserExcel, false},
		{"legacy.xls", ParserExcel, false},
		{"deck.pptx", ParserPowerPoint, false},
		{"legacy.ppt", ParserPowerPoint, false},
		{"notes.txt", "", true},
		{"memo.docx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			kind, err := ParserKindFor(tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFile)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestParseArtifactUsesConvertedName(t *testing.T) {
	file := &core.File{
		OriginalFilename: "memo.docx",
		RawPath:          "t/p/f/raw/memo.docx",
		Converted:        true,
		ConvertedPath:    "t/p/f/converted/memo.pdf",
	}

	blobPath, filename := parseArtifact(file)
	assert.Equal(t, "t/p/f/converted/memo.pdf", blobPath)
	// Parser selection must see the converted artifact's name, not the
	// original upload name.
	assert.Equal(t, "memo.pdf", filename)

	kind, err := ParserKindFor(filename)
	require.NoError(t, err)
	assert.Equal(t, ParserPDF, kind)
}

func TestParseArtifactUnconverted(t *testing.T) {
	file := &core.File{
		OriginalFilename: "report.pdf",
		RawPath:          "t/p/f/raw/report.pdf",
	}

	blobPath, filename := parseArtifact(file)
	assert.Equal(t, "t/p/f/raw/report.pdf", blobPath)
	assert.Equal(t, "report.pdf", filename)
}

func TestBuildEnrichedDocumentOrdering(t *testing.T) {
	layout := &ai.LayoutResult{
		Pages: []ai.LayoutPage{
			{Number: 1, Width: 8.5, Height: 11, Unit: "inch"},
			{Number: 2, Width: 8.5, Height: 11, Unit: "inch"},
		},
		Paragraphs: []ai.LayoutParagraph{
			{Content: "page two text", Polygon: []float64{1, 1, 2, 1, 2, 2, 1, 2}, PageNumber: 2, Offset: 40},
			{Content: "title", Role: core.RoleTitle, Polygon: []float64{1, 1, 2, 1, 2, 2, 1, 2}, PageNumber: 1, Offset: 0},
		},
		Tables: []ai.LayoutTable{
			{HTML: "<table></table>", RowCount: 1, ColumnCount: 1, Polygon: []float64{1, 3, 2, 3, 2, 4, 1, 4}, PageNumber: 1, Offset: 10},
		},
	}
	file := &core.File{ID: "file-1", OriginalFilename: "report.pdf", Size: 123}

	doc := buildEnrichedDocument(layout, file, string(ParserPDF))

	// Reading order: page 1 title, page 1 table, page 2 paragraph.
	require.Len(t, doc.Sections, 3)
	assert.Equal(t, "title", doc.Sections[0].Content)
	assert.Equal(t, core.SectionTypeTable, doc.Sections[1].Type)
	assert.Equal(t, "page two text", doc.Sections[2].Content)

	assert.Len(t, doc.Pages, 2)
	assert.Equal(t, "file-1", doc.Metadata.DocumentID)
	assert.Equal(t, 3, doc.Metadata.TotalSections)
	assert.Equal(t, 1, doc.Metadata.TotalTables)
	assert.Equal(t, 2, doc.Metadata.TotalPages)

	require.NoError(t, core.ValidateDocument(doc))
}
