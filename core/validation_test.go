package core

import (
	"errors"
	"testing"
)

func validDocument() *EnrichedDocument {
	return &EnrichedDocument{
		Sections: []Section{
			{
				Type:       SectionTypeParagraph,
				Content:    "Quarterly report",
				Viewport:   []float64{1, 1, 4, 1, 4, 2, 1, 2},
				Offset:     0,
				PageNumber: 1,
				Role:       RoleTitle,
			},
			{
				Type:        SectionTypeTable,
				Content:     "<table><tr><td>42</td></tr></table>",
				Viewport:    []float64{1, 3, 6, 3, 6, 5, 1, 5},
				Offset:      17,
				PageNumber:  2,
				RowCount:    1,
				ColumnCount: 1,
			},
		},
		Pages: map[int]PageInfo{
			1: {Width: 8.5, Height: 11, Unit: "inch"},
			2: {Width: 8.5, Height: 11, Unit: "inch"},
		},
		Metadata: Metadata{
			DocumentID:    "doc-1",
			FileName:      "report.pdf",
			Parser:        "PDFParser",
			TotalPages:    2,
			TotalSections: 2,
			TotalTables:   1,
		},
	}
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(doc *EnrichedDocument)
		wantErr error
	}{
		{
			name:    "valid document",
			mutate:  func(doc *EnrichedDocument) {},
			wantErr: nil,
		},
		{
			name: "valid document with full headers",
			mutate: func(doc *EnrichedDocument) {
				doc.Headers = &SemanticHeaders{
					DocumentType: "report",
					Summary:      "Quarterly numbers.",
					Tags:         []string{"finance", "q3"},
					Reliability:  ReliabilityHigh,
				}
			},
			wantErr: nil,
		},
		{
			name: "section references missing page",
			mutate: func(doc *EnrichedDocument) {
				doc.Sections[1].PageNumber = 7
			},
			wantErr: ErrMissingPage,
		},
		{
			name: "viewport with 4 components",
			mutate: func(doc *EnrichedDocument) {
				doc.Sections[0].Viewport = []float64{1, 1, 4, 2}
			},
			wantErr: ErrBadViewport,
		},
		{
			name: "empty viewport",
			mutate: func(doc *EnrichedDocument) {
				doc.Sections[0].Viewport = nil
			},
			wantErr: ErrBadViewport,
		},
		{
			name: "negative offset",
			mutate: func(doc *EnrichedDocument) {
				doc.Sections[0].Offset = -1
			},
			wantErr: ErrNegativeOffset,
		},
		{
			name: "table without row count",
			mutate: func(doc *EnrichedDocument) {
				doc.Sections[1].RowCount = 0
			},
			wantErr: ErrBadTableShape,
		},
		{
			name: "unknown section type",
			mutate: func(doc *EnrichedDocument) {
				doc.Sections[0].Type = "figure"
			},
			wantErr: ErrBadSectionType,
		},
		{
			name: "zero page width",
			mutate: func(doc *EnrichedDocument) {
				doc.Pages[1] = PageInfo{Width: 0, Height: 11, Unit: "inch"}
			},
			wantErr: ErrBadPageInfo,
		},
		{
			name: "partial headers missing summary",
			mutate: func(doc *EnrichedDocument) {
				doc.Headers = &SemanticHeaders{
					DocumentType: "report",
					Tags:         []string{"finance"},
					Reliability:  ReliabilityMedium,
				}
			},
			wantErr: ErrPartialHeaders,
		},
		{
			name: "partial headers bad reliability",
			mutate: func(doc *EnrichedDocument) {
				doc.Headers = &SemanticHeaders{
					DocumentType: "report",
					Summary:      "Numbers.",
					Tags:         []string{"finance"},
					Reliability:  "certain",
				}
			},
			wantErr: ErrPartialHeaders,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			tt.mutate(doc)

			err := ValidateDocument(doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected valid document, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrInvalidDocument) {
				t.Fatalf("expected error to wrap ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestValidateDocumentNil(t *testing.T) {
	if err := ValidateDocument(nil); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument for nil document, got %v", err)
	}
}

func TestMergeHeaders(t *testing.T) {
	doc := validDocument()
	headers := &SemanticHeaders{
		DocumentType: "report",
		Summary:      "Quarterly numbers.",
		Tags:         []string{"finance"},
		Reliability:  ReliabilityLow,
	}

	merged := MergeHeaders(doc, headers)
	if merged.Headers != headers {
		t.Fatal("expected merged document to carry the new headers")
	}
	if doc.Headers != nil {
		t.Fatal("MergeHeaders must not mutate the input document")
	}
	if len(merged.Sections) != len(doc.Sections) {
		t.Fatal("MergeHeaders must not touch sections")
	}

	cleared := MergeHeaders(merged, nil)
	if cleared.Headers != nil {
		t.Fatal("expected headers cleared")
	}
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name    string
		file    *File
		wantErr bool
	}{
		{
			name: "valid file",
			file: &File{
				ID:               NewFileID(),
				TenantID:         "acme",
				ProjectID:        "proj-1",
				OriginalFilename: "report.pdf",
				Size:             1024,
				Status:           StatusUploaded,
			},
		},
		{name: "nil file", file: nil, wantErr: true},
		{
			name: "missing tenant",
			file: &File{
				ID:               NewFileID(),
				ProjectID:        "proj-1",
				OriginalFilename: "report.pdf",
				Status:           StatusUploaded,
			},
			wantErr: true,
		},
		{
			name: "bad status",
			file: &File{
				ID:               NewFileID(),
				TenantID:         "acme",
				ProjectID:        "proj-1",
				OriginalFilename: "report.pdf",
				Status:           FileStatus("processing"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile(tt.file)
			if tt.wantErr && !errors.Is(err, ErrInvalidFile) {
				t.Fatalf("expected ErrInvalidFile, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected valid file, got %v", err)
			}
		})
	}
}
