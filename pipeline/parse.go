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


package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/doctwin/ai"
	"github.com/poiesic/doctwin/core"
	"github.com/poiesic/doctwin/storage"
)

// ParserKind is the closed set of parser families the pipeline supports.
type ParserKind string

const (
	ParserPDF        ParserKind = "pdf"
	ParserExcel      ParserKind = "excel"
	ParserPowerPoint ParserKind = "powerpoint"
)

// ParserKindFor selects the parser family from a filename's extension.
// Callers must pass the name of the artifact actually being parsed: after a
// conversion that is the converted name, not the original upload name.
func ParserKindFor(filename string) (ParserKind, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return ParserPDF, nil
	case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xls"):
		return ParserExcel, nil
	case strings.HasSuffix(lower, ".pptx"), strings.HasSuffix(lower, ".ppt"):
		return ParserPowerPoint, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}
}

// parseArtifact resolves which blob the parse stage reads and the filename
// that governs parser selection.
func parseArtifact(file *core.File) (blobPath, filename string) {
	if file.Converted && file.ConvertedPath != "" {
		return file.ConvertedPath, convertedFilename(file.OriginalFilename)
	}
	return file.RawPath, file.OriginalFilename
}

// runParsing analyzes the file's layout and writes the enriched document
// artifact. Returns the completion transition carrying the enriched
// artifact pointer.
func (p *Pipeline) runParsing(ctx context.Context, file *core.File) (*storage.Transition, error) {
	blobPath, filename := parseArtifact(file)

	kind, err := ParserKindFor(filename)
	if err != nil {
		return nil, err
	}

	content, err := p.blobs.Get(ctx, blobPath)
	if err != nil {
		return nil, err
	}

	layout, err := p.analyzer.AnalyzeLayout(ctx, content, filename)
	if err != nil {
		return nil, err
	}

	doc := buildEnrichedDocument(layout, file, string(kind))
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	data, err := core.MarshalDocument(doc)
	if err != nil {
		return nil, err
	}

	enrichedPath, err := storage.EnrichedPath(file.TenantID, file.ProjectID, file.ID)
	if err != nil {
		return nil, err
	}
	if err := p.blobs.Put(ctx, enrichedPath, data); err != nil {
		return nil, err
	}

	p.logger.Info("parsing complete",
		"file_id", file.ID,
		"parser", kind,
		"pages", len(doc.Pages),
		"sections", len(doc.Sections))

	return &storage.Transition{EnrichedPath: &enrichedPath}, nil
}

// buildEnrichedDocument maps a provider layout result onto the canonical
// enriched document. Sections are ordered by page then offset so reading
// order survives the flat paragraph and table lists.
func buildEnrichedDocument(layout *ai.LayoutResult, file *core.File, parser string) *core.EnrichedDocument {
	sections := make([]core.Section, 0, len(layout.Paragraphs)+len(layout.Tables))

	for _, para := range layout.Paragraphs {
		sections = append(sections, core.Section{
			Type:       core.SectionTypeParagraph,
			Content:    para.Content,
			Viewport:   para.Polygon,
			Offset:     para.Offset,
			PageNumber: para.PageNumber,
			Role:       para.Role,
		})
	}

	tables := 0
	for _, table := range layout.Tables {
		tables++
		sections = append(sections, core.Section{
			Type:        core.SectionTypeTable,
			Content:     table.HTML,
			Viewport:    table.Polygon,
			Offset:      table.Offset,
			PageNumber:  table.PageNumber,
			RowCount:    table.RowCount,
			ColumnCount: table.ColumnCount,
		})
	}

	slices.SortStableFunc(sections, func(a, b core.Section) int {
		if a.PageNumber != b.PageNumber {
			return a.PageNumber - b.PageNumber
		}
		return a.Offset - b.Offset
	})

	pages := make(map[int]core.PageInfo, len(layout.Pages))
	for _, page := range layout.Pages {
		pages[page.Number] = core.PageInfo{
			Width:  page.Width,
			Height: page.Height,
			Unit:   page.Unit,
			Angle:  page.Angle,
		}
	}

	return &core.EnrichedDocument{
		Sections: sections,
		Pages:    pages,
		Metadata: core.Metadata{
			DocumentID:     file.ID,
			FileName:       file.OriginalFilename,
			Parser:         parser,
			ParsingService: core.ParsingService,
			CreatedAt:      time.Now().UTC(),
			FileSize:       file.Size,
			TotalPages:     len(pages),
			TotalSections:  len(sections),
			TotalTables:    tables,
		},
	}
}
