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


package docintel

import (
	"fmt"
	"html"
	"strings"

	"github.com/poiesic/doctwin/ai"
)

// analyzeResult mirrors the service's layout analysis payload.
type analyzeResult struct {
	Pages      []resultPage      `json:"pages"`
	Paragraphs []resultParagraph `json:"paragraphs"`
	Tables     []resultTable     `json:"tables"`
}

type resultPage struct {
	PageNumber int     `json:"pageNumber"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Unit       string  `json:"unit"`
	Angle      float64 `json:"angle"`
}

type resultParagraph struct {
	Content         string           `json:"content"`
	Role            string           `json:"role,omitempty"`
	BoundingRegions []boundingRegion `json:"boundingRegions"`
	Spans           []span           `json:"spans"`
}

type resultTable struct {
	RowCount        int              `json:"rowCount"`
	ColumnCount     int              `json:"columnCount"`
	Cells           []tableCell      `json:"cells"`
	BoundingRegions []boundingRegion `json:"boundingRegions"`
	Spans           []span           `json:"spans"`
}

type tableCell struct {
	RowIndex    int    `json:"rowIndex"`
	ColumnIndex int    `json:"columnIndex"`
	RowSpan     int    `json:"rowSpan,omitempty"`
	ColumnSpan  int    `json:"columnSpan,omitempty"`
	Content     string `json:"content"`
	Kind        string `json:"kind,omitempty"`
}

type boundingRegion struct {
	PageNumber int       `json:"pageNumber"`
	Polygon    []float64 `json:"polygon"`
}

type span struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// convertResult maps the service payload onto the provider-neutral layout
// result. Tables are rendered to HTML here so downstream stages never see
// cell grids.
func convertResult(r *analyzeResult) *ai.LayoutResult {
	out := &ai.LayoutResult{
		Pages:      make([]ai.LayoutPage, 0, len(r.Pages)),
		Paragraphs: make([]ai.LayoutParagraph, 0, len(r.Paragraphs)),
		Tables:     make([]ai.LayoutTable, 0, len(r.Tables)),
	}

	for _, p := range r.Pages {
		out.Pages = append(out.Pages, ai.LayoutPage{
			Number: p.PageNumber,
			Width:  p.Width,
			Height: p.Height,
			Unit:   p.Unit,
			Angle:  p.Angle,
		})
	}

	for _, p := range r.Paragraphs {
		page, polygon := firstRegion(p.BoundingRegions)
		out.Paragraphs = append(out.Paragraphs, ai.LayoutParagraph{
			Content:    p.Content,
			Role:       p.Role,
			Polygon:    polygon,
			PageNumber: page,
			Offset:     firstOffset(p.Spans),
		})
	}

	for _, t := range r.Tables {
		page, polygon := firstRegion(t.BoundingRegions)
		out.Tables = append(out.Tables, ai.LayoutTable{
			HTML:        tableToHTML(t),
			RowCount:    t.RowCount,
			ColumnCount: t.ColumnCount,
			Polygon:     polygon,
			PageNumber:  page,
			Offset:      firstOffset(t.Spans),
		})
	}

	return out
}

// firstRegion returns the page number and polygon of the first bounding
// region, defaulting to page 1 with no polygon when the service sent none.
func firstRegion(regions []boundingRegion) (int, []float64) {
	if len(regions) == 0 {
		return 1, nil
	}
	return regions[0].PageNumber, regions[0].Polygon
}

func firstOffset(spans []span) int {
	if len(spans) == 0 {
		return 0
	}
	return spans[0].Offset
}

// tableToHTML renders a cell grid as an HTML table fragment. Column header
// cells become th elements; row and column spans are preserved.
func tableToHTML(t resultTable) string {
	rows := make([][]string, t.RowCount)

	for _, cell := range t.Cells {
		if cell.RowIndex < 0 || cell.RowIndex >= t.RowCount {
			continue
		}

		tag := "td"
		if cell.Kind == "columnHeader" {
			tag = "th"
		}

		var attrs strings.Builder
		if cell.ColumnSpan > 1 {
			fmt.Fprintf(&attrs, " colspan='%d'", cell.ColumnSpan)
		}
		if cell.RowSpan > 1 {
			fmt.Fprintf(&attrs, " rowspan='%d'", cell.RowSpan)
		}

		cellHTML := fmt.Sprintf("<%s%s>%s</%s>", tag, attrs.String(), html.EscapeString(cell.Content), tag)
		rows[cell.RowIndex] = append(rows[cell.RowIndex], cellHTML)
	}

	var b strings.Builder
	b.WriteString("<table>\n")
	for _, cells := range rows {
		if len(cells) == 0 {
			continue
		}
		b.WriteString("  <tr>")
		b.WriteString(strings.Join(cells, ""))
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>")
	return b.String()
}
