package ai

// LayoutResult is the provider-native output of a layout analysis: flat
// lists of paragraphs and tables plus per-page geometry. Coordinates are
// 8-number polygons in the page's declared unit.
type LayoutResult struct {
	Pages      []LayoutPage      `json:"pages"`
	Paragraphs []LayoutParagraph `json:"paragraphs"`
	Tables     []LayoutTable     `json:"tables"`
}

// LayoutPage describes one analyzed page.
type LayoutPage struct {
	Number int     `json:"page_number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
	Angle  float64 `json:"angle"`
}

// LayoutParagraph is one text block as the service reported it.
type LayoutParagraph struct {
	Content string `json:"content"`
	// Role is the service's heading classification (title, sectionHeading,
	// pageHeader, pageFooter) or empty.
	Role       string    `json:"role,omitempty"`
	Polygon    []float64 `json:"polygon"`
	PageNumber int       `json:"page_number"`
	Offset     int       `json:"offset"`
}

// LayoutTable is one table as the service reported it, with its content
// already rendered as an HTML fragment.
type LayoutTable struct {
	HTML        string    `json:"html"`
	RowCount    int       `json:"row_count"`
	ColumnCount int       `json:"column_count"`
	Polygon     []float64 `json:"polygon"`
	PageNumber  int       `json:"page_number"`
	Offset      int       `json:"offset"`
}
