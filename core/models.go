package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ParsingService is the name of the external layout-analysis service
// recorded in document metadata.
const ParsingService = "docintel"

// File is the unit of ingestion. A file is created on upload and driven
// through the processing pipeline by the orchestrator; its Status field is
// the single source of truth for where it is in the pipeline.
type File struct {
	ID               string     `json:"id"`
	TenantID         string     `json:"tenant_id"`
	ProjectID        string     `json:"project_id"`
	Name             string     `json:"name"`
	OriginalFilename string     `json:"original_filename"`
	Size             int64      `json:"size"`
	MimeType         string     `json:"mime_type"`
	Checksum         string     `json:"checksum,omitempty"`
	Status           FileStatus `json:"status"`

	// Artifact locations. RawPath is set on upload; the rest are written by
	// the stage that produced the artifact.
	RawPath       string `json:"raw_path"`
	Converted     bool   `json:"converted"`
	ConvertedPath string `json:"converted_path,omitempty"`
	EnrichedPath  string `json:"enriched_path,omitempty"`
	EmbeddingPath string `json:"embedding_path,omitempty"`

	TotalChunks int `json:"total_chunks"`

	// Stage timestamps, set by the orchestrator on status transitions.
	ConversionStartedAt   time.Time `json:"conversion_started_at,omitzero"`
	ConversionCompletedAt time.Time `json:"conversion_completed_at,omitzero"`
	ParsingStartedAt      time.Time `json:"parsing_started_at,omitzero"`
	ParsingCompletedAt    time.Time `json:"parsing_completed_at,omitzero"`
	EnrichmentStartedAt   time.Time `json:"enrichment_started_at,omitzero"`
	EnrichmentCompletedAt time.Time `json:"enrichment_completed_at,omitzero"`
	ChunkingStartedAt     time.Time `json:"chunking_started_at,omitzero"`
	ChunkingCompletedAt   time.Time `json:"chunking_completed_at,omitzero"`
	EmbeddingStartedAt    time.Time `json:"embedding_started_at,omitzero"`
	EmbeddingCompletedAt  time.Time `json:"embedding_completed_at,omitzero"`

	// LastError holds the most recent stage error verbatim. A non-empty
	// LastError with a non-failed status means a soft-fail stage failed.
	LastError string `json:"last_error,omitempty"`

	// Tombstoned marks the file as deleted. Completion writes from workers
	// still running against a tombstoned file are rejected.
	Tombstoned bool `json:"tombstoned,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFileID generates a new unique file identifier.
func NewFileID() string {
	return uuid.NewString()
}

// ContentChecksum returns the hex BLAKE2b-256 digest of raw content.
// Identical uploads produce identical checksums, which lets callers detect
// re-uploads without comparing bytes.
func ContentChecksum(data []byte) string {
	h, _ := blake2b.New(32, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SectionType discriminates the two section kinds of an enriched document.
type SectionType string

const (
	SectionTypeParagraph SectionType = "paragraph"
	SectionTypeTable     SectionType = "table"
)

// Paragraph roles as reported by the layout-analysis service.
const (
	RoleTitle          = "title"
	RoleSectionHeading = "sectionHeading"
	RolePageHeader     = "pageHeader"
	RolePageFooter     = "pageFooter"
)

// ViewportSize is the number of coordinates in a section viewport.
// Viewports are 8-number polygons [x1,y1,x2,y2,x3,y3,x4,y4], not 4-number
// boxes, so rotated and skewed regions survive the mapping.
const ViewportSize = 8

// Section is one content block of an enriched document: a paragraph or a
// table. Table sections carry their content as an HTML table fragment.
type Section struct {
	Type    SectionType `json:"type"`
	Content string      `json:"content"`
	// Viewport locates the section on its page as an 8-number polygon.
	// Coordinates are page-relative, origin top-left, in the unit declared
	// by the matching PageInfo.
	Viewport   []float64 `json:"viewport"`
	Offset     int       `json:"offset"`
	PageNumber int       `json:"page_number"`

	// Role is set on paragraphs only (title, sectionHeading, pageHeader,
	// pageFooter) and empty when the service reported none.
	Role string `json:"role,omitempty"`

	// RowCount and ColumnCount are set on tables only, both >= 1.
	RowCount    int `json:"row_count,omitempty"`
	ColumnCount int `json:"column_count,omitempty"`
}

// PageInfo describes the geometry of one page.
type PageInfo struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
	Angle  float64 `json:"angle"`
}

// Reliability levels for semantic headers.
const (
	ReliabilityHigh   = "high"
	ReliabilityMedium = "medium"
	ReliabilityLow    = "low"
)

// SemanticHeaders is the optional LLM-extracted header block of an enriched
// document. It is produced by a best-effort collaborator and may be absent
// entirely; when present, DocumentType, Summary, Tags and Reliability must
// all be populated.
type SemanticHeaders struct {
	DocumentType    string   `json:"document_type"`
	Summary         string   `json:"summary"`
	Tags            []string `json:"tags"`
	DateOfAuthoring string   `json:"date_of_authoring,omitempty"`
	Source          string   `json:"source,omitempty"`
	Reliability     string   `json:"reliability"`
}

// Metadata is the technical metadata block of an enriched document. It is
// written once by the parse stage and immutable afterward.
type Metadata struct {
	DocumentID     string    `json:"document_id"`
	FileName       string    `json:"file_name"`
	Parser         string    `json:"parser"`
	ParsingService string    `json:"parsing_service"`
	CreatedAt      time.Time `json:"created_at"`
	FileSize       int64     `json:"file_size"`
	TotalPages     int       `json:"total_pages"`
	TotalSections  int       `json:"total_sections"`
	TotalTables    int       `json:"total_tables"`
}

// EnrichedDocument is the digital twin of a parsed file: the canonical
// structured representation every downstream stage reads.
//
// Sections are in document reading order, not spatial order. Every section's
// PageNumber must have a corresponding Pages entry.
type EnrichedDocument struct {
	Sections []Section        `json:"sections"`
	Pages    map[int]PageInfo `json:"page_info"`
	Headers  *SemanticHeaders `json:"enriched_metadata,omitempty"`
	Metadata Metadata         `json:"metadata"`
}

// MergeHeaders returns a copy of doc with its headers replaced. Sections,
// pages and metadata are never touched.
func MergeHeaders(doc *EnrichedDocument, headers *SemanticHeaders) *EnrichedDocument {
	merged := *doc
	merged.Headers = headers
	return &merged
}

// Text returns the linearized paragraph text of the document. Tables are
// skipped; their HTML payload adds noise rather than signal for header
// extraction.
func (d *EnrichedDocument) Text() string {
	var b []byte
	for _, s := range d.Sections {
		if s.Type == SectionTypeTable || s.Content == "" {
			continue
		}
		if len(b) > 0 {
			b = append(b, '\n', '\n')
		}
		b = append(b, s.Content...)
	}
	return string(b)
}

// ChunkMetadata carries the provenance a chunk needs to render a citation
// back into the original document.
type ChunkMetadata struct {
	// SectionIndexes are the indices (into EnrichedDocument.Sections) of
	// every section that contributed content to the chunk.
	SectionIndexes []int `json:"section_indexes"`
	// Pages are the distinct page numbers the chunk spans, ascending.
	Pages []int `json:"pages"`
	// Viewport is the combined 8-number bounding region of the contributing
	// sections on their pages.
	Viewport []float64 `json:"viewport"`
	HasTable bool      `json:"has_table,omitempty"`
}

// Chunk is one retrieval-sized slice of an enriched document. The chunk text
// itself lives in blob storage at BlobPath, never inline in the row store.
type Chunk struct {
	FileID     string        `json:"file_id"`
	Index      int           `json:"chunk_index"`
	TokenCount int           `json:"token_count"`
	BlobPath   string        `json:"blob_path"`
	VectorID   string        `json:"vector_id,omitempty"`
	Metadata   ChunkMetadata `json:"chunk_metadata"`
	CreatedAt  time.Time     `json:"created_at"`
}
