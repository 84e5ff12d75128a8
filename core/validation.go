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


package core

import "fmt"

// ValidateDocument validates an EnrichedDocument according to domain rules.
//
// Validation rules:
//   - Every section's PageNumber has a corresponding Pages entry
//   - Every viewport has exactly ViewportSize (8) numeric components
//   - Section offsets are non-negative
//   - Table sections have RowCount and ColumnCount >= 1
//   - Page dimensions are positive
//   - SemanticHeaders, if present, has all required fields populated together
//
// NOT validated:
//   - Headers absence (enrichment is optional; nil headers are valid)
//   - Section ordering (reading order is the parser's responsibility)
//
// A validation failure classifies the document as malformed; the caller
// marks the stage failed rather than crashing the pipeline.
func ValidateDocument(doc *EnrichedDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	for page, info := range doc.Pages {
		if info.Width <= 0 || info.Height <= 0 {
			return fmt.Errorf("%w: page %d is %gx%g %s: %w",
				ErrInvalidDocument, page, info.Width, info.Height, info.Unit, ErrBadPageInfo)
		}
	}

	for i, section := range doc.Sections {
		if err := validateSection(i, &section, doc.Pages); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	}

	if doc.Headers != nil {
		if err := ValidateHeaders(doc.Headers); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	}

	return nil
}

func validateSection(index int, s *Section, pages map[int]PageInfo) error {
	switch s.Type {
	case SectionTypeParagraph:
	case SectionTypeTable:
		if s.RowCount < 1 || s.ColumnCount < 1 {
			return fmt.Errorf("section %d: %w", index, ErrBadTableShape)
		}
	default:
		return fmt.Errorf("section %d: %w: %q", index, ErrBadSectionType, s.Type)
	}

	if len(s.Viewport) != ViewportSize {
		return fmt.Errorf("section %d: %w: got %d", index, ErrBadViewport, len(s.Viewport))
	}

	if s.Offset < 0 {
		return fmt.Errorf("section %d: %w", index, ErrNegativeOffset)
	}

	if _, ok := pages[s.PageNumber]; !ok {
		return fmt.Errorf("section %d: %w: page %d", index, ErrMissingPage, s.PageNumber)
	}

	return nil
}

// ValidateHeaders validates a SemanticHeaders block. Headers are
// all-or-nothing: a block missing any required field is a validation error,
// not a silent drop.
func ValidateHeaders(h *SemanticHeaders) error {
	if h == nil {
		return fmt.Errorf("%w: headers are nil", ErrPartialHeaders)
	}
	if h.DocumentType == "" {
		return fmt.Errorf("%w: document_type is empty", ErrPartialHeaders)
	}
	if h.Summary == "" {
		return fmt.Errorf("%w: summary is empty", ErrPartialHeaders)
	}
	if len(h.Tags) == 0 {
		return fmt.Errorf("%w: tags are empty", ErrPartialHeaders)
	}
	switch h.Reliability {
	case ReliabilityHigh, ReliabilityMedium, ReliabilityLow:
	default:
		return fmt.Errorf("%w: reliability %q", ErrPartialHeaders, h.Reliability)
	}
	return nil
}

// ValidateFile validates a File according to domain rules.
func ValidateFile(f *File) error {
	if f == nil {
		return fmt.Errorf("%w: file is nil", ErrInvalidFile)
	}
	if f.ID == "" {
		return fmt.Errorf("%w: id is empty", ErrInvalidFile)
	}
	if f.TenantID == "" || f.ProjectID == "" {
		return fmt.Errorf("%w: tenant and project are required", ErrInvalidFile)
	}
	if f.OriginalFilename == "" {
		return fmt.Errorf("%w: original filename is empty", ErrInvalidFile)
	}
	if f.Size < 0 {
		return fmt.Errorf("%w: negative size", ErrInvalidFile)
	}
	if !f.Status.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidFile, ErrInvalidStatus, f.Status)
	}
	return nil
}
