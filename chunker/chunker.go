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


package chunker

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/doctwin/core"
)

// Tokenizer measures and slices text in model tokens.
// Implementations must be thread-safe for concurrent use.
type Tokenizer interface {
	// Count returns the number of tokens in text.
	Count(text string) int

	// Tail returns the suffix of text covering at most n tokens.
	Tail(text string, n int) string
}

// Config controls piece sizing.
type Config struct {
	// ChunkSize is the token budget per piece.
	ChunkSize int

	// Overlap is how many trailing tokens of a closed piece seed the next.
	Overlap int
}

// DefaultConfig returns the sizing used by the ingestion pipeline.
func DefaultConfig() Config {
	return Config{ChunkSize: 512, Overlap: 64}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.ChunkSize < 1 {
		return errors.New("chunk size must be positive")
	}
	if c.Overlap < 0 {
		return errors.New("overlap must not be negative")
	}
	if c.Overlap >= c.ChunkSize {
		return errors.New("overlap must be smaller than chunk size")
	}
	return nil
}

// Piece is one token-bounded slice of a document with its provenance.
// The pipeline persists each piece's text to blob storage and its metadata
// to the chunk row; the chunker itself does no I/O.
type Piece struct {
	Text       string
	TokenCount int
	Metadata   core.ChunkMetadata
}

// Split breaks doc into token-bounded pieces. It assumes doc has already
// passed core.ValidateDocument. The returned pieces are in document order
// and their implicit indices are contiguous from zero.
func Split(doc *core.EnrichedDocument, cfg Config, tok Tokenizer) ([]Piece, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, errors.New("tokenizer required")
	}

	b := &builder{cfg: cfg, tok: tok}

	for i, section := range doc.Sections {
		content := strings.TrimSpace(section.Content)
		if content == "" {
			continue
		}
		tokens := tok.Count(content)

		switch section.Type {
		case core.SectionTypeTable:
			if tokens > cfg.ChunkSize {
				// Oversized table stands alone, whole.
				b.flushWithoutOverlap()
				b.add(content, tokens, i, &section)
				b.flushWithoutOverlap()
				continue
			}
			if !b.fits(tokens) {
				b.flush()
			}
			b.add(content, tokens, i, &section)

		case core.SectionTypeParagraph:
			if tokens > cfg.ChunkSize {
				if err := b.addOversizedParagraph(content, i, &section); err != nil {
					return nil, err
				}
				continue
			}
			if !b.fits(tokens) {
				b.flush()
			}
			b.add(content, tokens, i, &section)

		default:
			return nil, fmt.Errorf("section %d: cannot place type %q", i, section.Type)
		}
	}
	b.flushWithoutOverlap()

	return b.pieces, nil
}

// builder accumulates one piece at a time.
type builder struct {
	cfg Config
	tok Tokenizer

	pieces []Piece

	parts    []string
	tokens   int
	sections []int
	pages    map[int]struct{}
	bounds   *boundingBox
	hasTable bool

	// seed is overlap text carried from the previous piece. It counts
	// against the budget but contributes no provenance.
	seed       string
	seedTokens int
}

// fits reports whether n more tokens stay within the budget.
func (b *builder) fits(n int) bool {
	return b.tokens+b.seedTokens+n <= b.cfg.ChunkSize
}

func (b *builder) add(content string, tokens, sectionIndex int, section *core.Section) {
	b.parts = append(b.parts, content)
	b.tokens += tokens
	b.sections = append(b.sections, sectionIndex)
	if b.pages == nil {
		b.pages = make(map[int]struct{})
	}
	b.pages[section.PageNumber] = struct{}{}
	if b.bounds == nil {
		b.bounds = &boundingBox{}
	}
	b.bounds.extend(section.Viewport)
	if section.Type == core.SectionTypeTable {
		b.hasTable = true
	}
}

// addOversizedParagraph packs a too-large paragraph sentence by sentence,
// closing pieces as the budget fills. A single sentence over the budget
// becomes its own piece.
func (b *builder) addOversizedParagraph(content string, sectionIndex int, section *core.Section) error {
	sentences := splitSentences(content)
	if len(sentences) == 0 {
		return fmt.Errorf("section %d: cannot place empty paragraph", sectionIndex)
	}

	for _, sentence := range sentences {
		tokens := b.tok.Count(sentence)
		if !b.fits(tokens) && (b.tokens > 0 || b.seedTokens > 0) {
			b.flush()
		}
		b.add(sentence, tokens, sectionIndex, section)
		if b.tokens+b.seedTokens > b.cfg.ChunkSize {
			// Single sentence over budget stands alone.
			b.flushWithoutOverlap()
		}
	}
	return nil
}

// flush closes the current piece and seeds the next with overlap text.
func (b *builder) flush() {
	piece, ok := b.close()
	if !ok {
		return
	}
	b.pieces = append(b.pieces, piece)

	if b.cfg.Overlap > 0 {
		b.seed = b.tok.Tail(piece.Text, b.cfg.Overlap)
		b.seedTokens = b.tok.Count(b.seed)
	}
}

// flushWithoutOverlap closes the current piece with no carry-over. Used
// around standalone oversized pieces and at end of document.
func (b *builder) flushWithoutOverlap() {
	piece, ok := b.close()
	if !ok {
		return
	}
	b.pieces = append(b.pieces, piece)
	b.seed = ""
	b.seedTokens = 0
}

func (b *builder) close() (Piece, bool) {
	if len(b.parts) == 0 {
		return Piece{}, false
	}

	text := strings.Join(b.parts, "\n\n")
	if b.seed != "" {
		text = b.seed + "\n\n" + text
	}

	pages := make([]int, 0, len(b.pages))
	for p := range b.pages {
		pages = append(pages, p)
	}
	slices.Sort(pages)

	sections := slices.Clone(b.sections)
	slices.Sort(sections)
	sections = slices.Compact(sections)

	piece := Piece{
		Text:       text,
		TokenCount: b.tokens + b.seedTokens,
		Metadata: core.ChunkMetadata{
			SectionIndexes: sections,
			Pages:          pages,
			Viewport:       b.bounds.polygon(),
			HasTable:       b.hasTable,
		},
	}

	b.parts = nil
	b.tokens = 0
	b.sections = nil
	b.pages = nil
	b.bounds = nil
	b.hasTable = false
	b.seed = ""
	b.seedTokens = 0

	return piece, true
}

// boundingBox accumulates the axis-aligned union of section viewports.
type boundingBox struct {
	set                    bool
	minX, minY, maxX, maxY float64
}

func (bb *boundingBox) extend(viewport []float64) {
	for i := 0; i+1 < len(viewport); i += 2 {
		x, y := viewport[i], viewport[i+1]
		if !bb.set {
			bb.minX, bb.maxX = x, x
			bb.minY, bb.maxY = y, y
			bb.set = true
			continue
		}
		bb.minX = min(bb.minX, x)
		bb.maxX = max(bb.maxX, x)
		bb.minY = min(bb.minY, y)
		bb.maxY = max(bb.maxY, y)
	}
}

// polygon returns the union as an 8-number clockwise rectangle, or nil when
// no viewport was seen.
func (bb *boundingBox) polygon() []float64 {
	if bb == nil || !bb.set {
		return nil
	}
	return []float64{
		bb.minX, bb.minY,
		bb.maxX, bb.minY,
		bb.maxX, bb.maxY,
		bb.minX, bb.maxY,
	}
}

// splitSentences breaks text at sentence-ending punctuation and newlines,
// keeping the terminator with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		boundary := false
		switch r {
		case '\n':
			boundary = true
		case '.', '!', '?':
			// Terminator followed by whitespace or end of text.
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				boundary = true
			}
		}

		if boundary {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
