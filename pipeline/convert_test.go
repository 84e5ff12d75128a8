package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeedsConversion(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"report.pdf", false},
		{"Report.PDF", false},
		{"twin.json", false},
		{"sheet.xlsx", false},
		{"deck.pptx", false},
		{"call.mp3", false},
		{"voice.wav", false},
		{"thread.eml", false},
		{"outlook.msg", false},
		{"memo.doc", true},
		{"memo.docx", true},
		{"old-sheet.xls", true},
		{"old-deck.ppt", true},
		{"scan.jpg", true},
		{"scan.jpeg", true},
		{"diagram.png", true},
		// Unknown formats attempt conversion rather than failing outright.
		{"notes.txt", true},
		{"mystery", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsConversion(tt.filename))
		})
	}
}

func TestConvertedFilename(t *testing.T) {
	assert.Equal(t, "memo.pdf", convertedFilename("memo.docx"))
	assert.Equal(t, "archive.v2.pdf", convertedFilename("archive.v2.xls"))
	assert.Equal(t, "noext.pdf", convertedFilename("noext"))
}
