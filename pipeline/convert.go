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
	"path"
	"strings"

	"github.com/poiesic/doctwin/core"
	"github.com/poiesic/doctwin/storage"
)

// Converter turns office and image formats into PDF bytes the layout
// analyzer accepts. Implementations must be thread-safe.
type Converter interface {
	// Convert returns the PDF rendition of the given document bytes.
	Convert(ctx context.Context, content []byte, filename string) ([]byte, error)
}

// skipConversion lists extensions the parse stage reads directly: native
// parser formats, audio handled by transcription, and email containers.
var skipConversion = []string{
	".pdf", ".json",
	".xlsx", ".pptx",
	".mp3", ".wav", ".m4a", ".flac", ".ogg", ".aac",
	".eml", ".msg",
}

// NeedsConversion reports whether a file must be converted to PDF before
// parsing. Unknown extensions attempt conversion rather than failing
// outright.
func NeedsConversion(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range skipConversion {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}
	return true
}

// convertedFilename is the name of the conversion output artifact.
func convertedFilename(filename string) string {
	return strings.TrimSuffix(filename, path.Ext(filename)) + ".pdf"
}

// runConversion converts the raw artifact to PDF and stores it. Returns the
// completion transition carrying the converted artifact pointer.
func (p *Pipeline) runConversion(ctx context.Context, file *core.File) (*storage.Transition, error) {
	if p.converter == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoConverter, file.OriginalFilename)
	}

	raw, err := p.blobs.Get(ctx, file.RawPath)
	if err != nil {
		return nil, err
	}

	converted, err := p.converter.Convert(ctx, raw, file.OriginalFilename)
	if err != nil {
		return nil, err
	}

	convertedPath, err := storage.ConvertedPath(file.TenantID, file.ProjectID, file.ID, file.OriginalFilename)
	if err != nil {
		return nil, err
	}
	if err := p.blobs.Put(ctx, convertedPath, converted); err != nil {
		return nil, err
	}

	p.logger.Info("conversion complete",
		"file_id", file.ID,
		"filename", file.OriginalFilename,
		"converted_size", len(converted))

	isConverted := true
	return &storage.Transition{
		ConvertedPath: &convertedPath,
		Converted:     &isConverted,
	}, nil
}
