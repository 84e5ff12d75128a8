package pipeline

import (
	"context"

	"github.com/poiesic/doctwin/core"
	"github.com/poiesic/doctwin/storage"
)

// runEnrichment derives semantic headers for the enriched document and
// merges them into the stored artifact. Enrichment is the one best-effort
// stage: the caller routes its failure to enrichment_failed, which feeds
// chunking like success does.
func (p *Pipeline) runEnrichment(ctx context.Context, file *core.File) (*storage.Transition, error) {
	data, err := p.blobs.Get(ctx, file.EnrichedPath)
	if err != nil {
		return nil, err
	}

	doc, err := core.UnmarshalDocument(data)
	if err != nil {
		return nil, err
	}

	headers, err := p.provider.HeaderExtractor().ExtractHeaders(ctx, doc.Text(), file.OriginalFilename)
	if err != nil {
		return nil, err
	}

	merged := core.MergeHeaders(doc, headers)
	out, err := core.MarshalDocument(merged)
	if err != nil {
		return nil, err
	}
	if err := p.blobs.Put(ctx, file.EnrichedPath, out); err != nil {
		return nil, err
	}

	p.logger.Info("enrichment complete",
		"file_id", file.ID,
		"document_type", headers.DocumentType,
		"tags", len(headers.Tags))

	return &storage.Transition{}, nil
}
