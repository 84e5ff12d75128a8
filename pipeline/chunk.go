package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/poiesic/doctwin/chunker"
	"github.com/poiesic/doctwin/core"
	"github.com/poiesic/doctwin/storage"
)

// chunkPayload is the blob representation of one chunk. Chunk text lives
// only here; the row store holds the reference and provenance.
type chunkPayload struct {
	Text       string             `json:"text"`
	TokenCount int                `json:"token_count"`
	Metadata   core.ChunkMetadata `json:"chunk_metadata"`
}

// runChunking splits the enriched document into token-bounded pieces,
// writes each piece's payload to blob storage, and replaces the file's
// chunk rows. Replacement keeps re-runs idempotent: a crashed chunking
// attempt leaves no stale tail behind.
func (p *Pipeline) runChunking(ctx context.Context, file *core.File) (*storage.Transition, error) {
	data, err := p.blobs.Get(ctx, file.EnrichedPath)
	if err != nil {
		return nil, err
	}

	doc, err := core.UnmarshalDocument(data)
	if err != nil {
		return nil, err
	}

	pieces, err := chunker.Split(doc, p.chunkConfig, p.tokenizer)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	chunks := make([]*core.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		blobPath, err := storage.ChunkPath(file.TenantID, file.ProjectID, file.ID, i)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(chunkPayload{
			Text:       piece.Text,
			TokenCount: piece.TokenCount,
			Metadata:   piece.Metadata,
		})
		if err != nil {
			return nil, err
		}
		if err := p.blobs.Put(ctx, blobPath, payload); err != nil {
			return nil, err
		}

		chunks = append(chunks, &core.Chunk{
			FileID:     file.ID,
			Index:      i,
			TokenCount: piece.TokenCount,
			BlobPath:   blobPath,
			Metadata:   piece.Metadata,
			CreatedAt:  now,
		})
	}

	if err := p.chunks.ReplaceChunks(ctx, file.ID, chunks); err != nil {
		return nil, err
	}

	p.logger.Info("chunking complete",
		"file_id", file.ID,
		"total_chunks", len(chunks))

	total := len(chunks)
	return &storage.Transition{TotalChunks: &total}, nil
}
