package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/poiesic/doctwin/core"
	"github.com/poiesic/doctwin/storage"
)

// embeddingManifest is the embedding stage's artifact: which vectors exist
// for the file and where they came from.
type embeddingManifest struct {
	FileID      string    `json:"file_id"`
	VectorIDs   []string  `json:"vector_ids"`
	Dimensions  int       `json:"dimensions"`
	TotalChunks int       `json:"total_chunks"`
	CreatedAt   time.Time `json:"created_at"`
}

// vectorID is the deterministic index key for one chunk's embedding.
// Determinism makes re-embedding overwrite instead of duplicate.
func vectorID(fileID string, index int) string {
	return fmt.Sprintf("%s:%d", fileID, index)
}

// embedTexts embeds the chunk texts, taking the single-text call for a
// one-chunk file instead of the batch round-trip.
func (p *Pipeline) embedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 1 {
		vector, err := p.provider.Embedder().EmbedText(ctx, texts[0])
		if err != nil {
			return nil, err
		}
		return [][]float32{vector}, nil
	}
	return p.provider.Embedder().EmbedTexts(ctx, texts)
}

// runEmbedding embeds every chunk's text, upserts the vectors, records the
// vector ids on the chunk rows, and writes the manifest artifact. Returns
// the completion transition carrying the manifest pointer.
func (p *Pipeline) runEmbedding(ctx context.Context, file *core.File) (*storage.Transition, error) {
	chunks, err := p.chunks.GetChunks(ctx, file.ID)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		data, err := p.blobs.Get(ctx, chunk.BlobPath)
		if err != nil {
			return nil, err
		}
		var payload chunkPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("%w: chunk %d: %w", storage.ErrSerializationFailed, chunk.Index, err)
		}
		texts[i] = payload.Text
	}

	ids := make([]string, len(chunks))
	vectorIDs := make(map[int]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = vectorID(file.ID, chunk.Index)
		vectorIDs[chunk.Index] = ids[i]
	}

	dimensions := 0
	if len(texts) > 0 {
		vectors, err := p.embedTexts(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(texts))
		}
		if err := p.index.Upsert(ctx, ids, vectors); err != nil {
			return nil, err
		}
		if err := p.chunks.SetVectorIDs(ctx, file.ID, vectorIDs); err != nil {
			return nil, err
		}
		dimensions = len(vectors[0])
	}

	manifest, err := json.Marshal(embeddingManifest{
		FileID:      file.ID,
		VectorIDs:   ids,
		Dimensions:  dimensions,
		TotalChunks: len(chunks),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	manifestPath, err := storage.EmbeddingPath(file.TenantID, file.ProjectID, file.ID)
	if err != nil {
		return nil, err
	}
	if err := p.blobs.Put(ctx, manifestPath, manifest); err != nil {
		return nil, err
	}

	p.logger.Info("embedding complete",
		"file_id", file.ID,
		"vectors", len(ids),
		"dimensions", dimensions)

	return &storage.Transition{EmbeddingPath: &manifestPath}, nil
}
