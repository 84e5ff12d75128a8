package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/doctwin/core"
	"github.com/poiesic/doctwin/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupChunkRepo(t *testing.T) storage.ChunkRepository {
	fileRepo, chunkRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		chunkRepo.Close()
		fileRepo.Close()
		backend.Close()
	})
	return chunkRepo
}

func makeChunks(fileID string, n int) []*core.Chunk {
	chunks := make([]*core.Chunk, n)
	for i := 0; i < n; i++ {
		chunks[i] = &core.Chunk{
			FileID:     fileID,
			Index:      i,
			TokenCount: 100 + i,
			BlobPath:   fmt.Sprintf("acme/proj/%s/chunks/chunk_%d.json", fileID, i),
			Metadata: core.ChunkMetadata{
				SectionIndexes: []int{i},
				Pages:          []int{1},
				Viewport:       []float64{0, 0, 1, 0, 1, 1, 0, 1},
			},
		}
	}
	return chunks
}

func TestReplaceAndGetChunks(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceChunks(ctx, "file-1", makeChunks("file-1", 3)))

	chunks, err := repo.GetChunks(ctx, "file-1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index, "chunks must come back in index order")
		assert.False(t, chunk.CreatedAt.IsZero())
	}
}

func TestReplaceChunksIsIdempotent(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	// First run produces five chunks, the re-run produces two. No stale
	// tail from the first run may survive.
	require.NoError(t, repo.ReplaceChunks(ctx, "file-1", makeChunks("file-1", 5)))
	require.NoError(t, repo.ReplaceChunks(ctx, "file-1", makeChunks("file-1", 2)))

	chunks, err := repo.GetChunks(ctx, "file-1")
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestChunksScopedByFile(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceChunks(ctx, "file-1", makeChunks("file-1", 2)))
	require.NoError(t, repo.ReplaceChunks(ctx, "file-10", makeChunks("file-10", 4)))

	chunks, err := repo.GetChunks(ctx, "file-1")
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
	for _, chunk := range chunks {
		assert.Equal(t, "file-1", chunk.FileID)
	}
}

func TestSetVectorIDs(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceChunks(ctx, "file-1", makeChunks("file-1", 2)))
	require.NoError(t, repo.SetVectorIDs(ctx, "file-1", map[int]string{
		0: "vec-a",
		1: "vec-b",
	}))

	chunks, err := repo.GetChunks(ctx, "file-1")
	require.NoError(t, err)
	assert.Equal(t, "vec-a", chunks[0].VectorID)
	assert.Equal(t, "vec-b", chunks[1].VectorID)

	err = repo.SetVectorIDs(ctx, "file-1", map[int]string{7: "vec-x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteChunks(t *testing.T) {
	repo := setupChunkRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceChunks(ctx, "file-1", makeChunks("file-1", 3)))
	require.NoError(t, repo.DeleteChunks(ctx, "file-1"))

	chunks, err := repo.GetChunks(ctx, "file-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
