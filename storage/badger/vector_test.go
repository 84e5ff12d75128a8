package badger

import (
	"context"
	"testing"

	"github.com/poiesic/doctwin/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupVectorIndex(t *testing.T) *VectorIndex {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	index, err := NewVectorIndex(backend)
	require.NoError(t, err)
	t.Cleanup(func() {
		index.Close()
		backend.Close()
	})
	return index
}

func TestVectorUpsertAndGet(t *testing.T) {
	index := setupVectorIndex(t)
	ctx := context.Background()

	ids := []string{"file-1:0", "file-1:1"}
	vectors := [][]float32{{0.1, 0.2, 0.3}, {-1.5, 0, 2.25}}
	require.NoError(t, index.Upsert(ctx, ids, vectors))

	for i, id := range ids {
		got, err := index.Vector(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, vectors[i], got)
	}
}

func TestVectorUpsertOverwrites(t *testing.T) {
	index := setupVectorIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []string{"file-1:0"}, [][]float32{{1, 2}}))
	require.NoError(t, index.Upsert(ctx, []string{"file-1:0"}, [][]float32{{3, 4}}))

	got, err := index.Vector(ctx, "file-1:0")
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 4}, got)
}

func TestVectorUpsertLengthMismatch(t *testing.T) {
	index := setupVectorIndex(t)

	err := index.Upsert(context.Background(), []string{"a", "b"}, [][]float32{{1}})
	assert.ErrorIs(t, err, storage.ErrStorage)
}

func TestVectorRemove(t *testing.T) {
	index := setupVectorIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []string{"file-1:0"}, [][]float32{{1, 2}}))
	require.NoError(t, index.Remove(ctx, []string{"file-1:0", "never-existed"}))

	_, err := index.Vector(ctx, "file-1:0")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestVectorEncodingRoundTrip(t *testing.T) {
	vector := []float32{0, -0, 1.5, -2.75, 1e-7}
	got, err := decodeVector(encodeVector(vector))
	require.NoError(t, err)
	assert.Equal(t, vector, got)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.ErrorIs(t, err, storage.ErrStorage)
}
