package blob

import (
	"context"
	"testing"

	"github.com/poiesic/doctwin/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]storage.BlobStore {
	fsStore, err := NewFS(t.TempDir())
	require.NoError(t, err)
	return map[string]storage.BlobStore{
		"fs":     fsStore,
		"memory": NewMemory(),
	}
}

func TestPutGetOverwrite(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := "acme/proj/f1/enriched/document.json"

			require.NoError(t, store.Put(ctx, key, []byte("v1")))

			got, err := store.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), got)

			// Put on the same key overwrites, never appends.
			require.NoError(t, store.Put(ctx, key, []byte("v2")))
			got, err = store.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), got)
		})
	}
}

func TestGetMissing(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "acme/proj/f1/raw/missing.pdf")
			assert.ErrorIs(t, err, storage.ErrNotFound)
		})
	}
}

func TestExistsAndDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := "acme/proj/f1/raw/a.pdf"

			ok, err := store.Exists(ctx, key)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Put(ctx, key, []byte("data")))
			ok, err = store.Exists(ctx, key)
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, store.Delete(ctx, key))
			ok, err = store.Exists(ctx, key)
			require.NoError(t, err)
			assert.False(t, ok)

			// Deleting an absent blob is not an error.
			assert.NoError(t, store.Delete(ctx, key))
		})
	}
}

func TestDeletePrefix(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Put(ctx, "acme/proj/f1/raw/a.pdf", []byte("raw")))
			require.NoError(t, store.Put(ctx, "acme/proj/f1/chunks/chunk_0.json", []byte("c0")))
			require.NoError(t, store.Put(ctx, "acme/proj/f2/raw/b.pdf", []byte("other")))

			require.NoError(t, store.DeletePrefix(ctx, "acme/proj/f1/"))

			ok, err := store.Exists(ctx, "acme/proj/f1/raw/a.pdf")
			require.NoError(t, err)
			assert.False(t, ok)
			ok, err = store.Exists(ctx, "acme/proj/f1/chunks/chunk_0.json")
			require.NoError(t, err)
			assert.False(t, ok)

			// The sibling file is untouched.
			ok, err = store.Exists(ctx, "acme/proj/f2/raw/b.pdf")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestFSRejectsEscapingKeys(t *testing.T) {
	fsStore, err := NewFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "../outside", "/abs/path"} {
		assert.ErrorIs(t, fsStore.Put(ctx, key, []byte("x")), storage.ErrBadKey, "key %q", key)
	}
}
