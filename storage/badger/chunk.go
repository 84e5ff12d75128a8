package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/doctwin/core"
	"github.com/poiesic/doctwin/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &ChunkRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database lifecycle.
func (r *ChunkRepository) Close() error {
	return nil
}

// ReplaceChunks atomically swaps a file's chunk sequence. Existing rows are
// removed first so a chunking re-run never leaves a stale tail behind.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, fileID string, chunks []*core.Chunk) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := deleteByPrefix(tx, makeChunkPrefix(fileID)); err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, chunk := range chunks {
			chunk.FileID = fileID
			if chunk.CreatedAt.IsZero() {
				chunk.CreatedAt = now
			}
			value, err := storage.MarshalChunk(chunk)
			if err != nil {
				return err
			}
			if err := tx.Set(makeChunkKey(fileID, chunk.Index), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetChunks returns a file's chunks ordered by index. The BigEndian index
// suffix in the key makes iteration order the chunk order.
func (r *ChunkRepository) GetChunks(ctx context.Context, fileID string) ([]*core.Chunk, error) {
	var chunks []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkPrefix(fileID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			chunks = append(chunks, chunk)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// SetVectorIDs records embedding vector ids on existing chunk rows.
func (r *ChunkRepository) SetVectorIDs(ctx context.Context, fileID string, vectorIDs map[int]string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for index, vectorID := range vectorIDs {
			key := makeChunkKey(fileID, index)
			item, err := tx.Get(key)
			if err != nil {
				return fmt.Errorf("%w: chunk %d of file %s", storage.ErrNotFound, index, fileID)
			}

			var chunk *core.Chunk
			err = item.Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}

			chunk.VectorID = vectorID
			value, err := storage.MarshalChunk(chunk)
			if err != nil {
				return err
			}
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteChunks removes all chunk rows of a file.
func (r *ChunkRepository) DeleteChunks(ctx context.Context, fileID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := deleteByPrefix(tx, makeChunkPrefix(fileID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
