package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/doctwin/core"
	"github.com/poiesic/doctwin/storage"
)

// FileRepository implements storage.FileRepository for BadgerDB.
type FileRepository struct {
	backend *Backend
}

var _ storage.FileRepository = (*FileRepository)(nil)

// NewFileRepository creates a new FileRepository.
func NewFileRepository(backend *Backend) (*FileRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &FileRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database lifecycle.
func (r *FileRepository) Close() error {
	return nil
}

// CreateFile stores a new file row plus its project and status index entries.
func (r *FileRepository) CreateFile(ctx context.Context, file *core.File) error {
	if err := core.ValidateFile(file); err != nil {
		return err
	}

	now := time.Now().UTC()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}
	file.UpdatedAt = now

	return r.write(func(tx *badger.Txn) error {
		key := makeFileKey(file.ID)
		if _, err := tx.Get(key); err == nil {
			return fmt.Errorf("%w: file %s already exists", storage.ErrConflict, file.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		value, err := storage.MarshalFile(file)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		if err := tx.Set(makeFileProjectKey(file.ProjectID, file.CreatedAt, file.ID), []byte(file.ID)); err != nil {
			return err
		}
		if err := tx.Set(makeFileStatusKey(string(file.Status), file.ID), []byte(file.ID)); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// GetFile retrieves a file by ID. Tombstoned files are reported as not found.
func (r *FileRepository) GetFile(ctx context.Context, id string) (*core.File, error) {
	var file *core.File
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		file, err = r.readFile(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if file == nil || file.Tombstoned {
		return nil, storage.ErrNotFound
	}
	return file, nil
}

// ListFilesByProject returns one page of a project's files, newest first.
func (r *FileRepository) ListFilesByProject(ctx context.Context, projectID string, page, pageSize int) ([]*core.File, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	skip := (page - 1) * pageSize

	var files []*core.File
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeFileProjectPrefix(projectID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid() && len(files) < pageSize; iter.Next() {
			var id string
			err := iter.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			file, err := r.readFile(tx, id)
			if err != nil {
				return err
			}
			if file == nil || file.Tombstoned {
				continue
			}
			if skip > 0 {
				skip--
				continue
			}
			files = append(files, file)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ListFilesByStatus returns files currently in the given status.
func (r *FileRepository) ListFilesByStatus(ctx context.Context, status core.FileStatus) ([]*core.File, error) {
	var files []*core.File
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeFileStatusPrefix(string(status))
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id string
			err := iter.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			file, err := r.readFile(tx, id)
			if err != nil {
				return err
			}
			// The status index can trail the row briefly; trust the row.
			if file == nil || file.Tombstoned || file.Status != status {
				continue
			}
			files = append(files, file)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return files, nil
}

// TransitionStatus atomically applies a status transition with its
// accompanying row updates. The stored status must equal t.From; a worker
// whose compare fails lost the claim race and gets storage.ErrConflict.
func (r *FileRepository) TransitionStatus(ctx context.Context, id string, t storage.Transition) (*core.File, error) {
	var updated *core.File
	err := r.write(func(tx *badger.Txn) error {
		file, err := r.readFile(tx, id)
		if err != nil {
			return err
		}
		if file == nil {
			return storage.ErrNotFound
		}
		if file.Tombstoned {
			return storage.ErrTombstoned
		}
		if file.Status != t.From {
			return fmt.Errorf("%w: file %s is %s, not %s", storage.ErrConflict, id, file.Status, t.From)
		}
		if !core.CanTransition(t.From, t.To) {
			return fmt.Errorf("%w: %s -> %s", core.ErrInvalidTransition, t.From, t.To)
		}

		now := time.Now().UTC()
		applyTransition(file, t, now)
		file.UpdatedAt = now

		value, err := storage.MarshalFile(file)
		if err != nil {
			return err
		}
		if err := tx.Set(makeFileKey(id), value); err != nil {
			return err
		}

		if t.From != t.To {
			if err := tx.Delete(makeFileStatusKey(string(t.From), id)); err != nil {
				return err
			}
			if err := tx.Set(makeFileStatusKey(string(t.To), id), []byte(id)); err != nil {
				return err
			}
		}

		updated = file
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteFile tombstones the file and removes its chunk rows and index
// entries. The row survives so a still-running worker's completion write
// observes the tombstone rather than resurrecting the file.
func (r *FileRepository) DeleteFile(ctx context.Context, id string) error {
	return r.write(func(tx *badger.Txn) error {
		file, err := r.readFile(tx, id)
		if err != nil {
			return err
		}
		if file == nil || file.Tombstoned {
			return storage.ErrNotFound
		}

		now := time.Now().UTC()
		file.Tombstoned = true
		file.UpdatedAt = now

		value, err := storage.MarshalFile(file)
		if err != nil {
			return err
		}
		if err := tx.Set(makeFileKey(id), value); err != nil {
			return err
		}
		if err := tx.Delete(makeFileProjectKey(file.ProjectID, file.CreatedAt, file.ID)); err != nil {
			return err
		}
		if err := tx.Delete(makeFileStatusKey(string(file.Status), id)); err != nil {
			return err
		}

		// Cascade to chunk rows.
		if err := deleteByPrefix(tx, makeChunkPrefix(id)); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func (r *FileRepository) readFile(tx *badger.Txn, id string) (*core.File, error) {
	item, err := tx.Get(makeFileKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var file *core.File
	err = item.Value(func(val []byte) error {
		var err error
		file, err = storage.UnmarshalFile(val)
		return err
	})
	return file, err
}

// write runs fn in a read-write transaction and maps badger's optimistic
// commit conflict to the storage-level conflict sentinel.
func (r *FileRepository) write(fn func(tx *badger.Txn) error) error {
	err := r.backend.WithTx(fn, true)
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %w", storage.ErrConflict, err)
	}
	return err
}

// applyTransition mutates the file row for one transition: the new status,
// the matching stage timestamp, the error message, and whichever artifact
// pointers the stage produced.
func applyTransition(file *core.File, t storage.Transition, now time.Time) {
	file.Status = t.To

	switch t.To {
	case core.StatusConversionStarted:
		file.ConversionStartedAt = now
	case core.StatusConversionComplete:
		file.ConversionCompletedAt = now
	case core.StatusParsingStarted:
		file.ParsingStartedAt = now
	case core.StatusParsingComplete:
		file.ParsingCompletedAt = now
	case core.StatusEnrichmentStarted:
		file.EnrichmentStartedAt = now
	case core.StatusEnrichmentComplete:
		file.EnrichmentCompletedAt = now
	case core.StatusChunkingStarted:
		file.ChunkingStartedAt = now
	case core.StatusChunkingComplete:
		file.ChunkingCompletedAt = now
	case core.StatusEmbeddingStarted:
		file.EmbeddingStartedAt = now
	case core.StatusEmbeddingComplete:
		file.EmbeddingCompletedAt = now
	}

	if t.ErrorMessage != "" {
		file.LastError = t.ErrorMessage
	}
	if t.ConvertedPath != nil {
		file.ConvertedPath = *t.ConvertedPath
	}
	if t.Converted != nil {
		file.Converted = *t.Converted
	}
	if t.EnrichedPath != nil {
		file.EnrichedPath = *t.EnrichedPath
	}
	if t.EmbeddingPath != nil {
		file.EmbeddingPath = *t.EmbeddingPath
	}
	if t.TotalChunks != nil {
		file.TotalChunks = *t.TotalChunks
	}
}

// deleteByPrefix removes every key under the given prefix in the current
// transaction.
func deleteByPrefix(tx *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
