package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/doctwin/ai"
	"github.com/poiesic/doctwin/storage"
)

const vectorRecordPrefix = "vecrec"

// makeVectorKey generates a key for an embedding vector by id.
func makeVectorKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", vectorRecordPrefix, id))
}

// VectorIndex implements ai.VectorIndex on BadgerDB. Vectors are stored as
// raw little-endian float32 rows keyed by vector id, which is enough for an
// embedded deployment that serves similarity queries out of process memory.
type VectorIndex struct {
	backend *Backend
}

var _ ai.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates a new VectorIndex.
func NewVectorIndex(backend *Backend) (*VectorIndex, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &VectorIndex{backend: backend}, nil
}

// Close is a no-op; the backend owns the database lifecycle.
func (x *VectorIndex) Close() error {
	return nil
}

// Upsert writes vectors under the given ids, overwriting existing entries.
func (x *VectorIndex) Upsert(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("%w: %d ids for %d vectors", storage.ErrStorage, len(ids), len(vectors))
	}
	return x.backend.WithTx(func(tx *badger.Txn) error {
		for i, id := range ids {
			if err := tx.Set(makeVectorKey(id), encodeVector(vectors[i])); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Remove deletes vectors by id. Missing ids are ignored.
func (x *VectorIndex) Remove(ctx context.Context, ids []string) error {
	return x.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeVectorKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Vector returns a stored vector by id.
func (x *VectorIndex) Vector(ctx context.Context, id string) ([]float32, error) {
	var vector []float32
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVectorKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: vector %s", storage.ErrNotFound, id)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			vector, err = decodeVector(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return vector, nil
}

func encodeVector(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: malformed vector row of %d bytes", storage.ErrStorage, len(data))
	}
	vector := make([]float32, len(data)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return vector, nil
}
