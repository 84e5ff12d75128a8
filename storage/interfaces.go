package storage

import (
	"context"
	"time"

	"github.com/poiesic/doctwin/core"
)

// Transition describes one atomic status change of a file. Everything in it
// is applied in the same write as the compare-and-set, so a crash between a
// stage finishing and the next stage dispatching leaves a consistent row.
type Transition struct {
	From core.FileStatus
	To   core.FileStatus

	// ErrorMessage records the most recent stage error verbatim. Applied
	// whenever non-empty, including on soft-fail transitions.
	ErrorMessage string

	// Artifact pointer updates, applied when non-nil.
	ConvertedPath *string
	EnrichedPath  *string
	EmbeddingPath *string
	Converted     *bool
	TotalChunks   *int
}

// FileRepository persists file rows and enforces the pipeline's concurrency
// contract. Implementations must be thread-safe.
type FileRepository interface {
	// CreateFile stores a new file row. The file is validated first.
	CreateFile(ctx context.Context, file *core.File) error

	// GetFile retrieves a file by ID. Returns ErrNotFound if absent or
	// tombstoned.
	GetFile(ctx context.Context, id string) (*core.File, error)

	// ListFilesByProject returns one page of a project's files, newest
	// first. page is 1-indexed.
	ListFilesByProject(ctx context.Context, projectID string, page, pageSize int) ([]*core.File, error)

	// ListFilesByStatus returns files currently in the given status, used
	// by the recovery sweep to re-drive abandoned *_STARTED files.
	ListFilesByStatus(ctx context.Context, status core.FileStatus) ([]*core.File, error)

	// TransitionStatus atomically applies t if and only if the stored
	// status equals t.From and the state machine allows t.From -> t.To.
	// Stage timestamps matching t.To are set to now.
	//
	// Returns ErrConflict if the stored status differs (the caller lost
	// the claim race), ErrTombstoned if the file was deleted while the
	// caller was working, core.ErrInvalidTransition if the machine forbids
	// the move, ErrNotFound if the row is gone.
	TransitionStatus(ctx context.Context, id string, t Transition) (*core.File, error)

	// DeleteFile tombstones the file and removes its chunk rows. The row
	// itself is kept so in-flight workers observe the tombstone instead of
	// resurrecting the file. Blob cascade is the caller's job.
	DeleteFile(ctx context.Context, id string) error

	// Close releases resources held by the repository.
	Close() error
}

// ChunkRepository persists chunk rows. Chunk text never lives here; rows
// hold blob references and provenance only.
type ChunkRepository interface {
	// ReplaceChunks atomically replaces the full chunk sequence of a file.
	// Replacement, not append, is what keeps chunking re-runs idempotent.
	ReplaceChunks(ctx context.Context, fileID string, chunks []*core.Chunk) error

	// GetChunks returns a file's chunks ordered by index.
	GetChunks(ctx context.Context, fileID string) ([]*core.Chunk, error)

	// SetVectorIDs records the vector ids returned by the embedding
	// collaborator, keyed by chunk index.
	SetVectorIDs(ctx context.Context, fileID string, vectorIDs map[int]string) error

	// DeleteChunks removes all chunk rows of a file.
	DeleteChunks(ctx context.Context, fileID string) error

	// Close releases resources held by the repository.
	Close() error
}

// BlobStore is the byte-oriented artifact store keyed by the addressing
// scheme in this package. Put overwrites: stage outputs land on
// deterministic keys, so re-running a stage rewrites the same artifact
// instead of appending a duplicate.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every blob under the given prefix. Used for the
	// per-file cascade on delete.
	DeletePrefix(ctx context.Context, prefix string) error
}

// FileListing is a status-surface view of a file row.
type FileListing struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Status    core.FileStatus `json:"status"`
	Size      int64           `json:"size"`
	CreatedAt time.Time       `json:"created_at"`
}
