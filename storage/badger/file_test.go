package badger

import (
	"context"
	"sync"
	"testing"

	"github.com/poiesic/doctwin/core"
	"github.com/poiesic/doctwin/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFileRepo(t *testing.T) storage.FileRepository {
	fileRepo, chunkRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		chunkRepo.Close()
		fileRepo.Close()
		backend.Close()
	})
	return fileRepo
}

func newTestFile(project string) *core.File {
	return &core.File{
		ID:               core.NewFileID(),
		TenantID:         "acme",
		ProjectID:        project,
		Name:             "report",
		OriginalFilename: "report.pdf",
		Size:             2048,
		MimeType:         "application/pdf",
		Status:           core.StatusUploaded,
		RawPath:          "acme/" + project + "/x/raw/report.pdf",
	}
}

func TestCreateAndGetFile(t *testing.T) {
	repo := setupFileRepo(t)
	ctx := context.Background()

	file := newTestFile("proj-1")
	require.NoError(t, repo.CreateFile(ctx, file))

	got, err := repo.GetFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.ID, got.ID)
	assert.Equal(t, core.StatusUploaded, got.Status)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repo.GetFile(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Duplicate IDs are rejected.
	err = repo.CreateFile(ctx, file)
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestCreateFileInvalid(t *testing.T) {
	repo := setupFileRepo(t)

	file := newTestFile("proj-1")
	file.TenantID = ""
	err := repo.CreateFile(context.Background(), file)
	assert.ErrorIs(t, err, core.ErrInvalidFile)
}

func TestTransitionStatus(t *testing.T) {
	repo := setupFileRepo(t)
	ctx := context.Background()

	file := newTestFile("proj-1")
	require.NoError(t, repo.CreateFile(ctx, file))

	updated, err := repo.TransitionStatus(ctx, file.ID, storage.Transition{
		From: core.StatusUploaded,
		To:   core.StatusParsingStarted,
	})
	require.NoError(t, err)
	assert.Equal(t, core.StatusParsingStarted, updated.Status)
	assert.False(t, updated.ParsingStartedAt.IsZero())

	enriched := "acme/proj-1/" + file.ID + "/enriched/document.json"
	updated, err = repo.TransitionStatus(ctx, file.ID, storage.Transition{
		From:         core.StatusParsingStarted,
		To:           core.StatusParsingComplete,
		EnrichedPath: &enriched,
	})
	require.NoError(t, err)
	assert.Equal(t, core.StatusParsingComplete, updated.Status)
	assert.Equal(t, enriched, updated.EnrichedPath)
	assert.False(t, updated.ParsingCompletedAt.IsZero())
}

func TestTransitionStatusConflict(t *testing.T) {
	repo := setupFileRepo(t)
	ctx := context.Background()

	file := newTestFile("proj-1")
	require.NoError(t, repo.CreateFile(ctx, file))

	// Stored status is uploaded; claiming from parsing_complete loses.
	_, err := repo.TransitionStatus(ctx, file.ID, storage.Transition{
		From: core.StatusParsingComplete,
		To:   core.StatusChunkingStarted,
	})
	assert.ErrorIs(t, err, storage.ErrConflict)

	// A losing claim performs no writes.
	got, err := repo.GetFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusUploaded, got.Status)
}

func TestTransitionStatusInvalid(t *testing.T) {
	repo := setupFileRepo(t)
	ctx := context.Background()

	file := newTestFile("proj-1")
	require.NoError(t, repo.CreateFile(ctx, file))

	_, err := repo.TransitionStatus(ctx, file.ID, storage.Transition{
		From: core.StatusUploaded,
		To:   core.StatusChunkingStarted,
	})
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
}

func TestTransitionStatusRace(t *testing.T) {
	repo := setupFileRepo(t)
	ctx := context.Background()

	file := newTestFile("proj-1")
	require.NoError(t, repo.CreateFile(ctx, file))

	// Two workers race to claim the same stage; exactly one CAS wins.
	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.TransitionStatus(ctx, file.ID, storage.Transition{
				From: core.StatusUploaded,
				To:   core.StatusParsingStarted,
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, storage.ErrConflict)
		}
	}
	assert.Equal(t, 1, wins, "exactly one worker must win the claim")

	got, err := repo.GetFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusParsingStarted, got.Status)
}

func TestTransitionAfterTombstone(t *testing.T) {
	repo := setupFileRepo(t)
	ctx := context.Background()

	file := newTestFile("proj-1")
	require.NoError(t, repo.CreateFile(ctx, file))

	_, err := repo.TransitionStatus(ctx, file.ID, storage.Transition{
		From: core.StatusUploaded,
		To:   core.StatusParsingStarted,
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteFile(ctx, file.ID))

	// A worker finishing after deletion must have its write rejected.
	_, err = repo.TransitionStatus(ctx, file.ID, storage.Transition{
		From: core.StatusParsingStarted,
		To:   core.StatusParsingComplete,
	})
	assert.ErrorIs(t, err, storage.ErrTombstoned)

	_, err = repo.GetFile(ctx, file.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSelfTransitionReclaim(t *testing.T) {
	repo := setupFileRepo(t)
	ctx := context.Background()

	file := newTestFile("proj-1")
	require.NoError(t, repo.CreateFile(ctx, file))

	_, err := repo.TransitionStatus(ctx, file.ID, storage.Transition{
		From: core.StatusUploaded,
		To:   core.StatusParsingStarted,
	})
	require.NoError(t, err)

	// A recovery sweep re-claims a file abandoned mid-stage.
	_, err = repo.TransitionStatus(ctx, file.ID, storage.Transition{
		From: core.StatusParsingStarted,
		To:   core.StatusParsingStarted,
	})
	assert.NoError(t, err)
}

func TestListFilesByProject(t *testing.T) {
	repo := setupFileRepo(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		file := newTestFile("proj-1")
		require.NoError(t, repo.CreateFile(ctx, file))
		ids = append(ids, file.ID)
	}
	other := newTestFile("proj-2")
	require.NoError(t, repo.CreateFile(ctx, other))

	page1, err := repo.ListFilesByProject(ctx, "proj-1", 1, 3)
	require.NoError(t, err)
	assert.Len(t, page1, 3)

	page2, err := repo.ListFilesByProject(ctx, "proj-1", 2, 3)
	require.NoError(t, err)
	assert.Len(t, page2, 2)

	seen := map[string]bool{}
	for _, f := range append(page1, page2...) {
		assert.Equal(t, "proj-1", f.ProjectID)
		seen[f.ID] = true
	}
	for _, id := range ids {
		assert.True(t, seen[id], "file %s missing from listing", id)
	}
}

func TestListFilesByStatus(t *testing.T) {
	repo := setupFileRepo(t)
	ctx := context.Background()

	stuck := newTestFile("proj-1")
	require.NoError(t, repo.CreateFile(ctx, stuck))
	_, err := repo.TransitionStatus(ctx, stuck.ID, storage.Transition{
		From: core.StatusUploaded,
		To:   core.StatusParsingStarted,
	})
	require.NoError(t, err)

	idle := newTestFile("proj-1")
	require.NoError(t, repo.CreateFile(ctx, idle))

	inFlight, err := repo.ListFilesByStatus(ctx, core.StatusParsingStarted)
	require.NoError(t, err)
	require.Len(t, inFlight, 1)
	assert.Equal(t, stuck.ID, inFlight[0].ID)
}
