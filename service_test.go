package doctwin

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/doctwin/ai/mock"
	"github.com/poiesic/doctwin/chunker"
	"github.com/poiesic/doctwin/core"
	"github.com/poiesic/doctwin/pipeline"
	"github.com/poiesic/doctwin/storage"
)

// wordTokenizer counts whitespace-separated words.
type wordTokenizer struct{}

func (wordTokenizer) Count(text string) int {
	return len(strings.Fields(text))
}

func (wordTokenizer) Tail(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[len(words)-n:], " ")
}

func setupService(t *testing.T) (*Service, *mock.MockIndex) {
	t.Helper()

	index := mock.NewMockIndex()
	svc, err := NewService("",
		WithInMemory(),
		WithProvider(mock.NewMockProvider()),
		WithAnalyzer(mock.NewMockAnalyzer()),
		WithVectorIndex(index),
		WithTokenizer(wordTokenizer{}),
		WithPipelineOptions(
			pipeline.WithPoolSize(2),
			pipeline.WithRetryPolicy(pipeline.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}),
			pipeline.WithChunkConfig(chunker.Config{ChunkSize: 50, Overlap: 5}),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc, index
}

func upload(t *testing.T, svc *Service, filename string, data []byte) *core.File {
	t.Helper()
	file, err := svc.Upload(context.Background(), UploadRequest{
		TenantID:  "tenant-1",
		ProjectID: "project-1",
		Filename:  filename,
		MimeType:  "application/octet-stream",
		Data:      data,
	})
	require.NoError(t, err)
	return file
}

func waitReady(t *testing.T, svc *Service, fileID string) *core.File {
	t.Helper()
	var got *core.File
	require.Eventually(t, func() bool {
		file, err := svc.GetFile(context.Background(), fileID)
		if err != nil {
			return false
		}
		got = file
		return file.Status == core.StatusReady
	}, 5*time.Second, 10*time.Millisecond)
	return got
}

func TestUploadRunsToReady(t *testing.T) {
	svc, index := setupService(t)
	ctx := context.Background()

	file := upload(t, svc, "report.pdf", []byte("First line of the report.\nSecond line with more words."))
	assert.Equal(t, "report.pdf", file.Name)
	assert.NotEmpty(t, file.Checksum)
	assert.NotEmpty(t, file.RawPath)

	ok, err := svc.BlobStore().Exists(ctx, file.RawPath)
	require.NoError(t, err)
	assert.True(t, ok)

	got := waitReady(t, svc, file.ID)
	assert.Greater(t, got.TotalChunks, 0)
	assert.Equal(t, got.TotalChunks, index.Len())
}

func TestUploadChecksumIsDeterministic(t *testing.T) {
	svc, _ := setupService(t)

	a := upload(t, svc, "a.pdf", []byte("same bytes"))
	b := upload(t, svc, "b.pdf", []byte("same bytes"))
	c := upload(t, svc, "c.pdf", []byte("different bytes"))

	assert.Equal(t, a.Checksum, b.Checksum)
	assert.NotEqual(t, a.Checksum, c.Checksum)
}

func TestListFiles(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	first := upload(t, svc, "first.pdf", []byte("one"))
	second := upload(t, svc, "second.pdf", []byte("two"))

	listings, err := svc.ListFiles(ctx, "project-1", 1, 10)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	// Newest first.
	assert.Equal(t, second.ID, listings[0].ID)
	assert.Equal(t, first.ID, listings[1].ID)
	assert.NotEmpty(t, listings[0].Status)

	empty, err := svc.ListFiles(ctx, "project-other", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteCascades(t *testing.T) {
	svc, index := setupService(t)
	ctx := context.Background()

	file := upload(t, svc, "report.pdf", []byte("Content destined for deletion."))
	waitReady(t, svc, file.ID)
	require.Greater(t, index.Len(), 0)

	require.NoError(t, svc.Delete(ctx, file.ID))

	_, err := svc.GetFile(ctx, file.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	chunks, err := svc.ChunkRepository().GetChunks(ctx, file.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	ok, err := svc.BlobStore().Exists(ctx, file.RawPath)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, index.Len())
}

func TestDeleteMissingFile(t *testing.T) {
	svc, _ := setupService(t)

	err := svc.Delete(context.Background(), "no-such-file")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNewServiceRequiresAnalyzer(t *testing.T) {
	_, err := NewService("",
		WithInMemory(),
		WithProvider(mock.NewMockProvider()),
		WithTokenizer(wordTokenizer{}),
	)
	assert.ErrorIs(t, err, pipeline.ErrAnalyzerRequired)
}
