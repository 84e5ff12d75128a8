// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package doctwin

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/doctwin/ai"
	"github.com/poiesic/doctwin/ai/docintel"
	"github.com/poiesic/doctwin/ai/openai"
	"github.com/poiesic/doctwin/chunker"
	"github.com/poiesic/doctwin/core"
	"github.com/poiesic/doctwin/pipeline"
	"github.com/poiesic/doctwin/storage"
	"github.com/poiesic/doctwin/storage/badger"
	"github.com/poiesic/doctwin/storage/blob"
)

// Service wires storage, blobs, AI collaborators and the ingestion pipeline
// into one handle. It is the embedding surface for the HTTP API and the CLI.
type Service struct {
	backend   *badger.Backend
	fileRepo  storage.FileRepository
	chunkRepo storage.ChunkRepository
	blobs     storage.BlobStore
	provider  ai.Provider
	analyzer  ai.LayoutAnalyzer
	index     ai.VectorIndex
	pipeline  *pipeline.Pipeline
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig         *ai.Config
	provider         ai.Provider
	analyzer         ai.LayoutAnalyzer
	index            ai.VectorIndex
	blobs            storage.BlobStore
	tokenizer        chunker.Tokenizer
	docintelEndpoint string
	docintelKey      string
	inMemory         bool
	pipelineOpts     []pipeline.Option
}

// WithAIConfig sets the configuration used for the default OpenAI-compatible
// provider. Ignored when WithProvider is given.
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.aiConfig = config
	}
}

// WithProvider replaces the default AI provider.
func WithProvider(provider ai.Provider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithAnalyzer sets the layout analyzer used by the parsing stage.
func WithAnalyzer(analyzer ai.LayoutAnalyzer) ServiceOption {
	return func(o *serviceOptions) {
		o.analyzer = analyzer
	}
}

// WithDocumentIntelligence configures a document-intelligence layout
// analyzer from service credentials. Ignored when WithAnalyzer is given.
func WithDocumentIntelligence(endpoint, apiKey string) ServiceOption {
	return func(o *serviceOptions) {
		o.docintelEndpoint = endpoint
		o.docintelKey = apiKey
	}
}

// WithVectorIndex replaces the default embedded vector index.
func WithVectorIndex(index ai.VectorIndex) ServiceOption {
	return func(o *serviceOptions) {
		o.index = index
	}
}

// WithBlobStore replaces the default filesystem blob store.
func WithBlobStore(blobs storage.BlobStore) ServiceOption {
	return func(o *serviceOptions) {
		o.blobs = blobs
	}
}

// WithInMemory keeps all state in memory. Intended for tests and throwaway
// environments; nothing survives Close.
func WithInMemory() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// WithTokenizer replaces the default tiktoken tokenizer used for chunk
// sizing.
func WithTokenizer(tokenizer chunker.Tokenizer) ServiceOption {
	return func(o *serviceOptions) {
		o.tokenizer = tokenizer
	}
}

// WithPipelineOptions forwards options to the ingestion pipeline.
func WithPipelineOptions(opts ...pipeline.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// NewService opens the storage layer under dataDir and builds the ingestion
// pipeline. A layout analyzer must come from WithAnalyzer or
// WithDocumentIntelligence; everything else has a default.
func NewService(dataDir string, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	dbPath := filepath.Join(dataDir, "db")
	if options.inMemory {
		dbPath = ""
	}
	backend, err := badger.OpenBackend(dbPath, options.inMemory)
	if err != nil {
		return nil, err
	}

	fileRepo, err := badger.NewFileRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		fileRepo.Close()
		backend.Close()
		return nil, err
	}

	blobs := options.blobs
	if blobs == nil {
		if options.inMemory {
			blobs = blob.NewMemory()
		} else {
			blobs, err = blob.NewFS(filepath.Join(dataDir, "blobs"))
			if err != nil {
				chunkRepo.Close()
				fileRepo.Close()
				backend.Close()
				return nil, err
			}
		}
	}

	index := options.index
	if index == nil {
		index, err = badger.NewVectorIndex(backend)
		if err != nil {
			chunkRepo.Close()
			fileRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			chunkRepo.Close()
			fileRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	analyzer := options.analyzer
	if analyzer == nil && options.docintelEndpoint != "" {
		analyzer, err = docintel.NewClient(options.docintelEndpoint, options.docintelKey)
		if err != nil {
			provider.Close()
			chunkRepo.Close()
			fileRepo.Close()
			backend.Close()
			return nil, err
		}
	}
	if analyzer == nil {
		provider.Close()
		chunkRepo.Close()
		fileRepo.Close()
		backend.Close()
		return nil, pipeline.ErrAnalyzerRequired
	}

	tokenizer := options.tokenizer
	if tokenizer == nil {
		tokenizer, err = chunker.NewDefaultTokenizer()
		if err != nil {
			provider.Close()
			chunkRepo.Close()
			fileRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	pipe, err := pipeline.NewPipeline(fileRepo, chunkRepo, blobs, analyzer, provider, index, tokenizer, options.pipelineOpts...)
	if err != nil {
		provider.Close()
		chunkRepo.Close()
		fileRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Service{
		backend:   backend,
		fileRepo:  fileRepo,
		chunkRepo: chunkRepo,
		blobs:     blobs,
		provider:  provider,
		analyzer:  analyzer,
		index:     index,
		pipeline:  pipe,
		logger:    slog.Default().With("component", "service"),
	}, nil
}

// UploadRequest carries one incoming file.
type UploadRequest struct {
	TenantID  string
	ProjectID string
	Name      string
	Filename  string
	MimeType  string
	Data      []byte
}

// Upload stores the raw bytes, creates the file row and dispatches the first
// pipeline stage. The returned file is in the uploaded status (or
// upload_failed if the blob write failed).
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*core.File, error) {
	name := req.Name
	if name == "" {
		name = req.Filename
	}

	file := &core.File{
		ID:               core.NewFileID(),
		TenantID:         req.TenantID,
		ProjectID:        req.ProjectID,
		Name:             name,
		OriginalFilename: req.Filename,
		Size:             int64(len(req.Data)),
		MimeType:         req.MimeType,
		Checksum:         core.ContentChecksum(req.Data),
		Status:           core.StatusUploading,
	}

	rawPath, err := storage.RawPath(req.TenantID, req.ProjectID, file.ID, req.Filename)
	if err != nil {
		return nil, err
	}
	file.RawPath = rawPath

	if err := s.fileRepo.CreateFile(ctx, file); err != nil {
		return nil, err
	}

	if err := s.blobs.Put(ctx, rawPath, req.Data); err != nil {
		if _, terr := s.fileRepo.TransitionStatus(ctx, file.ID, storage.Transition{
			From:         core.StatusUploading,
			To:           core.StatusUploadFailed,
			ErrorMessage: err.Error(),
		}); terr != nil {
			s.logger.Error("failed to record upload failure", "file_id", file.ID, "err", terr)
		}
		return nil, err
	}

	uploaded, err := s.fileRepo.TransitionStatus(ctx, file.ID, storage.Transition{
		From: core.StatusUploading,
		To:   core.StatusUploaded,
	})
	if err != nil {
		return nil, err
	}

	if err := s.pipeline.Dispatch(ctx, file.ID); err != nil {
		return nil, err
	}
	return uploaded, nil
}

// GetFile retrieves a file row by id.
func (s *Service) GetFile(ctx context.Context, id string) (*core.File, error) {
	return s.fileRepo.GetFile(ctx, id)
}

// ListFiles returns one page of a project's files, newest first.
// page is 1-indexed.
func (s *Service) ListFiles(ctx context.Context, projectID string, page, pageSize int) ([]storage.FileListing, error) {
	files, err := s.fileRepo.ListFilesByProject(ctx, projectID, page, pageSize)
	if err != nil {
		return nil, err
	}
	listings := make([]storage.FileListing, len(files))
	for i, file := range files {
		listings[i] = storage.FileListing{
			ID:        file.ID,
			Name:      file.Name,
			Status:    file.Status,
			Size:      file.Size,
			CreatedAt: file.CreatedAt,
		}
	}
	return listings, nil
}

// Delete tombstones the file, removes its chunks and embedding vectors, and
// cascades the blob prefix. In-flight workers observe the tombstone and stop.
func (s *Service) Delete(ctx context.Context, id string) error {
	file, err := s.fileRepo.GetFile(ctx, id)
	if err != nil {
		return err
	}

	chunks, err := s.chunkRepo.GetChunks(ctx, id)
	if err != nil {
		return err
	}
	var vectorIDs []string
	for _, chunk := range chunks {
		if chunk.VectorID != "" {
			vectorIDs = append(vectorIDs, chunk.VectorID)
		}
	}

	if err := s.fileRepo.DeleteFile(ctx, id); err != nil {
		return err
	}

	if len(vectorIDs) > 0 {
		if err := s.index.Remove(ctx, vectorIDs); err != nil {
			s.logger.Error("failed to remove vectors", "file_id", id, "err", err)
		}
	}

	prefix, err := storage.FilePrefix(file.TenantID, file.ProjectID, file.ID)
	if err != nil {
		return err
	}
	if err := s.blobs.DeletePrefix(ctx, prefix); err != nil {
		s.logger.Error("failed to cascade blobs", "file_id", id, "err", err)
		return err
	}
	return nil
}

// Process drives a file through every remaining stage synchronously.
func (s *Service) Process(ctx context.Context, fileID string) error {
	return s.pipeline.Process(ctx, fileID)
}

// Dispatch queues a file's next stage on the pipeline's worker pools.
func (s *Service) Dispatch(ctx context.Context, fileID string) error {
	return s.pipeline.Dispatch(ctx, fileID)
}

// Recover re-dispatches files abandoned mid-stage by a previous run.
// Returns the number of files re-driven.
func (s *Service) Recover(ctx context.Context) (int, error) {
	return s.pipeline.Recover(ctx)
}

func (s *Service) FileRepository() storage.FileRepository {
	return s.fileRepo
}

func (s *Service) ChunkRepository() storage.ChunkRepository {
	return s.chunkRepo
}

func (s *Service) BlobStore() storage.BlobStore {
	return s.blobs
}

func (s *Service) VectorIndex() ai.VectorIndex {
	return s.index
}

func (s *Service) Pipeline() *pipeline.Pipeline {
	return s.pipeline
}

func (s *Service) Close() error {
	s.pipeline.Release()

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.chunkRepo.Close(); err != nil {
		s.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := s.fileRepo.Close(); err != nil {
		s.logger.Error("error closing file repository", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
