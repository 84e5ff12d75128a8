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


package pipeline

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/doctwin/ai"
	"github.com/poiesic/doctwin/chunker"
	"github.com/poiesic/doctwin/core"
	"github.com/poiesic/doctwin/storage"
)

// stages in pipeline order. Each gets its own worker pool so a slow stage
// cannot starve the others.
var stages = []core.Stage{
	core.StageConversion,
	core.StageParsing,
	core.StageEnrichment,
	core.StageChunking,
	core.StageEmbedding,
}

// Pipeline drives files through the ingestion stages. It owns no state
// beyond its collaborators; all progress lives on the files' status rows.
type Pipeline struct {
	files    storage.FileRepository
	chunks   storage.ChunkRepository
	blobs    storage.BlobStore
	analyzer ai.LayoutAnalyzer
	provider ai.Provider
	index    ai.VectorIndex

	converter   Converter
	tokenizer   chunker.Tokenizer
	chunkConfig chunker.Config
	retryPolicy RetryPolicy
	enrichment  bool

	pools  map[core.Stage]*ants.Pool
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size per stage.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		releasePools(p.pools)
		pools, err := newStagePools(size)
		if err != nil {
			return err
		}
		p.pools = pools
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithConverter sets the format converter used by the conversion stage.
// Without one, files that need conversion fail that stage.
func WithConverter(c Converter) Option {
	return func(p *Pipeline) error {
		p.converter = c
		return nil
	}
}

// WithRetryPolicy overrides the transient-failure retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(p *Pipeline) error {
		if policy.MaxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.retryPolicy = policy
		return nil
	}
}

// WithChunkConfig overrides the chunk sizing configuration.
func WithChunkConfig(cfg chunker.Config) Option {
	return func(p *Pipeline) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		p.chunkConfig = cfg
		return nil
	}
}

// WithoutEnrichment disables the semantic enrichment stage; parsed files go
// straight to chunking with empty headers.
func WithoutEnrichment() Option {
	return func(p *Pipeline) error {
		p.enrichment = false
		return nil
	}
}

// NewPipeline creates an ingestion pipeline over the given collaborators.
func NewPipeline(
	files storage.FileRepository,
	chunks storage.ChunkRepository,
	blobs storage.BlobStore,
	analyzer ai.LayoutAnalyzer,
	provider ai.Provider,
	index ai.VectorIndex,
	tokenizer chunker.Tokenizer,
	opts ...Option,
) (*Pipeline, error) {
	if files == nil {
		return nil, ErrFileRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if blobs == nil {
		return nil, ErrBlobStoreRequired
	}
	if analyzer == nil {
		return nil, ErrAnalyzerRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	if tokenizer == nil {
		return nil, ErrTokenizerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pools, err := newStagePools(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		files:       files,
		chunks:      chunks,
		blobs:       blobs,
		analyzer:    analyzer,
		provider:    provider,
		index:       index,
		tokenizer:   tokenizer,
		chunkConfig: chunker.DefaultConfig(),
		retryPolicy: DefaultRetryPolicy(),
		enrichment:  true,
		pools:       pools,
		logger:      slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

func newStagePools(size int) (map[core.Stage]*ants.Pool, error) {
	pools := make(map[core.Stage]*ants.Pool, len(stages))
	for _, stage := range stages {
		pool, err := ants.NewPool(size)
		if err != nil {
			releasePools(pools)
			return nil, err
		}
		pools[stage] = pool
	}
	return pools, nil
}

func releasePools(pools map[core.Stage]*ants.Pool) {
	for _, pool := range pools {
		if pool != nil {
			pool.Release()
		}
	}
}

// stageFor maps a file's status to the stage that should run next.
// A *_STARTED status maps to its own stage so recovery can re-claim it.
func (p *Pipeline) stageFor(file *core.File) (core.Stage, bool) {
	switch file.Status {
	case core.StatusUploaded:
		if NeedsConversion(file.OriginalFilename) {
			return core.StageConversion, true
		}
		return core.StageParsing, true
	case core.StatusConversionStarted:
		return core.StageConversion, true
	case core.StatusConversionComplete:
		return core.StageParsing, true
	case core.StatusParsingStarted:
		return core.StageParsing, true
	case core.StatusParsingComplete:
		if p.enrichment {
			return core.StageEnrichment, true
		}
		return core.StageChunking, true
	case core.StatusEnrichmentStarted:
		return core.StageEnrichment, true
	case core.StatusEnrichmentComplete, core.StatusEnrichmentFailed:
		return core.StageChunking, true
	case core.StatusChunkingStarted:
		return core.StageChunking, true
	case core.StatusChunkingComplete:
		return core.StageEmbedding, true
	case core.StatusEmbeddingStarted:
		return core.StageEmbedding, true
	default:
		return "", false
	}
}

// work returns the stage's work function.
func (p *Pipeline) work(stage core.Stage) func(context.Context, *core.File) (*storage.Transition, error) {
	switch stage {
	case core.StageConversion:
		return p.runConversion
	case core.StageParsing:
		return p.runParsing
	case core.StageEnrichment:
		return p.runEnrichment
	case core.StageChunking:
		return p.runChunking
	case core.StageEmbedding:
		return p.runEmbedding
	default:
		panic("unknown stage " + stage)
	}
}

// runStage claims the stage for the file, does the work with retries, and
// records the outcome. Every error it returns is silent (claim lost, file
// deleted), a context interruption (claim kept for recovery), or a storage
// failure recording the outcome; work failures are absorbed into the file's
// *_FAILED status.
func (p *Pipeline) runStage(ctx context.Context, stage core.Stage, file *core.File) error {
	claimed, err := p.files.TransitionStatus(ctx, file.ID, storage.Transition{
		From: file.Status,
		To:   stage.Started(),
	})
	if err != nil {
		return err
	}

	var result *storage.Transition
	workErr := retryWithBackoff(ctx, p.retryPolicy, func() error {
		r, err := p.work(stage)(ctx, claimed)
		if err != nil {
			return err
		}
		result = r
		return nil
	})

	if workErr != nil {
		if silent(workErr) {
			return workErr
		}
		if interrupted(workErr) {
			// Shutdown mid-stage: leave the claim in place for recovery
			// instead of parking the file in a failed status.
			p.logger.Warn("stage interrupted",
				"file_id", file.ID,
				"stage", stage,
				"err", workErr)
			return workErr
		}
		p.logger.Warn("stage failed",
			"file_id", file.ID,
			"stage", stage,
			"permanent", permanent(workErr),
			"err", workErr)
		_, err := p.files.TransitionStatus(ctx, file.ID, storage.Transition{
			From:         stage.Started(),
			To:           stage.Failed(),
			ErrorMessage: workErr.Error(),
		})
		return err
	}

	completion := *result
	completion.From = stage.Started()
	completion.To = stage.Complete()
	_, err = p.files.TransitionStatus(ctx, file.ID, completion)
	return err
}

// Process drives the file through every remaining stage synchronously,
// ending when the file is ready, parked in a failed status, or claimed by
// another worker. A lost claim or a tombstoned file is not an error.
func (p *Pipeline) Process(ctx context.Context, fileID string) error {
	for {
		file, err := p.files.GetFile(ctx, fileID)
		if err != nil {
			if silent(err) {
				return nil
			}
			return err
		}

		if file.Status == core.StatusEmbeddingComplete {
			_, err := p.files.TransitionStatus(ctx, fileID, storage.Transition{
				From: core.StatusEmbeddingComplete,
				To:   core.StatusReady,
			})
			if err != nil {
				if silent(err) {
					return nil
				}
				return err
			}
			p.logger.Info("file ready", "file_id", fileID)
			return nil
		}

		stage, ok := p.stageFor(file)
		if !ok {
			return nil
		}

		if err := p.runStage(ctx, stage, file); err != nil {
			if silent(err) {
				return nil
			}
			return err
		}
	}
}

// Dispatch runs the file's next stage on that stage's worker pool and
// chains follow-up stages asynchronously. It returns once the work is
// queued; errors during async processing are logged, recorded on the file,
// or both.
func (p *Pipeline) Dispatch(ctx context.Context, fileID string) error {
	file, err := p.files.GetFile(ctx, fileID)
	if err != nil {
		if silent(err) {
			return nil
		}
		return err
	}

	if file.Status == core.StatusEmbeddingComplete {
		_, err := p.files.TransitionStatus(ctx, fileID, storage.Transition{
			From: core.StatusEmbeddingComplete,
			To:   core.StatusReady,
		})
		if err != nil && !silent(err) {
			return err
		}
		if err == nil {
			p.logger.Info("file ready", "file_id", fileID)
		}
		return nil
	}

	stage, ok := p.stageFor(file)
	if !ok {
		return nil
	}

	return p.pools[stage].Submit(func() {
		ctx := context.Background()
		if err := p.runStage(ctx, stage, file); err != nil {
			if !silent(err) {
				p.logger.Error("stage error", "file_id", fileID, "stage", stage, "err", err)
			}
			return
		}
		if err := p.Dispatch(ctx, fileID); err != nil {
			p.logger.Error("dispatch error", "file_id", fileID, "err", err)
		}
	})
}

// Release releases the stage worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	releasePools(p.pools)
}
