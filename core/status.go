package core

// FileStatus tracks where a file is in the processing pipeline. The status
// row doubles as the mutual-exclusion token for workers: every transition is
// a compare-and-set against the persisted value.
type FileStatus string

const (
	StatusUploading          FileStatus = "uploading"
	StatusUploaded           FileStatus = "uploaded"
	StatusUploadFailed       FileStatus = "upload_failed"
	StatusConversionStarted  FileStatus = "conversion_started"
	StatusConversionComplete FileStatus = "conversion_complete"
	StatusConversionFailed   FileStatus = "conversion_failed"
	StatusParsingStarted     FileStatus = "parsing_started"
	StatusParsingComplete    FileStatus = "parsing_complete"
	StatusParsingFailed      FileStatus = "parsing_failed"
	StatusEnrichmentStarted  FileStatus = "enrichment_started"
	StatusEnrichmentComplete FileStatus = "enrichment_complete"
	StatusEnrichmentFailed   FileStatus = "enrichment_failed"
	StatusChunkingStarted    FileStatus = "chunking_started"
	StatusChunkingComplete   FileStatus = "chunking_complete"
	StatusChunkingFailed     FileStatus = "chunking_failed"
	StatusEmbeddingStarted   FileStatus = "embedding_started"
	StatusEmbeddingComplete  FileStatus = "embedding_complete"
	StatusEmbeddingFailed    FileStatus = "embedding_failed"
	StatusReady              FileStatus = "ready"
)

// transitions is the adjacency table of the pipeline state machine.
//
// Two rules are deliberate asymmetries:
//   - uploaded feeds parsing_started directly when conversion is skipped.
//   - enrichment_failed is not terminal; it feeds chunking_started like
//     enrichment_complete does. Enrichment is best-effort, every other
//     stage is required.
var transitions = map[FileStatus][]FileStatus{
	StatusUploading:          {StatusUploaded, StatusUploadFailed},
	StatusUploaded:           {StatusConversionStarted, StatusParsingStarted},
	StatusConversionStarted:  {StatusConversionComplete, StatusConversionFailed},
	StatusConversionComplete: {StatusParsingStarted},
	StatusParsingStarted:     {StatusParsingComplete, StatusParsingFailed},
	StatusParsingComplete:    {StatusEnrichmentStarted, StatusChunkingStarted},
	StatusEnrichmentStarted:  {StatusEnrichmentComplete, StatusEnrichmentFailed},
	StatusEnrichmentComplete: {StatusChunkingStarted},
	StatusEnrichmentFailed:   {StatusChunkingStarted},
	StatusChunkingStarted:    {StatusChunkingComplete, StatusChunkingFailed},
	StatusChunkingComplete:   {StatusEmbeddingStarted},
	StatusEmbeddingStarted:   {StatusEmbeddingComplete, StatusEmbeddingFailed},
	StatusEmbeddingComplete:  {StatusReady},
}

// CanTransition reports whether the state machine permits moving from one
// status to another. Re-entering the same *_STARTED state is permitted so a
// recovery sweep can re-claim files abandoned mid-stage.
func CanTransition(from, to FileStatus) bool {
	if from == to && from.IsStarted() {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s is a terminal status: the pipeline never
// leaves it. enrichment_failed is deliberately not terminal.
func (s FileStatus) IsTerminal() bool {
	switch s {
	case StatusUploadFailed, StatusConversionFailed, StatusParsingFailed,
		StatusChunkingFailed, StatusEmbeddingFailed, StatusReady:
		return true
	}
	return false
}

// IsStarted reports whether s marks a stage attempt in flight.
func (s FileStatus) IsStarted() bool {
	switch s {
	case StatusConversionStarted, StatusParsingStarted, StatusEnrichmentStarted,
		StatusChunkingStarted, StatusEmbeddingStarted:
		return true
	}
	return false
}

// Valid reports whether s is a known status value.
func (s FileStatus) Valid() bool {
	if s.IsTerminal() {
		return true
	}
	_, ok := transitions[s]
	return ok
}

// Stage identifies one pipeline step with its own started/complete/failed
// states.
type Stage string

const (
	StageConversion Stage = "conversion"
	StageParsing    Stage = "parsing"
	StageEnrichment Stage = "enrichment"
	StageChunking   Stage = "chunking"
	StageEmbedding  Stage = "embedding"
)

// Started returns the in-flight status for the stage.
func (st Stage) Started() FileStatus {
	return FileStatus(string(st) + "_started")
}

// Complete returns the success status for the stage.
func (st Stage) Complete() FileStatus {
	return FileStatus(string(st) + "_complete")
}

// Failed returns the failure status for the stage.
func (st Stage) Failed() FileStatus {
	return FileStatus(string(st) + "_failed")
}
