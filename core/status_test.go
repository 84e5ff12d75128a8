package core

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from FileStatus
		to   FileStatus
		want bool
	}{
		{"upload completes", StatusUploading, StatusUploaded, true},
		{"upload fails", StatusUploading, StatusUploadFailed, true},
		{"uploaded enters conversion", StatusUploaded, StatusConversionStarted, true},
		{"uploaded skips conversion", StatusUploaded, StatusParsingStarted, true},
		{"conversion completes", StatusConversionStarted, StatusConversionComplete, true},
		{"conversion fails", StatusConversionStarted, StatusConversionFailed, true},
		{"conversion feeds parsing", StatusConversionComplete, StatusParsingStarted, true},
		{"parsing feeds enrichment", StatusParsingComplete, StatusEnrichmentStarted, true},
		{"parsing skips enrichment", StatusParsingComplete, StatusChunkingStarted, true},
		{"enrichment failure feeds chunking", StatusEnrichmentFailed, StatusChunkingStarted, true},
		{"enrichment success feeds chunking", StatusEnrichmentComplete, StatusChunkingStarted, true},
		{"embedding completes", StatusEmbeddingStarted, StatusEmbeddingComplete, true},
		{"embedding complete becomes ready", StatusEmbeddingComplete, StatusReady, true},
		{"started state reclaims itself", StatusParsingStarted, StatusParsingStarted, true},
		{"non-started state cannot self-transition", StatusUploaded, StatusUploaded, false},
		{"no skipping a stage", StatusUploaded, StatusChunkingStarted, false},
		{"no skipping a failed stage", StatusParsingFailed, StatusChunkingStarted, false},
		{"no reverse transition", StatusChunkingComplete, StatusParsingStarted, false},
		{"ready is final", StatusReady, StatusEmbeddingStarted, false},
		{"terminal failure is final", StatusChunkingFailed, StatusChunkingStarted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := []FileStatus{
		StatusUploadFailed, StatusConversionFailed, StatusParsingFailed,
		StatusChunkingFailed, StatusEmbeddingFailed, StatusReady,
	}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}

	// Enrichment is best-effort: its failure must not end the pipeline.
	if StatusEnrichmentFailed.IsTerminal() {
		t.Error("enrichment_failed must not be terminal")
	}

	nonTerminal := []FileStatus{
		StatusUploading, StatusUploaded, StatusConversionStarted,
		StatusParsingStarted, StatusEnrichmentStarted, StatusEnrichmentFailed,
		StatusChunkingStarted, StatusEmbeddingStarted, StatusEmbeddingComplete,
	}
	for _, s := range nonTerminal {
		if s.IsTerminal() {
			t.Errorf("expected %s to be non-terminal", s)
		}
	}
}

func TestStageStatuses(t *testing.T) {
	if got := StageParsing.Started(); got != StatusParsingStarted {
		t.Fatalf("StageParsing.Started() = %s", got)
	}
	if got := StageChunking.Complete(); got != StatusChunkingComplete {
		t.Fatalf("StageChunking.Complete() = %s", got)
	}
	if got := StageEmbedding.Failed(); got != StatusEmbeddingFailed {
		t.Fatalf("StageEmbedding.Failed() = %s", got)
	}

	stages := []Stage{StageConversion, StageParsing, StageEnrichment, StageChunking, StageEmbedding}
	for _, st := range stages {
		if !st.Started().Valid() || !st.Complete().Valid() || !st.Failed().Valid() {
			t.Errorf("stage %s produces an unknown status", st)
		}
	}
}
