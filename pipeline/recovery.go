package pipeline

import (
	"context"

	"github.com/poiesic/doctwin/core"
)

// startedStatuses are the in-flight statuses the recovery sweep re-drives.
var startedStatuses = []core.FileStatus{
	core.StatusConversionStarted,
	core.StatusParsingStarted,
	core.StatusEnrichmentStarted,
	core.StatusChunkingStarted,
	core.StatusEmbeddingStarted,
}

// Recover re-dispatches every file stuck in a *_STARTED status, typically
// after a crash or restart. Re-claiming is a self-transition on the same
// *_STARTED status; if the original worker turns out to be alive, the two
// attempts race on the completion compare-and-set and the loser abandons
// its write. Stage outputs land on deterministic keys, so the duplicate
// work is wasted, not harmful.
//
// Returns the number of files re-dispatched.
func (p *Pipeline) Recover(ctx context.Context) (int, error) {
	recovered := 0
	for _, status := range startedStatuses {
		files, err := p.files.ListFilesByStatus(ctx, status)
		if err != nil {
			return recovered, err
		}
		for _, file := range files {
			if err := p.Dispatch(ctx, file.ID); err != nil {
				p.logger.Error("recovery dispatch failed",
					"file_id", file.ID,
					"status", status,
					"err", err)
				continue
			}
			p.logger.Info("recovered in-flight file",
				"file_id", file.ID,
				"status", status)
			recovered++
		}
	}
	return recovered, nil
}
