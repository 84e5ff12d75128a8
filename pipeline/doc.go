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


// Package pipeline orchestrates the document ingestion pipeline.
//
// A file moves through the stages convert -> parse -> enrich -> chunk ->
// embed -> ready, with conversion skipped for formats the parser reads
// directly and enrichment running best-effort. Each stage reads its input
// artifact from blob storage, does its work, writes its output artifact, and
// records the outcome on the file's status row.
//
// # Concurrency Contract
//
// The status row is the mutual-exclusion token. A worker claims a stage by
// compare-and-set from the file's current status to the stage's *_STARTED
// status; exactly one concurrent claimant wins, losers observe a conflict
// and stop without writing anything. Stage outputs land on deterministic
// blob keys and chunk rows are replaced wholesale, so a re-run of any stage
// is idempotent.
//
// # Failure Handling
//
// Errors are classified before they are recorded: transient service and
// storage errors are retried with exponential backoff up to the policy cap,
// validation and permanent service errors fail the stage immediately,
// conflicts and tombstones end the attempt silently. A failed required
// stage parks the file in its terminal *_FAILED status; a failed enrichment
// records the error and proceeds to chunking with empty headers.
//
// # Recovery
//
// Recover sweeps every *_STARTED status and re-dispatches the files found
// there. The state machine permits re-entering the same *_STARTED status,
// so a file abandoned by a crashed worker is re-claimed through the normal
// compare-and-set path.
package pipeline
