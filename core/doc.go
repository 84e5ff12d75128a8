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


// Package core defines the domain model for doctwin: files moving through
// the ingestion pipeline, the enriched-document digital twin produced by
// parsing, and the chunks derived from it.
//
// The package is pure data plus validation. It performs no I/O; persistence
// lives in the storage packages and orchestration in the pipeline package.
//
// # File lifecycle
//
// A File is created on upload and driven through conversion, parsing,
// optional enrichment, chunking and embedding by the pipeline orchestrator.
// FileStatus is both the progress record and the mutual-exclusion token
// workers compare-and-set to claim a stage.
//
// # Enriched documents
//
// EnrichedDocument is the canonical intermediate representation every stage
// reads and writes: ordered sections with 8-number viewport polygons, page
// geometry, optional semantic headers, and immutable technical metadata.
// ValidateDocument guards the artifact boundary; MarshalDocument refuses to
// serialize anything invalid.
package core
