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


// Package chunker splits enriched documents into token-bounded pieces for
// embedding.
//
// The splitter is a pure function over an EnrichedDocument: no I/O, no
// randomness, the same document and configuration always produce the same
// pieces. Sizing is token-based through the Tokenizer interface; production
// code uses the tiktoken-backed tokenizer, tests substitute cheaper ones.
//
// # Splitting Rules
//
//   - Sections are consumed in document reading order.
//   - A table section is never split across pieces. A table whose token
//     count alone exceeds the budget becomes its own oversized piece.
//   - A paragraph that alone exceeds the budget is split at sentence
//     boundaries only; a single sentence over the budget becomes its own
//     oversized piece.
//   - When a piece is closed because the next section would not fit, the
//     last Overlap tokens of its text seed the next piece so retrieval
//     context carries across the boundary.
//
// Each piece carries aggregated provenance: the indices of the sections it
// covers, the pages they appear on, the combined bounding region, and
// whether any table content is present.
package chunker
