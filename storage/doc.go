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


// Package storage provides the storage abstraction layer for doctwin.
//
// It defines two independent stores and the addressing scheme that ties
// them together:
//
//   - FileRepository / ChunkRepository: the row store holding file status
//     rows and chunk provenance rows. The BadgerDB implementation lives in
//     the badger subpackage.
//   - BlobStore: the byte-oriented artifact store holding raw uploads,
//     converted files, enriched-document JSON, chunk texts and embedding
//     manifests. Implementations live in the blob subpackage.
//   - ArtifactPath and friends: the deterministic key scheme
//     {tenant}/{project}/{file}/{kind}/{name} every stage uses to read its
//     input and write its output.
//
// # Constructor Return Type Pattern
//
// Public constructors in the implementation subpackages return the
// interfaces defined here, so consumers never couple to BadgerDB or the
// filesystem layout.
//
// # Concurrency Contract
//
// FileRepository.TransitionStatus is the single synchronization point of
// the pipeline: a worker claims a (file, stage) pair by compare-and-setting
// the status row into the stage's *_STARTED state. A lost race surfaces as
// ErrConflict and the losing worker must abort without side effects. A
// deleted file surfaces as ErrTombstoned and the write is dropped.
//
// All implementations must be safe for concurrent use.
package storage
