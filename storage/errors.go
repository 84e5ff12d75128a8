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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrConflict indicates a lost compare-and-set race on a status
	// transition. This is not a failure: the losing worker aborts without
	// side effects.
	ErrConflict = errors.New("status transition conflict")

	// ErrTombstoned indicates a write against a deleted file. Completion
	// writes after deletion are dropped; callers treat this as a benign
	// no-op, not a pipeline failure.
	ErrTombstoned = errors.New("file is tombstoned")

	// ErrStorage indicates an I/O failure in a storage backend. Storage
	// errors are retryable under the pipeline's backoff policy.
	ErrStorage = errors.New("storage failure")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrBadKey indicates an artifact key built from invalid components.
	ErrBadKey = errors.New("invalid artifact key component")
)
