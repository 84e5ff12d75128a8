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

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/doctwin/core"
)

// Row serialization is JSON: file and chunk rows embed the same structures
// that the JSON artifacts carry, and keeping one codec for both removes a
// whole class of drift between the row store and the artifact store.

// MarshalFile serializes a File row to bytes.
func MarshalFile(file *core.File) ([]byte, error) {
	data, err := json.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("%w: file %s: %w", ErrSerializationFailed, file.ID, err)
	}
	return data, nil
}

// UnmarshalFile deserializes a File row from bytes.
func UnmarshalFile(data []byte) (*core.File, error) {
	var file core.File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &file, nil
}

// MarshalChunk serializes a Chunk row to bytes.
func MarshalChunk(chunk *core.Chunk) ([]byte, error) {
	data, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk %d of %s: %w", ErrSerializationFailed, chunk.Index, chunk.FileID, err)
	}
	return data, nil
}

// UnmarshalChunk deserializes a Chunk row from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	var chunk core.Chunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &chunk, nil
}
