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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates an EnrichedDocument failed validation.
	ErrInvalidDocument = errors.New("invalid enriched document")

	// ErrInvalidFile indicates a File failed validation.
	ErrInvalidFile = errors.New("invalid file")

	// ErrMissingPage indicates a section references a page with no PageInfo entry.
	ErrMissingPage = errors.New("section references missing page")

	// ErrBadViewport indicates a viewport does not have exactly 8 components.
	ErrBadViewport = errors.New("viewport must have exactly 8 components")

	// ErrNegativeOffset indicates a section offset is negative.
	ErrNegativeOffset = errors.New("section offset cannot be negative")

	// ErrBadSectionType indicates an unknown section type.
	ErrBadSectionType = errors.New("unknown section type")

	// ErrBadTableShape indicates a table section with row or column count below 1.
	ErrBadTableShape = errors.New("table requires row and column counts of at least 1")

	// ErrPartialHeaders indicates a SemanticHeaders block missing required fields.
	// Headers are all-or-nothing: absent entirely, or fully populated.
	ErrPartialHeaders = errors.New("partial semantic headers")

	// ErrBadPageInfo indicates page dimensions that are not positive.
	ErrBadPageInfo = errors.New("page dimensions must be positive")

	// ErrInvalidStatus indicates an unknown file status value.
	ErrInvalidStatus = errors.New("invalid file status")

	// ErrInvalidTransition indicates a status transition the state machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
)
