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


// Package docintel implements ai.LayoutAnalyzer against a document
// intelligence HTTP service with an asynchronous analyze/poll protocol.
//
// The client submits document bytes to the service's layout model, receives
// an operation URL, and polls it until the analysis succeeds, fails, or the
// polling timeout expires. Requests are throttled with a token bucket so
// concurrent pipeline workers do not exhaust the service's rate limits.
//
// Transport and service failures are mapped onto the ai package's sentinel
// errors: ErrUnsupportedFormat for inputs the service permanently rejects,
// ErrServiceUnavailable for rate limits, timeouts and 5xx responses, and
// ErrBadResponse for payloads that cannot be decoded.
package docintel
