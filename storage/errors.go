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
	// ErrNotFound is returned when a session or cached vector does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStorageClosed is returned by a backend after Close.
	ErrStorageClosed = errors.New("storage closed")

	// ErrInvalidQuery is returned for a missing session ID or other bad
	// repository arguments.
	ErrInvalidQuery = errors.New("invalid repository arguments")

	// ErrSerializationFailed wraps any codec failure for vectors or decision rows.
	ErrSerializationFailed = errors.New("codec failure")

	// ErrTruncatedData is returned when an encoded value ends early.
	ErrTruncatedData = errors.New("encoded value truncated")
)
