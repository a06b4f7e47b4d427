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

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable indicates no embedding backend could be used.
	// Callers fall back to lexical-only matching when they see it.
	ErrBackendUnavailable = errors.New("embedding backend unavailable")

	// ErrInvalidSelectionInput indicates interactive input that could not be
	// parsed or was out of bounds for the shortlist.
	ErrInvalidSelectionInput = errors.New("invalid selection input")

	// ErrEmptyPool indicates the candidate pool has no candidates.
	ErrEmptyPool = errors.New("candidate pool is empty")

	// ErrMutationFailure indicates the external note store rejected a batch call.
	ErrMutationFailure = errors.New("mutation failed")

	// ErrTerminationRequested signals a user-issued quit. It is a clean stop,
	// not a failure.
	ErrTerminationRequested = errors.New("termination requested")

	// ErrInvalidCandidate indicates a Candidate failed validation.
	ErrInvalidCandidate = errors.New("invalid candidate")

	// ErrEmptyCandidateText indicates a candidate has no text to match against.
	ErrEmptyCandidateText = errors.New("candidate text cannot be empty")

	// ErrDuplicateCandidate indicates two candidates in one pool share an ID.
	ErrDuplicateCandidate = errors.New("duplicate candidate id")
)

// MutationError reports a failed batch call against the note store together
// with the candidate IDs that were part of the batch.
type MutationError struct {
	Op  string
	IDs []int64
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s failed for %d notes %v: %v", e.Op, len(e.IDs), e.IDs, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is.
func (e *MutationError) Unwrap() []error {
	return []error{ErrMutationFailure, e.Err}
}
