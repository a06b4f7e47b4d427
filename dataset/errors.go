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


package dataset

import "errors"

var (
	// ErrNoObjectiveColumn is returned when a CSV has none of the recognized
	// objective column names.
	ErrNoObjectiveColumn = errors.New("no objective column (expected Objective or LO)")

	// ErrNoObjectives is returned when a file contains no non-blank objectives.
	ErrNoObjectives = errors.New("no objectives found")

	// ErrNoIDColumn is returned when a candidate CSV has no note ID column.
	ErrNoIDColumn = errors.New("no note id column (expected id or noteId)")

	// ErrInvalidRow is returned for a candidate row that cannot be parsed.
	ErrInvalidRow = errors.New("invalid candidate row")
)
