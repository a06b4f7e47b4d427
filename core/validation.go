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
	"fmt"
	"strings"
)

func ValidateCandidate(c *Candidate) error {
	if c == nil {
		return fmt.Errorf("%w: candidate is nil", ErrInvalidCandidate)
	}

	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("%w: id %d: %w", ErrInvalidCandidate, c.ID, ErrEmptyCandidateText)
	}

	return nil
}

// ValidatePool checks every candidate and rejects duplicate IDs.
func ValidatePool(pool []Candidate) error {
	if len(pool) == 0 {
		return ErrEmptyPool
	}

	seen := make(map[int64]struct{}, len(pool))
	for i := range pool {
		if err := ValidateCandidate(&pool[i]); err != nil {
			return err
		}
		if _, dup := seen[pool[i].ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateCandidate, pool[i].ID)
		}
		seen[pool[i].ID] = struct{}{}
	}
	return nil
}
