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


// Package search ranks a candidate pool against a free-text query.
//
// The Ranker implements a two-stage hybrid algorithm:
//   - Seeding: when the embedding index is active, the top candidates by
//     cosine similarity form the seed set; otherwise every candidate does
//   - Fusion: each seed is scored lexically and the two signals are blended
//     as alpha*semantic + (1-alpha)*lexical
//
// Results are sorted by the fused score with ties kept in seed order and
// truncated to the requested size. A query whose embedding call fails is
// ranked lexically over the whole pool.
package search
