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


// Package lexical scores how closely a query matches a candidate's text using
// string similarity only.
//
// The score blends three ratios, each in [0,1]:
//   - token set: robust to word reordering and duplication
//   - partial: best alignment of the shorter string inside the longer one
//   - token sort: robust to word order only
//
// All ratios are built on the normalized Indel similarity
// 2*LCS(a,b) / (len(a)+len(b)) computed over runes. Both inputs are passed
// through core.Normalize before scoring.
package lexical
