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


// Package ai provides the embedding abstraction used by the matcher.
//
// The matcher only needs one AI capability: turning candidate and query
// text into vectors. Embedder describes that capability and Provider owns
// a backend's lifecycle.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Lazy Construction
//
// Loading an embedding backend is slow and may fail on machines without a
// model server. Lazy defers construction to the first embedding call and
// reports construction failures as core.ErrBackendUnavailable, so callers
// can fall back to lexical-only matching:
//
//	lazy := ai.NewLazy(func() (ai.Provider, error) {
//	    return openai.NewProvider(ai.DefaultConfig())
//	})
//	defer lazy.Close()
//
//	vec, err := lazy.EmbedText(ctx, "signs of heart failure")
//	if errors.Is(err, core.ErrBackendUnavailable) {
//	    // continue without embeddings
//	}
package ai
