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


// Package storage provides the storage abstraction layer for lomatch.
//
// Two stores survive a run: a cache of embedding vectors, so refitting the
// index over an unchanged deck does not re-embed every note, and an
// append-only log of the decisions made in each matching session.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return the interfaces
// defined here:
//
//	cache, err := badger.NewVectorCache(backend)  // returns storage.VectorCache
//
// Internal helpers may return concrete types since they're only used within
// the implementation package.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	decisions, err := badger.NewDecisionRepository(backend)
//
// Use in tests with in-memory storage:
//
//	cache, decisions, backend, err := badger.NewMemoryStores()
//
// # Serialization
//
// Values are encoded with mus-go serializers (codec.go). Keys are built by
// the implementation package.
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
