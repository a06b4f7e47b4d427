// Package index embeds a candidate pool and answers nearest-neighbor
// queries against it.
//
// Fit encodes candidate texts in batches on an ants worker pool. Each batch
// consults an optional storage.VectorCache, retries the embedding call with
// exponential backoff, and stores unit-length vectors. Query embeds the
// normalized query text and ranks every candidate by dot product.
//
// An index is inactive when it has no embedder or its last Fit failed. An
// inactive index answers every Query with no hits and no error, which is the
// signal for callers to rank lexically.
package index
