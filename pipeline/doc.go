// Package pipeline drives a matching run: each query is ranked against the
// candidate pool, resolved into a selection, logged as decision rows and
// applied to the note store.
package pipeline
