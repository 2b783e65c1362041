// Package ingester turns raw ticket records into stored, embedded rows.
//
// Each record passes through four stages: normalization to the canonical
// ticket shape, embedding of "summary:description", a dimension check
// against the target store and a write. Batches compute embeddings with a
// bounded worker group and then write sequentially in input order, so one
// bad record never aborts the rest.
//
// ProjectLocks offers a non-blocking per-project lock for callers that must
// not run two long operations (such as a tracker sync) on one project at
// the same time.
package ingester
