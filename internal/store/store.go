// Package store holds the locally mirrored visitor state.
//
// RecordStore is a single mutable cell with exactly one writer (the
// ingest loop). There is no locking: all writes and reads happen on the
// UI event loop, which serializes every state transition.
package store

import "github.com/visitorhub/visitorhub/internal/visitor"

// RecordStore is the mirror of the remote collection plus its loading
// status. Records are always a complete replacement of the last snapshot
// received; nothing is ever merged.
type RecordStore struct {
	records []visitor.Record
	loading bool

	// lastErr is the most recent subscription error. It is operational
	// detail only - it never clears records and is never shown as data.
	lastErr error
}

// New returns a store in the loading state with an empty record set.
func New() *RecordStore {
	return &RecordStore{loading: true}
}

// Apply replaces the record set with a new snapshot and ends loading.
// The previous snapshot is discarded wholesale.
func (s *RecordStore) Apply(records []visitor.Record) {
	s.records = records
	s.loading = false
	s.lastErr = nil
}

// Fail records a subscription error. Loading ends but the last known
// record set stays in place - visible data must not disappear because of
// a transient listener error.
func (s *RecordStore) Fail(err error) {
	s.loading = false
	s.lastErr = err
}

// Records returns the current snapshot. Callers must treat it as
// read-only; it is replaced, never mutated, on the next Apply.
func (s *RecordStore) Records() []visitor.Record {
	return s.records
}

// Loading reports whether the first snapshot is still pending.
func (s *RecordStore) Loading() bool {
	return s.loading
}

// LastErr returns the most recent subscription error, or nil.
func (s *RecordStore) LastErr() error {
	return s.lastErr
}

// Len returns the current record count.
func (s *RecordStore) Len() int {
	return len(s.records)
}
