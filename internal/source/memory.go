package source

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/visitorhub/visitorhub/internal/visitor"
)

// Compile-time interface satisfaction checks
var _ Store = (*Memory)(nil)

// Memory is an in-memory visitor store with snapshot fan-out.
//
// It implements the same contract as the remote store: every mutation
// re-delivers the complete ordered list to every live subscriber.
// Used by tests and by demo mode.
type Memory struct {
	mu      sync.Mutex
	docs    map[string]visitor.Record
	subs    map[int]subscriber
	nextSub int

	// now is swappable for deterministic ordering in tests.
	now func() time.Time
}

type subscriber struct {
	onSnapshot func([]visitor.Record)
	onError    func(error)
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string]visitor.Record),
		subs: make(map[int]subscriber),
		now:  time.Now,
	}
}

// Subscribe registers the callbacks and delivers the current snapshot
// before returning. The returned cancel is synchronous and idempotent.
func (m *Memory) Subscribe(ctx context.Context, onSnapshot func([]visitor.Record), onError func(error)) (func(), error) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = subscriber{onSnapshot: onSnapshot, onError: onError}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	onSnapshot(snap)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}

	return cancel, nil
}

// Put inserts or replaces a record and rebroadcasts. A zero UpdatedAt is
// stamped with the current time so the record sorts to the top.
func (m *Memory) Put(rec visitor.Record) {
	m.mu.Lock()
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = m.now()
	}
	m.docs[rec.ID] = rec.Clone()
	subs, snap := m.subscribersAndSnapshotLocked()
	m.mu.Unlock()

	broadcast(subs, snap)
}

// Delete removes a record and rebroadcasts. Deleting an unknown id is a
// no-op with no broadcast.
func (m *Memory) Delete(id string) {
	m.mu.Lock()
	if _, ok := m.docs[id]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.docs, id)
	subs, snap := m.subscribersAndSnapshotLocked()
	m.mu.Unlock()

	broadcast(subs, snap)
}

// Update applies a partial update to a single record and rebroadcasts.
// Only the given fields change: the ordering timestamp stays put, so the
// record keeps its snapshot position unless FieldUpdatedAt is in fields.
func (m *Memory) Update(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	rec, ok := m.docs[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("update %s: record not found", id)
	}
	applyFields(&rec, fields)
	m.docs[id] = rec
	subs, snap := m.subscribersAndSnapshotLocked()
	m.mu.Unlock()

	broadcast(subs, snap)
	return nil
}

// Len returns the current record count.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// Get returns a copy of a record by id.
func (m *Memory) Get(id string) (visitor.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.docs[id]
	return rec.Clone(), ok
}

// snapshotLocked builds the ordered list: updatedAt descending, id as the
// tiebreaker for determinism. Caller holds m.mu.
func (m *Memory) snapshotLocked() []visitor.Record {
	out := make([]visitor.Record, 0, len(m.docs))
	for _, rec := range m.docs {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *Memory) subscribersAndSnapshotLocked() ([]subscriber, []visitor.Record) {
	subs := make([]subscriber, 0, len(m.subs))
	for _, s := range m.subs {
		subs = append(subs, s)
	}
	return subs, m.snapshotLocked()
}

// broadcast delivers a snapshot outside the lock. Each subscriber gets
// its own copy so one consumer cannot mutate another's view.
func broadcast(subs []subscriber, snap []visitor.Record) {
	for _, s := range subs {
		s.onSnapshot(visitor.CloneAll(snap))
	}
}
