package snapshot

import (
	"sort"
	"sync/atomic"
	"time"

	"whichGLP/domain"
)

// Snapshot is an immutable, fully built view of experience records. Records
// are ordered by ID ascending. Callers must not mutate anything reachable from
// a Snapshot.
type Snapshot struct {
	version uint64
	builtAt time.Time
	records []domain.ExperienceRecord
	byID    map[string]int
}

// New builds a snapshot from records. The slice is owned by the snapshot after
// the call.
func New(version uint64, builtAt time.Time, records []domain.ExperienceRecord) *Snapshot {
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})

	byID := make(map[string]int, len(records))
	for i, r := range records {
		byID[r.ID] = i
	}

	return &Snapshot{
		version: version,
		builtAt: builtAt,
		records: records,
		byID:    byID,
	}
}

// Empty returns the version 0 snapshot served before the first refresh.
func Empty() *Snapshot {
	return New(0, time.Time{}, nil)
}

func (s *Snapshot) Version() uint64 {
	return s.version
}

func (s *Snapshot) BuiltAt() time.Time {
	return s.builtAt
}

func (s *Snapshot) Len() int {
	return len(s.records)
}

// Records exposes the backing slice; it is read-only.
func (s *Snapshot) Records() []domain.ExperienceRecord {
	return s.records
}

func (s *Snapshot) Get(id string) (domain.ExperienceRecord, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.ExperienceRecord{}, false
	}
	return s.records[i], true
}

// Store holds the live snapshot. Publish swaps the pointer, so readers either
// see the previous snapshot or the new one and never a partial state.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	s := &Store{}
	s.current.Store(Empty())
	return s
}

func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

func (s *Store) Publish(snap *Snapshot) {
	if snap == nil {
		return
	}
	s.current.Store(snap)
}
