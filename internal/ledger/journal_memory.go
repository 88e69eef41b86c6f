package ledger

import (
	"context"
	"sync"

	"employeeapp/pkg/domain"
)

// MemoryJournal keeps entries in process memory.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) Append(_ context.Context, entry Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
	return nil
}

func (j *MemoryJournal) ListByEmployee(_ context.Context, employeeID domain.RecordID) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var out []Entry
	for _, e := range j.entries {
		if e.EmployeeID == employeeID {
			out = append(out, e)
		}
	}
	return out, nil
}

// StagedJournal buffers entries until Flush. The in-memory transaction uses it
// so rolled back credits never reach the underlying journal.
type StagedJournal struct {
	target  Journal
	pending []Entry
}

func NewStagedJournal(target Journal) *StagedJournal {
	return &StagedJournal{target: target}
}

func (s *StagedJournal) Append(_ context.Context, entry Entry) error {
	s.pending = append(s.pending, entry)
	return nil
}

// Flush writes buffered entries to the target.
func (s *StagedJournal) Flush(ctx context.Context) error {
	for _, e := range s.pending {
		if err := s.target.Append(ctx, e); err != nil {
			return err
		}
	}
	s.pending = nil
	return nil
}
