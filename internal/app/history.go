package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/randomtoy/faas-go/internal/domain"
	"github.com/randomtoy/faas-go/internal/ports"
)

// HistoryService is the ordered list of completed sessions. The whole
// collection is the unit of persistence: every mutation re-serializes the
// full list through the store. Single-writer by assumption; the mutex covers
// the in-process handlers only.
type HistoryService struct {
	mu      sync.Mutex
	store   ports.HistoryStore
	records []domain.HistoryRecord
}

func NewHistoryService(store ports.HistoryStore) (*HistoryService, error) {
	records, err := store.LoadHistory()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return &HistoryService{store: store, records: records}, nil
}

// List returns a copy of the collection in insertion order.
func (s *HistoryService) List() []domain.HistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.HistoryRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Save appends or replaces one record. With an empty trackedID a fresh
// record is appended under a new id. With a trackedID present, the record
// with that id is overwritten in place; if it no longer exists (deleted
// concurrently by the user) the save repairs by appending under the same id
// rather than failing. Returns the id to track for subsequent saves.
func (s *HistoryService) Save(trackedID string, rec domain.HistoryRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Timestamp = time.Now()
	if trackedID == "" {
		rec.ID = uuid.NewString()
		s.records = append(s.records, rec)
	} else {
		rec.ID = trackedID
		replaced := false
		for i := range s.records {
			if s.records[i].ID == trackedID {
				s.records[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			s.records = append(s.records, rec)
		}
	}

	if err := s.store.SaveHistory(s.records); err != nil {
		return "", fmt.Errorf("persist history: %w", err)
	}
	return rec.ID, nil
}

// Delete removes one record by id. A non-existent id is a no-op.
func (s *HistoryService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	removed := false
	for _, r := range s.records {
		if r.ID == id {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	if !removed {
		return nil
	}
	s.records = kept

	if err := s.store.SaveHistory(s.records); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}
