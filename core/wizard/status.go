package wizard

import (
	"sync"

	"github.com/trezcool/formazione/core/schedule"
)

// StatusStore remembers the document status last chosen for a schedule, so that reopening a
// schedule shows it even before the remote record reflects it.
type StatusStore interface {
	GetStatus(id schedule.ID) (schedule.DocumentStatus, bool, error)
	SetStatus(id schedule.ID, status schedule.DocumentStatus) error
}

type MemoryStatusStore struct {
	mu       sync.RWMutex
	statuses map[schedule.ID]schedule.DocumentStatus
}

var _ StatusStore = (*MemoryStatusStore)(nil)

func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{statuses: make(map[schedule.ID]schedule.DocumentStatus)}
}

func (s *MemoryStatusStore) GetStatus(id schedule.ID) (schedule.DocumentStatus, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[id]
	return status, ok, nil
}

func (s *MemoryStatusStore) SetStatus(id schedule.ID, status schedule.DocumentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[id] = status
	return nil
}
