// Package services: services/queue_store.go
package services

import (
	"fmt"
	"sync"
	"time"

	"go-loket-queue/models"
)

// QueueStore holds the authoritative patient records. Every write goes
// through write(), which serialises writers and advances the revision that
// tags published snapshots.
type QueueStore struct {
	mu          sync.RWMutex
	order       []string
	patients    map[string]*models.Patient
	numbers     *queueNumberer
	revision    uint64
	lastCreated time.Time
}

// NewQueueStore creates an empty store.
func NewQueueStore() *QueueStore {
	return &QueueStore{
		patients: make(map[string]*models.Patient),
		numbers:  newQueueNumberer(),
	}
}

// write runs fn under the write lock with the revision the change will carry.
// The revision only advances when fn succeeds.
func (s *QueueStore) write(fn func(rev uint64) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rev := s.revision + 1
	if err := fn(rev); err != nil {
		return err
	}
	s.revision = rev
	return nil
}

// ---------------------- locked helpers ----------------------

func (s *QueueStore) get(id string) (*models.Patient, bool) {
	p, ok := s.patients[id]
	return p, ok
}

func (s *QueueStore) insert(p models.Patient) error {
	if _, exists := s.patients[p.ID]; exists {
		return fmt.Errorf("%w: duplicate id %s", ErrValidation, p.ID)
	}
	if p.Status.Active() && s.numberTaken(p.QueueNumber, "") {
		return fmt.Errorf("%w: queue number %s already active", ErrValidation, p.QueueNumber)
	}
	s.patients[p.ID] = &p
	s.order = append(s.order, p.ID)
	if p.CreatedAt.After(s.lastCreated) {
		s.lastCreated = p.CreatedAt
	}
	return nil
}

// stamp returns a creation time strictly after every stored one, so FIFO
// order never depends on clock resolution. Times are kept to whole
// microseconds so they survive a DATETIME(6) column unchanged.
func (s *QueueStore) stamp(now time.Time) time.Time {
	now = now.Truncate(time.Microsecond)
	if !now.After(s.lastCreated) {
		now = s.lastCreated.Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return now
}

func (s *QueueStore) numberTaken(queueNumber, exceptID string) bool {
	for _, p := range s.patients {
		if p.ID != exceptID && p.Status.Active() && p.QueueNumber == queueNumber {
			return true
		}
	}
	return false
}

func (s *QueueStore) calledOn(loket, exceptID string) *models.Patient {
	for _, p := range s.patients {
		if p.ID != exceptID && p.LoketNumber == loket && p.Status == models.StatusCalled {
			return p
		}
	}
	return nil
}

func (s *QueueStore) allLocked() []models.Patient {
	out := make([]models.Patient, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.patients[id])
	}
	models.SortByCreated(out)
	return out
}

func (s *QueueStore) channelLocked(loket string) []models.Patient {
	out := []models.Patient{}
	for _, id := range s.order {
		if p := s.patients[id]; p.LoketNumber == loket {
			out = append(out, *p)
		}
	}
	models.SortByCreated(out)
	return out
}

func (s *QueueStore) snapshotLocked(loket string, rev uint64) models.Snapshot {
	return models.Snapshot{Loket: loket, Revision: rev, Patients: s.channelLocked(loket)}
}

// checkInvariants verifies one called patient per channel and unique active
// queue numbers.
func (s *QueueStore) checkInvariants() error {
	called := make(map[string]string)
	active := make(map[string]string)
	for _, id := range s.order {
		p := s.patients[id]
		if p.Status == models.StatusCalled {
			if other, ok := called[p.LoketNumber]; ok {
				return fmt.Errorf("loket %s has two called patients: %s and %s", p.LoketNumber, other, p.ID)
			}
			called[p.LoketNumber] = p.ID
		}
		if p.Status.Active() {
			if other, ok := active[p.QueueNumber]; ok {
				return fmt.Errorf("queue number %s is held by %s and %s", p.QueueNumber, other, p.ID)
			}
			active[p.QueueNumber] = p.ID
		}
	}
	return nil
}

// ---------------------- readers ----------------------

// Get returns a copy of the patient with the given id.
func (s *QueueStore) Get(id string) (models.Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return models.Patient{}, false
	}
	return *p, true
}

// GetAt returns a copy of the patient and the revision it was read at.
func (s *QueueStore) GetAt(id string) (models.Patient, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return models.Patient{}, s.revision, false
	}
	return *p, s.revision, true
}

// All returns every patient ordered by creation time.
func (s *QueueStore) All() []models.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allLocked()
}

// Snapshot returns the full state of one channel at the current revision.
func (s *QueueStore) Snapshot(loket string) models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(loket, s.revision)
}

// Revision is the number of committed writes so far.
func (s *QueueStore) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// CheckInvariants reports the first violated queue invariant, if any.
func (s *QueueStore) CheckInvariants() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkInvariants()
}

// ---------------------- bulk writers ----------------------

// Load replaces the contents with previously persisted patients and resumes
// numbering after the highest issued label per prefix. Data that breaks a
// queue invariant is rejected and the store is left unchanged.
func (s *QueueStore) Load(patients []models.Patient) error {
	fresh := NewQueueStore()
	for _, p := range patients {
		if _, dup := fresh.patients[p.ID]; dup {
			continue
		}
		cp := p
		fresh.patients[cp.ID] = &cp
		fresh.order = append(fresh.order, cp.ID)
		if cp.CreatedAt.After(fresh.lastCreated) {
			fresh.lastCreated = cp.CreatedAt
		}
	}
	if err := fresh.checkInvariants(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	restoreNumbering(fresh.numbers, patients)

	return s.write(func(uint64) error {
		s.patients = fresh.patients
		s.order = fresh.order
		s.lastCreated = fresh.lastCreated
		s.numbers = fresh.numbers
		return nil
	})
}

// Clear removes every patient and restarts all prefix counters.
func (s *QueueStore) Clear() uint64 {
	var rev uint64
	_ = s.write(func(r uint64) error {
		s.patients = make(map[string]*models.Patient)
		s.order = nil
		s.lastCreated = time.Time{}
		s.numbers.reset()
		rev = r
		return nil
	})
	return rev
}
