// Package services: services/queue_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go-loket-queue/config"
	"go-loket-queue/logger"
	"go-loket-queue/models"
)

// Broadcaster fans committed queue state out to channel observers.
type Broadcaster interface {
	Publish(snapshot models.Snapshot)
	// NotifyRecall is dropped for observers already past revision.
	NotifyRecall(loket string, patient models.Patient, revision uint64)
}

// Repository persists the full patient list between restarts.
type Repository interface {
	Load() ([]models.Patient, error)
	Save(patients []models.Patient) error
}

// TransitionRequest moves a patient forward and optionally reassigns it.
// An empty Status keeps the current one.
type TransitionRequest struct {
	Status      models.Status `json:"status"`
	LoketNumber string        `json:"loketNumber,omitempty"`
	QueueNumber string        `json:"queueNumber,omitempty"`
}

// RecallEvent is the re-announcement emitted for a called patient.
type RecallEvent struct {
	Loket   string         `json:"loket"`
	Patient models.Patient `json:"patient"`
}

// QueueServiceInterface is what the HTTP and websocket layers depend on.
type QueueServiceInterface interface {
	Create(in models.NewPatient) (models.Patient, error)
	FindActiveByName(name string) *models.Patient
	Get(id string) (models.Patient, error)
	List() []models.Patient
	ListByLoket(loket string) []models.Patient
	NextWaiting(loket string) *models.Patient
	Transition(id string, req TransitionRequest) (models.Patient, error)
	CallNext(loket string) (*models.Patient, error)
	Recall(id string) (RecallEvent, error)
	Stats() models.QueueStats
	Reset()
	Snapshot(loket string) models.Snapshot
	Counters() *config.Counters
}

var _ QueueServiceInterface = (*QueueService)(nil)

var errNobodyWaiting = errors.New("no waiting patient")

// QueueService is the only writer of the QueueStore. Broadcasts and saves
// happen after the write lock is released.
type QueueService struct {
	store    *QueueStore
	counters *config.Counters

	hub  Broadcaster
	repo Repository

	saveMu sync.Mutex

	now   func() time.Time
	newID func() string
}

// NewQueueService creates a service over store using the counter layout.
func NewQueueService(counters *config.Counters, store *QueueStore) *QueueService {
	if counters == nil {
		counters = config.DefaultCounters()
	}
	if store == nil {
		store = NewQueueStore()
	}
	return &QueueService{
		store:    store,
		counters: counters,
		hub:      noopBroadcaster{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SetBroadcaster wires the hub. It is set after construction because the hub
// reads initial snapshots back from the service.
func (s *QueueService) SetBroadcaster(b Broadcaster) {
	if b == nil {
		b = noopBroadcaster{}
	}
	s.hub = b
}

// SetRepository enables persistence after every committed change.
func (s *QueueService) SetRepository(r Repository) {
	s.repo = r
}

// Restore loads persisted patients into the store.
func (s *QueueService) Restore() error {
	if s.repo == nil {
		return nil
	}
	patients, err := s.repo.Load()
	if err != nil {
		return fmt.Errorf("failed to load patients: %w", err)
	}
	if err := s.store.Load(patients); err != nil {
		return err
	}
	logger.Info.Printf("[QueueService.Restore] Loaded %d patients", len(patients))
	return nil
}

// Counters returns the configured counter layout.
func (s *QueueService) Counters() *config.Counters {
	return s.counters
}

// Create registers a waiting patient on the counter serving its specialty.
func (s *QueueService) Create(in models.NewPatient) (models.Patient, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Specialist = strings.TrimSpace(in.Specialist)
	if in.FullName == "" {
		return models.Patient{}, fmt.Errorf("%w: fullName is required", ErrValidation)
	}
	if in.Specialist == "" {
		return models.Patient{}, fmt.Errorf("%w: specialist is required", ErrValidation)
	}
	counter, ok := s.counters.BySpecialist(in.Specialist)
	if !ok {
		return models.Patient{}, fmt.Errorf("%w: unknown specialist %q", ErrValidation, in.Specialist)
	}

	var created models.Patient
	var snap models.Snapshot
	err := s.store.write(func(rev uint64) error {
		p := models.Patient{
			ID:          s.newID(),
			FullName:    in.FullName,
			Specialist:  in.Specialist,
			Doctor:      strings.TrimSpace(in.Doctor),
			Complaint:   strings.TrimSpace(in.Complaint),
			Status:      models.StatusWaiting,
			LoketNumber: counter.Loket,
			CreatedAt:   s.store.stamp(s.now()),
		}
		p.QueueNumber = s.store.numbers.next(counter.Prefix)
		for s.store.numberTaken(p.QueueNumber, "") {
			p.QueueNumber = s.store.numbers.next(counter.Prefix)
		}
		if err := s.store.insert(p); err != nil {
			return err
		}
		created = p
		snap = s.store.snapshotLocked(p.LoketNumber, rev)
		return nil
	})
	if err != nil {
		logger.Error.Printf("[QueueService.Create] Failed for %q: %v", in.FullName, err)
		return models.Patient{}, err
	}

	logger.Info.Printf("[QueueService.Create] %s registered as %s at loket %s", created.FullName, created.QueueNumber, created.LoketNumber)
	s.hub.Publish(snap)
	s.persist()
	return created, nil
}

// FindActiveByName returns the most recent waiting or called patient with
// exactly that name, or nil.
func (s *QueueService) FindActiveByName(name string) *models.Patient {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	all := s.store.All()
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].FullName == name && all[i].Status.Active() {
			p := all[i]
			return &p
		}
	}
	return nil
}

// Get returns the patient with the given id.
func (s *QueueService) Get(id string) (models.Patient, error) {
	p, ok := s.store.Get(id)
	if !ok {
		return models.Patient{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// List returns every patient ordered by creation time.
func (s *QueueService) List() []models.Patient {
	return s.store.All()
}

// ListByLoket returns the patients of one channel ordered by creation time.
func (s *QueueService) ListByLoket(loket string) []models.Patient {
	return s.store.Snapshot(loket).Patients
}

// NextWaiting returns the earliest waiting patient of a channel, or nil.
func (s *QueueService) NextWaiting(loket string) *models.Patient {
	return models.SelectNext(s.ListByLoket(loket))
}

// Snapshot returns the current state of a channel for a new subscriber.
func (s *QueueService) Snapshot(loket string) models.Snapshot {
	return s.store.Snapshot(loket)
}

// Transition applies a forward status change and optional reassignment.
func (s *QueueService) Transition(id string, req TransitionRequest) (models.Patient, error) {
	var updated models.Patient
	var snaps []models.Snapshot

	err := s.store.write(func(rev uint64) error {
		p, ok := s.store.get(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		next := *p

		if req.Status != "" {
			if !req.Status.Valid() {
				return fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
			}
			if !p.Status.CanMoveTo(req.Status) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, req.Status)
			}
			next.Status = req.Status
		} else if p.Status == models.StatusCompleted {
			return fmt.Errorf("%w: %s is completed", ErrInvalidTransition, p.QueueNumber)
		}

		if req.LoketNumber != "" && req.LoketNumber != p.LoketNumber {
			if !s.counters.HasLoket(req.LoketNumber) {
				return fmt.Errorf("%w: unknown loket %q", ErrValidation, req.LoketNumber)
			}
			next.LoketNumber = req.LoketNumber
		}
		if req.QueueNumber != "" && req.QueueNumber != p.QueueNumber {
			if next.Status.Active() && s.store.numberTaken(req.QueueNumber, id) {
				return fmt.Errorf("%w: queue number %s already active", ErrValidation, req.QueueNumber)
			}
			next.QueueNumber = req.QueueNumber
		}

		if next.Status == p.Status && next.LoketNumber == p.LoketNumber && next.QueueNumber == p.QueueNumber {
			return fmt.Errorf("%w: no change requested", ErrValidation)
		}
		if next.Status == models.StatusCalled {
			if other := s.store.calledOn(next.LoketNumber, id); other != nil {
				return fmt.Errorf("%w: loket %s is already calling %s", ErrInvalidTransition, next.LoketNumber, other.QueueNumber)
			}
		}

		oldLoket := p.LoketNumber
		*p = next
		updated = next
		snaps = append(snaps, s.store.snapshotLocked(next.LoketNumber, rev))
		if oldLoket != next.LoketNumber {
			snaps = append(snaps, s.store.snapshotLocked(oldLoket, rev))
		}
		return nil
	})
	if err != nil {
		logger.Warn.Printf("[QueueService.Transition] %s rejected: %v", id, err)
		return models.Patient{}, err
	}

	logger.Info.Printf("[QueueService.Transition] %s is now %s at loket %s", updated.QueueNumber, updated.Status, updated.LoketNumber)
	for _, snap := range snaps {
		s.hub.Publish(snap)
	}
	s.persist()
	return updated, nil
}

// CallNext completes the channel's called patient and calls the earliest
// waiting one in a single write. With nobody waiting nothing changes and it
// returns nil.
func (s *QueueService) CallNext(loket string) (*models.Patient, error) {
	if !s.counters.HasLoket(loket) {
		return nil, fmt.Errorf("%w: loket %s", ErrNotFound, loket)
	}

	var called models.Patient
	var snap models.Snapshot
	err := s.store.write(func(rev uint64) error {
		candidate := models.SelectNext(s.store.channelLocked(loket))
		if candidate == nil {
			return errNobodyWaiting
		}
		if current := s.store.calledOn(loket, ""); current != nil {
			current.Status = models.StatusCompleted
		}
		p, _ := s.store.get(candidate.ID)
		p.Status = models.StatusCalled
		called = *p
		snap = s.store.snapshotLocked(loket, rev)
		return nil
	})
	if errors.Is(err, errNobodyWaiting) {
		logger.Debug.Printf("[QueueService.CallNext] Nobody waiting at loket %s", loket)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	logger.Info.Printf("[QueueService.CallNext] Loket %s calls %s", loket, called.QueueNumber)
	s.hub.Publish(snap)
	s.persist()
	return &called, nil
}

// Recall re-announces a called patient without changing any state.
func (s *QueueService) Recall(id string) (RecallEvent, error) {
	p, rev, ok := s.store.GetAt(id)
	if !ok {
		return RecallEvent{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if p.Status != models.StatusCalled {
		return RecallEvent{}, fmt.Errorf("%w: %s is %s, not called", ErrInvalidState, p.QueueNumber, p.Status)
	}
	logger.Info.Printf("[QueueService.Recall] Recalling %s at loket %s", p.QueueNumber, p.LoketNumber)
	s.hub.NotifyRecall(p.LoketNumber, p, rev)
	return RecallEvent{Loket: p.LoketNumber, Patient: p}, nil
}

// Stats counts patients by status.
func (s *QueueService) Stats() models.QueueStats {
	return models.CountStats(s.store.All())
}

// Reset clears the queue and restarts numbering, then pushes empty
// snapshots to every configured channel.
func (s *QueueService) Reset() {
	rev := s.store.Clear()
	logger.Info.Println("[QueueService.Reset] Queue cleared")
	for _, loket := range s.counters.Lokets() {
		s.hub.Publish(models.Snapshot{Loket: loket, Revision: rev, Patients: []models.Patient{}})
	}
	s.persist()
}

// persist saves the latest state. saveMu orders concurrent saves so the last
// one to run always writes the newest list.
func (s *QueueService) persist() {
	if s.repo == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if err := s.repo.Save(s.store.All()); err != nil {
		logger.Error.Printf("[QueueService.persist] Error saving data: %v", err)
	}
}

type noopBroadcaster struct{}

func (noopBroadcaster) Publish(models.Snapshot)                     {}
func (noopBroadcaster) NotifyRecall(string, models.Patient, uint64) {}
