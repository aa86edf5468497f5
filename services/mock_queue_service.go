package services

import (
	"github.com/stretchr/testify/mock"
	"go-loket-queue/config"
	"go-loket-queue/models"
)

// Ensure MockQueueService implements QueueServiceInterface
var _ QueueServiceInterface = (*MockQueueService)(nil)

// MockQueueService is a mock implementation for controller tests.
type MockQueueService struct {
	mock.Mock
}

// Create (Mocked)
func (m *MockQueueService) Create(in models.NewPatient) (models.Patient, error) {
	args := m.Called(in)
	return args.Get(0).(models.Patient), args.Error(1)
}

// FindActiveByName (Mocked)
func (m *MockQueueService) FindActiveByName(name string) *models.Patient {
	args := m.Called(name)
	if p, ok := args.Get(0).(*models.Patient); ok {
		return p
	}
	return nil
}

// Get (Mocked)
func (m *MockQueueService) Get(id string) (models.Patient, error) {
	args := m.Called(id)
	return args.Get(0).(models.Patient), args.Error(1)
}

// List (Mocked)
func (m *MockQueueService) List() []models.Patient {
	args := m.Called()
	return args.Get(0).([]models.Patient)
}

// ListByLoket (Mocked)
func (m *MockQueueService) ListByLoket(loket string) []models.Patient {
	args := m.Called(loket)
	return args.Get(0).([]models.Patient)
}

// NextWaiting (Mocked)
func (m *MockQueueService) NextWaiting(loket string) *models.Patient {
	args := m.Called(loket)
	if p, ok := args.Get(0).(*models.Patient); ok {
		return p
	}
	return nil
}

// Transition (Mocked)
func (m *MockQueueService) Transition(id string, req TransitionRequest) (models.Patient, error) {
	args := m.Called(id, req)
	return args.Get(0).(models.Patient), args.Error(1)
}

// CallNext (Mocked)
func (m *MockQueueService) CallNext(loket string) (*models.Patient, error) {
	args := m.Called(loket)
	p, _ := args.Get(0).(*models.Patient)
	return p, args.Error(1)
}

// Recall (Mocked)
func (m *MockQueueService) Recall(id string) (RecallEvent, error) {
	args := m.Called(id)
	return args.Get(0).(RecallEvent), args.Error(1)
}

// Stats (Mocked)
func (m *MockQueueService) Stats() models.QueueStats {
	args := m.Called()
	return args.Get(0).(models.QueueStats)
}

// Reset (Mocked)
func (m *MockQueueService) Reset() {
	m.Called()
}

// Snapshot (Mocked)
func (m *MockQueueService) Snapshot(loket string) models.Snapshot {
	args := m.Called(loket)
	return args.Get(0).(models.Snapshot)
}

// Counters (Mocked)
func (m *MockQueueService) Counters() *config.Counters {
	args := m.Called()
	return args.Get(0).(*config.Counters)
}
