// Package models defines data structures used across the application.
// File: models/patient.go
package models

import (
	"sort"
	"time"
)

// ----------------------- patient status -----------------------

// Status is the lifecycle state of a queue ticket.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusCalled    Status = "called"
	StatusCompleted Status = "completed"
)

// rank orders statuses along the only allowed direction of travel.
func (s Status) rank() int {
	switch s {
	case StatusWaiting:
		return 1
	case StatusCalled:
		return 2
	case StatusCompleted:
		return 3
	}
	return 0
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s.rank() > 0
}

// Active reports whether a ticket in this status still occupies the queue.
func (s Status) Active() bool {
	return s == StatusWaiting || s == StatusCalled
}

// CanMoveTo reports whether s -> next is a forward move.
// completed is terminal and a status never moves to itself.
func (s Status) CanMoveTo(next Status) bool {
	return s.Valid() && next.Valid() && next.rank() > s.rank()
}

// ----------------------- patient model -----------------------

// Patient is one registration in the queue.
type Patient struct {
	ID          string    `json:"id"`
	QueueNumber string    `json:"queueNumber"`
	FullName    string    `json:"fullName"`
	Specialist  string    `json:"specialist"`
	Doctor      string    `json:"doctor"`
	Complaint   string    `json:"complaint"`
	Status      Status    `json:"status"`
	LoketNumber string    `json:"loketNumber"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AnnouncementKey identifies one call of one registration. The id keeps a
// queue number reissued after a reset from matching the earlier call.
func (p Patient) AnnouncementKey() string {
	return p.ID + ":" + p.QueueNumber + "-" + p.LoketNumber
}

// NewPatient holds the caller-supplied fields of a registration.
type NewPatient struct {
	FullName   string `json:"fullName"`
	Specialist string `json:"specialist"`
	Doctor     string `json:"doctor"`
	Complaint  string `json:"complaint"`
}

// ---------------------- queue statistics ----------------------

// QueueStats summarises ticket counts by status.
type QueueStats struct {
	Total     int `json:"total"`
	Waiting   int `json:"waiting"`
	Completed int `json:"completed"`
	Called    int `json:"called"`
}

// CountStats tallies the statuses of the given patients.
func CountStats(patients []Patient) QueueStats {
	stats := QueueStats{Total: len(patients)}
	for _, p := range patients {
		switch p.Status {
		case StatusWaiting:
			stats.Waiting++
		case StatusCalled:
			stats.Called++
		case StatusCompleted:
			stats.Completed++
		}
	}
	return stats
}

// ---------------------- selection policy ----------------------

// FindCalled returns the called patient of a snapshot, if any.
func FindCalled(patients []Patient) *Patient {
	for i := range patients {
		if patients[i].Status == StatusCalled {
			p := patients[i]
			return &p
		}
	}
	return nil
}

// SelectDisplayed picks what a counter display shows: the called patient,
// otherwise the most recently created completed patient, otherwise nil.
func SelectDisplayed(patients []Patient) *Patient {
	if called := FindCalled(patients); called != nil {
		return called
	}
	var latest *Patient
	for i := range patients {
		if patients[i].Status != StatusCompleted {
			continue
		}
		if latest == nil || patients[i].CreatedAt.After(latest.CreatedAt) {
			p := patients[i]
			latest = &p
		}
	}
	return latest
}

// SelectNext returns the waiting patient with the smallest CreatedAt.
func SelectNext(patients []Patient) *Patient {
	var next *Patient
	for i := range patients {
		if patients[i].Status != StatusWaiting {
			continue
		}
		if next == nil || patients[i].CreatedAt.Before(next.CreatedAt) {
			p := patients[i]
			next = &p
		}
	}
	return next
}

// SortByCreated orders patients by CreatedAt, keeping insertion order on ties.
func SortByCreated(patients []Patient) {
	sort.SliceStable(patients, func(i, j int) bool {
		return patients[i].CreatedAt.Before(patients[j].CreatedAt)
	})
}
