// Package models - client-held ticket blob.
// File: models/ticket.go
package models

// Ticket is the patient's "last known queue ticket" as cached on the client.
// It is outside the server's trust boundary and must be revalidated on load.
type Ticket struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Specialist  string `json:"specialist"`
	Doctor      string `json:"doctor"`
	Complaint   string `json:"complaint"`
	QueueNumber string `json:"queueNumber"`
	LoketNumber string `json:"loketNumber"`
}

// Complete reports whether the blob has the fields needed for revalidation.
func (t Ticket) Complete() bool {
	return t.FullName != "" && t.QueueNumber != ""
}

// TicketFor builds the cached blob for a registered patient.
func TicketFor(p Patient) Ticket {
	return Ticket{
		ID:          p.ID,
		FullName:    p.FullName,
		Specialist:  p.Specialist,
		Doctor:      p.Doctor,
		Complaint:   p.Complaint,
		QueueNumber: p.QueueNumber,
		LoketNumber: p.LoketNumber,
	}
}
