// Package models - wire messages pushed to channel observers.
// File: models/message.go
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType tags the variant carried by a Message.
type MessageType string

const (
	MessageInitial MessageType = "initial"
	MessageUpdate  MessageType = "update"
	MessageRecall  MessageType = "recall"
)

// Message is the unit pushed over a channel subscription.
// Initial and Update carry a full snapshot in Patients; Recall carries Patient.
type Message struct {
	Type     MessageType `json:"type"`
	Loket    string      `json:"loket"`
	Revision uint64      `json:"revision,omitempty"`
	Patients []Patient   `json:"patients,omitempty"`
	Patient  *Patient    `json:"patient,omitempty"`
}

// ErrMalformedMessage is returned by DecodeMessage for payloads that are not
// a recognised message.
var ErrMalformedMessage = errors.New("malformed message")

// Snapshot is the complete state of one channel at a store revision.
type Snapshot struct {
	Loket    string
	Revision uint64
	Patients []Patient
}

// InitialMessage builds the message sent on subscription.
func InitialMessage(s Snapshot) Message {
	return Message{Type: MessageInitial, Loket: s.Loket, Revision: s.Revision, Patients: nonNil(s.Patients)}
}

// UpdateMessage builds the message sent after a committed change.
func UpdateMessage(s Snapshot) Message {
	return Message{Type: MessageUpdate, Loket: s.Loket, Revision: s.Revision, Patients: nonNil(s.Patients)}
}

// RecallMessage builds the re-announcement notice for a called patient.
func RecallMessage(loket string, p Patient) Message {
	return Message{Type: MessageRecall, Loket: loket, Patient: &p}
}

type snapshotWire struct {
	Type     MessageType `json:"type"`
	Loket    string      `json:"loket"`
	Revision uint64      `json:"revision"`
	Patients []Patient   `json:"patients"`
}

type recallWire struct {
	Type    MessageType `json:"type"`
	Loket   string      `json:"loket"`
	Patient *Patient    `json:"patient"`
}

// MarshalJSON encodes only the fields of the message's variant, so snapshots
// always carry a patients array (possibly empty) and recalls carry a patient.
func (m Message) MarshalJSON() ([]byte, error) {
	if m.Type == MessageRecall {
		return json.Marshal(recallWire{Type: m.Type, Loket: m.Loket, Patient: m.Patient})
	}
	return json.Marshal(snapshotWire{Type: m.Type, Loket: m.Loket, Revision: m.Revision, Patients: nonNil(m.Patients)})
}

// DecodeMessage parses a raw payload once at the transport boundary.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	switch m.Type {
	case MessageInitial, MessageUpdate:
		if m.Patients == nil {
			m.Patients = []Patient{}
		}
	case MessageRecall:
		if m.Patient == nil {
			return Message{}, fmt.Errorf("%w: recall without patient", ErrMalformedMessage)
		}
	default:
		return Message{}, fmt.Errorf("%w: unknown type %q", ErrMalformedMessage, m.Type)
	}
	return m, nil
}

// nonNil makes empty snapshots encode as [] rather than being omitted.
func nonNil(p []Patient) []Patient {
	if p == nil {
		return []Patient{}
	}
	return p
}
