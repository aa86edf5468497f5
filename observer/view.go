// file: observer/view.go
package observer

import "go-loket-queue/models"

// View is what a loket display shows after the latest snapshot.
type View struct {
	Loket    string
	Revision uint64
	Patients []models.Patient
	// Called is the patient currently called, if any.
	Called *models.Patient
	// Current is the displayed patient: the called one, else the latest completed.
	Current *models.Patient
	// Next is the earliest waiting patient.
	Next *models.Patient
}

func buildView(loket string, msg models.Message) View {
	return View{
		Loket:    loket,
		Revision: msg.Revision,
		Patients: msg.Patients,
		Called:   models.FindCalled(msg.Patients),
		Current:  models.SelectDisplayed(msg.Patients),
		Next:     models.SelectNext(msg.Patients),
	}
}

// Waiting counts the waiting patients in the view.
func (v View) Waiting() int {
	n := 0
	for _, p := range v.Patients {
		if p.Status == models.StatusWaiting {
			n++
		}
	}
	return n
}
