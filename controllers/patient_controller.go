// Package controllers file: controllers/patient_controller.go
package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go-loket-queue/logger"
	"go-loket-queue/models"
	"go-loket-queue/services"
)

// PatientController serves registration, lookup and staff actions on patients.
type PatientController struct {
	Queue services.QueueServiceInterface
}

// NewPatientController creates an instance of PatientController
func NewPatientController(queue services.QueueServiceInterface) *PatientController {
	logger.Debug.Println("[NewPatientController] Initializing PatientController")
	return &PatientController{Queue: queue}
}

// Create registers a new patient and returns 201 with the issued ticket.
func (pc *PatientController) Create(c *gin.Context) {
	var in models.NewPatient
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, "PatientController.Create", fmt.Errorf("%w: %v", services.ErrValidation, err))
		return
	}
	p, err := pc.Queue.Create(in)
	if err != nil {
		respondError(c, "PatientController.Create", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// List returns every patient.
func (pc *PatientController) List(c *gin.Context) {
	c.JSON(http.StatusOK, pc.Queue.List())
}

// Get returns a single patient by id.
func (pc *PatientController) Get(c *gin.Context) {
	p, err := pc.Queue.Get(c.Param("id"))
	if err != nil {
		respondError(c, "PatientController.Get", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Check returns the most recent active registration for a name, or null.
func (pc *PatientController) Check(c *gin.Context) {
	p := pc.Queue.FindActiveByName(c.Param("name"))
	if p == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Update applies a status change with an optional reassignment.
func (pc *PatientController) Update(c *gin.Context) {
	var req services.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "PatientController.Update", fmt.Errorf("%w: %v", services.ErrValidation, err))
		return
	}
	pc.transition(c, req)
}

// UpdateStatus applies a status-only change.
func (pc *PatientController) UpdateStatus(c *gin.Context) {
	var body struct {
		Status models.Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, "PatientController.UpdateStatus", fmt.Errorf("%w: %v", services.ErrValidation, err))
		return
	}
	if body.Status == "" {
		respondError(c, "PatientController.UpdateStatus", fmt.Errorf("%w: status is required", services.ErrValidation))
		return
	}
	pc.transition(c, services.TransitionRequest{Status: body.Status})
}

func (pc *PatientController) transition(c *gin.Context, req services.TransitionRequest) {
	id := c.Param("id")
	p, err := pc.Queue.Transition(id, req)
	if err != nil {
		respondError(c, "PatientController.transition", err)
		return
	}
	logger.Info.Printf("[PatientController.transition] %s is now %s on loket %s", p.QueueNumber, p.Status, p.LoketNumber)
	c.JSON(http.StatusOK, p)
}

// Recall re-announces a called patient.
func (pc *PatientController) Recall(c *gin.Context) {
	ev, err := pc.Queue.Recall(c.Param("id"))
	if err != nil {
		respondError(c, "PatientController.Recall", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recall triggered", "patient": ev.Patient})
}

// ListByLoket returns the patients assigned to one counter.
func (pc *PatientController) ListByLoket(c *gin.Context) {
	c.JSON(http.StatusOK, pc.Queue.ListByLoket(c.Param("loket")))
}

// NextWaiting returns the earliest waiting patient of a counter.
func (pc *PatientController) NextWaiting(c *gin.Context) {
	p := pc.Queue.NextWaiting(c.Param("loket"))
	if p == nil {
		c.JSON(http.StatusOK, gin.H{"message": "No waiting queue"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// CallNext completes the current call on a counter and calls the next patient.
func (pc *PatientController) CallNext(c *gin.Context) {
	loket := c.Param("loket")
	p, err := pc.Queue.CallNext(loket)
	if err != nil {
		respondError(c, "PatientController.CallNext", err)
		return
	}
	if p == nil {
		c.JSON(http.StatusOK, gin.H{"message": "No waiting queue"})
		return
	}
	c.JSON(http.StatusOK, p)
}
