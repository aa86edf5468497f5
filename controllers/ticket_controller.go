// Package controllers file: controllers/ticket_controller.go
package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go-loket-queue/logger"
	"go-loket-queue/models"
	"go-loket-queue/services"
)

const ticketSessionKey = "ticket"

// TicketController keeps the patient's last known ticket in a cookie session.
type TicketController struct {
	Queue services.QueueServiceInterface
}

// NewTicketController creates an instance of TicketController
func NewTicketController(queue services.QueueServiceInterface) *TicketController {
	return &TicketController{Queue: queue}
}

// Show returns the live record behind the stored ticket, or null. A ticket
// whose registration is gone, replaced or completed is discarded.
func (tc *TicketController) Show(c *gin.Context) {
	session := sessions.Default(c)
	raw, ok := session.Get(ticketSessionKey).(string)
	if !ok || raw == "" {
		c.JSON(http.StatusOK, nil)
		return
	}

	var t models.Ticket
	if err := json.Unmarshal([]byte(raw), &t); err != nil || !t.Complete() {
		logger.Warn.Println("[TicketController.Show] Discarding unreadable ticket")
		tc.discard(c, session)
		return
	}

	p := tc.Queue.FindActiveByName(t.FullName)
	if p == nil || (t.ID != "" && p.ID != t.ID) || p.Status == models.StatusCompleted {
		logger.Info.Printf("[TicketController.Show] Ticket %s for %q is no longer active", t.QueueNumber, t.FullName)
		tc.discard(c, session)
		return
	}

	c.JSON(http.StatusOK, p)
}

// Store saves the ticket of a registered patient. Only the server's copy of
// the record is kept.
func (tc *TicketController) Store(c *gin.Context) {
	var t models.Ticket
	if err := c.ShouldBindJSON(&t); err != nil {
		respondError(c, "TicketController.Store", fmt.Errorf("%w: %v", services.ErrValidation, err))
		return
	}
	if t.ID == "" {
		respondError(c, "TicketController.Store", fmt.Errorf("%w: id is required", services.ErrValidation))
		return
	}
	p, err := tc.Queue.Get(t.ID)
	if err != nil {
		respondError(c, "TicketController.Store", err)
		return
	}

	stored := models.TicketFor(p)
	data, err := json.Marshal(stored)
	if err != nil {
		respondError(c, "TicketController.Store", err)
		return
	}
	session := sessions.Default(c)
	session.Set(ticketSessionKey, string(data))
	if err := session.Save(); err != nil {
		logger.Error.Printf("[TicketController.Store] Error saving session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save ticket"})
		return
	}
	c.JSON(http.StatusOK, stored)
}

// Clear forgets the stored ticket.
func (tc *TicketController) Clear(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(ticketSessionKey)
	if err := session.Save(); err != nil {
		logger.Error.Printf("[TicketController.Clear] Error saving session: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ticket cleared"})
}

func (tc *TicketController) discard(c *gin.Context, session sessions.Session) {
	session.Delete(ticketSessionKey)
	if err := session.Save(); err != nil {
		logger.Error.Printf("[TicketController.discard] Error saving session: %v", err)
	}
	c.JSON(http.StatusOK, nil)
}
