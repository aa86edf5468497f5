// Package controllers file: controllers/admin_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go-loket-queue/logger"
	"go-loket-queue/services"
	"go-loket-queue/websocket"
)

// HubStatsProvider exposes broadcast counters.
type HubStatsProvider interface {
	Stats() websocket.HubStats
}

// AdminController serves queue-wide staff operations.
type AdminController struct {
	Queue services.QueueServiceInterface
	Hub   HubStatsProvider
}

// NewAdminController initializes a new instance of AdminController
func NewAdminController(queue services.QueueServiceInterface, hub HubStatsProvider) *AdminController {
	return &AdminController{Queue: queue, Hub: hub}
}

// Stats returns ticket counts by status.
func (ac *AdminController) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, ac.Queue.Stats())
}

// Reset clears every patient and restarts numbering.
func (ac *AdminController) Reset(c *gin.Context) {
	logger.Warn.Printf("[AdminController.Reset] Queue reset requested from %s", c.ClientIP())
	ac.Queue.Reset()
	c.JSON(http.StatusOK, gin.H{"message": "Queue reset"})
}

// Counters lists the configured counters.
func (ac *AdminController) Counters(c *gin.Context) {
	c.JSON(http.StatusOK, ac.Queue.Counters().Counters)
}

// HubStats returns per-channel delivery counters.
func (ac *AdminController) HubStats(c *gin.Context) {
	if ac.Hub == nil {
		c.JSON(http.StatusOK, websocket.HubStats{Channels: []websocket.ChannelStats{}})
		return
	}
	c.JSON(http.StatusOK, ac.Hub.Stats())
}
