// Package controllers file: controllers/channel_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go-loket-queue/logger"
	"go-loket-queue/services"
)

// ChannelServer upgrades a request into a channel subscription.
type ChannelServer interface {
	ServeWs(w http.ResponseWriter, r *http.Request, loket string)
}

// ChannelController attaches displays to a counter's live channel.
type ChannelController struct {
	Queue  services.QueueServiceInterface
	Server ChannelServer
}

// NewChannelController creates an instance of ChannelController
func NewChannelController(queue services.QueueServiceInterface, server ChannelServer) *ChannelController {
	return &ChannelController{Queue: queue, Server: server}
}

// Subscribe serves GET /ws/loket/:loket for configured counters only.
func (cc *ChannelController) Subscribe(c *gin.Context) {
	loket := c.Param("loket")
	if !cc.Queue.Counters().HasLoket(loket) {
		logger.Warn.Printf("[ChannelController.Subscribe] Unknown loket %q", loket)
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown loket " + loket})
		return
	}
	cc.Server.ServeWs(c.Writer, c.Request, loket)
}
