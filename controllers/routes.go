// Package controllers file: controllers/routes.go
package controllers

import (
	"github.com/gin-gonic/gin"
	"go-loket-queue/services"
)

// Dependencies groups what the HTTP layer needs.
type Dependencies struct {
	Queue          services.QueueServiceInterface
	Channels       ChannelServer
	HubStats       HubStatsProvider
	ApplicationURL string
	// RegisterLimit guards POST /api/patients; nil disables it.
	RegisterLimit gin.HandlerFunc
}

// RegisterRoutes attaches every API route to router.
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	patients := NewPatientController(deps.Queue)
	admin := NewAdminController(deps.Queue, deps.HubStats)
	pages := NewPageController(deps.Queue, deps.ApplicationURL)
	tickets := NewTicketController(deps.Queue)

	router.GET("/health", Health)

	api := router.Group("/api")
	{
		create := []gin.HandlerFunc{patients.Create}
		if deps.RegisterLimit != nil {
			create = append([]gin.HandlerFunc{deps.RegisterLimit}, create...)
		}
		api.POST("/patients", create...)
		api.GET("/patients", patients.List)
		api.GET("/patients/check/:name", patients.Check)
		api.GET("/patients/loket/:loket", patients.ListByLoket)
		api.GET("/patients/loket/:loket/next", patients.NextWaiting)
		api.POST("/patients/loket/:loket/call-next", patients.CallNext)
		api.GET("/patients/:id", patients.Get)
		api.PUT("/patients/:id", patients.Update)
		api.PUT("/patients/:id/status", patients.UpdateStatus)
		api.POST("/patients/:id/recall", patients.Recall)
		api.GET("/patients/:id/qrcode", pages.TicketQRCode)

		api.GET("/stats", admin.Stats)
		api.POST("/reset", admin.Reset)
		api.GET("/counters", admin.Counters)
		api.GET("/hub/stats", admin.HubStats)

		api.GET("/ticket", tickets.Show)
		api.PUT("/ticket", tickets.Store)
		api.DELETE("/ticket", tickets.Clear)
	}

	if deps.Channels != nil {
		channels := NewChannelController(deps.Queue, deps.Channels)
		router.GET("/ws/loket/:loket", channels.Subscribe)
	}
}
