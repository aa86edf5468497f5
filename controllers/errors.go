// Package controllers provides the HTTP handlers of the queue API.
// File: controllers/errors.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go-loket-queue/logger"
	"go-loket-queue/services"
)

// statusFor maps service error categories to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": "..."} with the mapped status.
func respondError(c *gin.Context, tag string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error.Printf("[%s] %v", tag, err)
	} else {
		logger.Warn.Printf("[%s] %v", tag, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
