// Package controllers file: controllers/page_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go-loket-queue/logger"
	"go-loket-queue/services"
)

// qrCodeSize is the PNG edge length in pixels.
const qrCodeSize = 256

// Health answers load balancer checks.
func Health(c *gin.Context) {
	logger.Debug.Println("[Health] Health check requested")
	c.String(http.StatusOK, "OK")
}

// PageController serves patient-facing assets.
type PageController struct {
	Queue          services.QueueServiceInterface
	ApplicationURL string
	Encode         services.QRCodeEncoder
}

// NewPageController creates a PageController linking QR codes to applicationURL.
func NewPageController(queue services.QueueServiceInterface, applicationURL string) *PageController {
	return &PageController{Queue: queue, ApplicationURL: applicationURL}
}

// TicketQRCode renders a PNG QR code pointing at the patient's ticket page.
func (pc *PageController) TicketQRCode(c *gin.Context) {
	id := c.Param("id")
	if _, err := pc.Queue.Get(id); err != nil {
		respondError(c, "PageController.TicketQRCode", err)
		return
	}
	png, err := services.GenerateTicketQRCode(pc.ApplicationURL, id, qrCodeSize, pc.Encode)
	if err != nil {
		logger.Error.Printf("[PageController.TicketQRCode] Failed to generate QR code for %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
