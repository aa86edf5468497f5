// services/qrcode_service.go
package services

import (
	"errors"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

// QRCodeEncoder matches qrcode.Encode so tests can substitute it.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// TicketURL is the patient-facing page that shows a ticket's live status.
func TicketURL(applicationURL, patientID string) string {
	if applicationURL == "" {
		applicationURL = "http://localhost:8080"
	}
	return strings.TrimRight(applicationURL, "/") + "/patient?id=" + url.QueryEscape(patientID)
}

// GenerateTicketQRCode renders a PNG QR code linking to the patient's ticket page.
func GenerateTicketQRCode(applicationURL, patientID string, size int, encode QRCodeEncoder) ([]byte, error) {
	if size <= 0 {
		return nil, errors.New("invalid dimensions: size must be positive")
	}
	if patientID == "" {
		return nil, errors.New("patient id is required")
	}
	if encode == nil {
		encode = qrcode.Encode
	}
	png, err := encode(TicketURL(applicationURL, patientID), qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}
