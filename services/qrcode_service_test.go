// file: services/qrcode_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
)

// Mock encoder function (successful)
func mockQRCodeEncoderSuccess(content string, level qrcode.RecoveryLevel, size int) ([]byte, error) {
	return []byte("mock_qr_code_data:" + content), nil
}

// Mock encoder function (failure)
func mockQRCodeEncoderFailure(content string, level qrcode.RecoveryLevel, size int) ([]byte, error) {
	return nil, errors.New("QR code generation failed")
}

// Test: Generate QR Code Successfully
func TestGenerateTicketQRCode_Success(t *testing.T) {
	data, err := GenerateTicketQRCode("http://clinic.local/", "abc 1", 200, mockQRCodeEncoderSuccess)

	assert.NoError(t, err)
	assert.Equal(t, "mock_qr_code_data:http://clinic.local/patient?id=abc+1", string(data))
}

// Test: Fail QR Code Generation Due to Negative Dimensions
func TestGenerateTicketQRCode_InvalidDimensions(t *testing.T) {
	data, err := GenerateTicketQRCode("", "p1", -100, mockQRCodeEncoderSuccess)

	assert.Error(t, err)
	assert.Nil(t, data)
	assert.Equal(t, "invalid dimensions: size must be positive", err.Error())
}

// Test: QR Code Generation Fails Due to Encoder Error
func TestGenerateTicketQRCode_EncoderFails(t *testing.T) {
	data, err := GenerateTicketQRCode("", "p1", 200, mockQRCodeEncoderFailure)

	assert.Error(t, err)
	assert.Nil(t, data)
	assert.Equal(t, "QR code generation failed", err.Error())
}

// Test: the real encoder produces a PNG
func TestGenerateTicketQRCode_RealEncoder(t *testing.T) {
	data, err := GenerateTicketQRCode("", "p1", 128, nil)

	assert.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}

func TestTicketURL_DefaultsToLocalhost(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/patient?id=p1", TicketURL("", "p1"))
}
