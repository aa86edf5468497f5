// file: controllers/admin_controller_test.go
package controllers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-loket-queue/config"
	"go-loket-queue/models"
	"go-loket-queue/services"
	"go-loket-queue/websocket"
)

func TestStats(t *testing.T) {
	queue := new(services.MockQueueService)
	queue.On("Stats").Return(models.QueueStats{Total: 3, Waiting: 1, Called: 1, Completed: 1})
	router := setupTestRouter(queue)

	w := doJSON(router, http.MethodGet, "/api/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":3,"waiting":1,"called":1,"completed":1}`, w.Body.String())
}

func TestReset(t *testing.T) {
	queue := new(services.MockQueueService)
	queue.On("Reset").Return()
	router := setupTestRouter(queue)

	w := doJSON(router, http.MethodPost, "/api/reset", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	queue.AssertCalled(t, "Reset")
}

func TestCounters(t *testing.T) {
	queue := new(services.MockQueueService)
	queue.On("Counters").Return(defaultCounters())
	router := setupTestRouter(queue)

	w := doJSON(router, http.MethodGet, "/api/counters", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got []config.Counter
	decode(t, w, &got)
	require.Len(t, got, 4)
	assert.Equal(t, "1", got[0].Loket)
	assert.Equal(t, "A", got[0].Prefix)
}

func TestHubStats(t *testing.T) {
	queue := new(services.MockQueueService)
	stats := websocket.HubStats{Channels: []websocket.ChannelStats{{Loket: "1", Subscribers: 2, Sent: 5}}}
	router := setupTestRouter(queue, func(d *Dependencies) { d.HubStats = fakeHubStats{stats} })

	w := doJSON(router, http.MethodGet, "/api/hub/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got websocket.HubStats
	decode(t, w, &got)
	assert.Equal(t, stats, got)
}

func TestHubStats_NoHub(t *testing.T) {
	router := setupTestRouter(new(services.MockQueueService))

	w := doJSON(router, http.MethodGet, "/api/hub/stats", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"channels":[]}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(new(services.MockQueueService))

	w := doJSON(router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestTicketQRCode(t *testing.T) {
	queue := new(services.MockQueueService)
	queue.On("Get", "p1").Return(samplePatient("p1", "A-001", models.StatusWaiting), nil)
	router := setupTestRouter(queue)

	w := doJSON(router, http.MethodGet, "/api/patients/p1/qrcode", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte("\x89PNG"), w.Body.Bytes()[:4])
}

func TestTicketQRCode_EncodesTicketURL(t *testing.T) {
	queue := new(services.MockQueueService)
	queue.On("Get", "p1").Return(samplePatient("p1", "A-001", models.StatusWaiting), nil)
	pages := NewPageController(queue, "http://queue.test/")
	var content string
	pages.Encode = func(c string, _ qrcode.RecoveryLevel, _ int) ([]byte, error) {
		content = c
		return []byte("png"), nil
	}

	router := setupTestRouter(queue)
	router.GET("/qr/:id", pages.TicketQRCode)
	w := doJSON(router, http.MethodGet, "/qr/p1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://queue.test/patient?id=p1", content)

	pages.Encode = func(string, qrcode.RecoveryLevel, int) ([]byte, error) {
		return nil, errors.New("encoder broke")
	}
	w = doJSON(router, http.MethodGet, "/qr/p1", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTicketQRCode_UnknownPatient(t *testing.T) {
	queue := new(services.MockQueueService)
	queue.On("Get", "nope").Return(models.Patient{}, services.ErrNotFound)
	router := setupTestRouter(queue)

	w := doJSON(router, http.MethodGet, "/api/patients/nope/qrcode", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChannelSubscribe(t *testing.T) {
	queue := new(services.MockQueueService)
	queue.On("Counters").Return(defaultCounters())
	server := &recordingChannelServer{}
	router := setupTestRouter(queue, func(d *Dependencies) { d.Channels = server })

	w := doJSON(router, http.MethodGet, "/ws/loket/2", nil)
	assert.Equal(t, http.StatusSwitchingProtocols, w.Code)

	w = doJSON(router, http.MethodGet, "/ws/loket/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, []string{"2"}, server.lokets)
}
