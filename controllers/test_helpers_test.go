// file: controllers/test_helpers_test.go
package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go-loket-queue/config"
	"go-loket-queue/models"
	"go-loket-queue/services"
	"go-loket-queue/websocket"
)

// setupTestRouter creates a gin engine with a cookie session store and every
// API route bound to the given mock.
func setupTestRouter(queue *services.MockQueueService, extra ...func(*Dependencies)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("testsession", store))

	deps := Dependencies{Queue: queue, ApplicationURL: "http://queue.test"}
	for _, fn := range extra {
		fn(&deps)
	}
	RegisterRoutes(router, deps)
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}

func samplePatient(id, qn string, status models.Status) models.Patient {
	return models.Patient{
		ID:          id,
		QueueNumber: qn,
		FullName:    "Budi Santoso",
		Specialist:  "Poli Umum",
		Doctor:      "dr. Andi",
		Complaint:   "demam",
		Status:      status,
		LoketNumber: "1",
		CreatedAt:   time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

type fakeHubStats struct{ stats websocket.HubStats }

func (f fakeHubStats) Stats() websocket.HubStats { return f.stats }

type recordingChannelServer struct {
	lokets []string
}

func (r *recordingChannelServer) ServeWs(w http.ResponseWriter, _ *http.Request, loket string) {
	r.lokets = append(r.lokets, loket)
	w.WriteHeader(http.StatusSwitchingProtocols)
}

func defaultCounters() *config.Counters {
	return config.DefaultCounters()
}
