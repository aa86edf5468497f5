// main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go-loket-queue/config"
	"go-loket-queue/controllers"
	"go-loket-queue/logger"
	"go-loket-queue/middleware"
	"go-loket-queue/repository"
	"go-loket-queue/services"
	"go-loket-queue/websocket"
	"golang.org/x/time/rate"
)

const metricsInterval = time.Minute

func main() {
	cfg := config.LoadConfig()
	if cfg.LogDir != "" {
		if err := logger.InitLogger(cfg.LogDir); err != nil {
			logger.Error.Fatalf("[main] Failed to initialise logger in %s: %v", cfg.LogDir, err)
		}
	}
	defer logger.Close()
	logger.SetLogLevel(cfg.AppEnv)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	counters, err := config.LoadCounters(cfg.CountersFile)
	if err != nil {
		logger.Error.Fatalf("[main] Failed to load counters: %v", err)
	}

	queue, hub, err := buildQueue(cfg, counters)
	if err != nil {
		logger.Error.Fatalf("[main] %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsEnabled {
		metrics, err := websocket.NewCloudWatchMetrics(cfg.MetricsNamespace)
		if err != nil {
			logger.Error.Printf("[main] CloudWatch metrics disabled: %v", err)
		} else {
			go websocket.RunMetricsReporter(ctx, hub, metrics, metricsInterval)
		}
	}

	router := setupRouter(cfg, queue, hub)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: wrapHandler(cfg, router),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("[main] Shutdown error: %v", err)
		}
	}()

	logger.Info.Printf("[main] Server running on http://localhost:%s (storage=%s, lokets=%v)", cfg.Port, cfg.Storage, counters.Lokets())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error.Fatalf("[main] Failed to run server: %v", err)
	}
}

// buildQueue restores persisted patients and connects the service to the hub.
func buildQueue(cfg *config.Config, counters *config.Counters) (*services.QueueService, *websocket.Hub, error) {
	queue := services.NewQueueService(counters, services.NewQueueStore())

	repo, err := repository.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info.Printf("[buildQueue] Using %q storage", cfg.Storage)
	queue.SetRepository(repo)
	if err := queue.Restore(); err != nil {
		return nil, nil, err
	}

	hub := websocket.NewHub(queue)
	queue.SetBroadcaster(hub)
	return queue, hub, nil
}

// setupRouter builds the gin engine with sessions and every route.
func setupRouter(cfg *config.Config, queue services.QueueServiceInterface, hub *websocket.Hub) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400, // one clinic day
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("loketsession", store))

	limiter := middleware.NewRateLimiter(middleware.RateLimitSettings{
		PerSec: rate.Limit(cfg.RegisterRatePerSec),
		Burst:  cfg.RegisterBurst,
	})

	deps := controllers.Dependencies{
		Queue:          queue,
		ApplicationURL: cfg.ApplicationURL,
		RegisterLimit:  middleware.RateLimit(limiter),
	}
	if hub != nil {
		deps.Channels = hub
		deps.HubStats = hub
	}
	controllers.RegisterRoutes(router, deps)
	return router
}

// wrapHandler adds CORS for the browser front-ends and, when enabled, X-Ray
// request segments.
func wrapHandler(cfg *config.Config, router http.Handler) http.Handler {
	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	if cfg.XRayEnabled {
		logger.Info.Println("[main] AWS X-Ray tracing enabled")
		handler = xray.Handler(xray.NewFixedSegmentNamer("go-loket-queue"), handler)
	}
	return handler
}
