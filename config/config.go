// Package config loads runtime settings from .env / environment variables and
// the counter layout from YAML.
// file: config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"go-loket-queue/logger"
)

// Config holds the process-wide settings.
type Config struct {
	AppEnv         string
	Port           string
	ApplicationURL string
	WebsocketURL   string
	AllowedOrigins []string
	SessionSecret  string

	Storage  string // "file" or "mariadb"
	DataFile string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	CountersFile string

	MetricsEnabled   bool
	MetricsNamespace string
	XRayEnabled      bool

	RegisterRatePerSec float64
	RegisterBurst      int

	LogDir string
}

var (
	cfg  *Config
	once sync.Once
)

// LoadConfig reads .env (if present) and the environment exactly once.
func LoadConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logger.Info.Println("[LoadConfig] .env file not found, relying on environment variables")
		}
		cfg = FromEnv()
	})
	return cfg
}

// FromEnv builds a Config from the current environment without caching.
func FromEnv() *Config {
	port := getEnv("PORT", "8080")
	return &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           port,
		ApplicationURL: getEnv("APPLICATION_URL", "http://localhost:"+port),
		WebsocketURL:   getEnv("WEBSOCKET_URL", "ws://localhost:"+port+"/ws"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		SessionSecret:  getEnv("SESSION_SECRET", "secret"),

		Storage:  getEnv("STORAGE", "file"),
		DataFile: getEnv("DATA_FILE", "patients.json"),

		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBName:     os.Getenv("DB_NAME"),

		CountersFile: os.Getenv("COUNTERS_FILE"),

		MetricsEnabled:   getBool("METRICS_ENABLED", false),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "LoketQueue"),
		XRayEnabled:      getBool("XRAY_ENABLED", false),

		RegisterRatePerSec: getFloat("REGISTER_RATE_PER_SEC", 2),
		RegisterBurst:      getInt("REGISTER_BURST", 10),

		LogDir: os.Getenv("LOG_DIR"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
