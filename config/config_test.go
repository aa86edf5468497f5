// file: config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "APP_ENV", "STORAGE", "DATA_FILE", "ALLOWED_ORIGINS", "REGISTER_BURST", "METRICS_ENABLED", "APPLICATION_URL", "WEBSOCKET_URL"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "file", cfg.Storage)
	assert.Equal(t, "patients.json", cfg.DataFile)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "ws://localhost:8080/ws", cfg.WebsocketURL)
	assert.Equal(t, 10, cfg.RegisterBurst)
	assert.False(t, cfg.MetricsEnabled)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("APPLICATION_URL", "")
	t.Setenv("STORAGE", "mariadb")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("REGISTER_RATE_PER_SEC", "0.5")
	t.Setenv("REGISTER_BURST", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "http://localhost:9000", cfg.ApplicationURL)
	assert.Equal(t, "mariadb", cfg.Storage)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, 0.5, cfg.RegisterRatePerSec)
	assert.Equal(t, 10, cfg.RegisterBurst)
}

func TestDefaultCounters(t *testing.T) {
	c := DefaultCounters()

	require.NoError(t, c.Validate())
	assert.Equal(t, []string{"1", "2", "3", "4"}, c.Lokets())

	ctr, ok := c.BySpecialist("Poli Anak")
	require.True(t, ok)
	assert.Equal(t, "3", ctr.Loket)
	assert.Equal(t, "C", ctr.Prefix)

	_, ok = c.BySpecialist("Poli Mata")
	assert.False(t, ok)
	assert.True(t, c.HasLoket("4"))
	assert.False(t, c.HasLoket("5"))
}

func TestParseCounters(t *testing.T) {
	data := []byte(`
counters:
  - loket: "1"
    specialist: Poli Umum
    prefix: A
    doctors: ["dr. X"]
  - loket: "2"
    specialist: Poli Mata
    prefix: M
`)
	c, err := ParseCounters(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, c.Lokets())
	assert.Equal(t, []string{"dr. X"}, c.Counters[0].Doctors)
}

func TestParseCounters_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":                `counters: []`,
		"missing prefix":       "counters:\n  - loket: \"1\"\n    specialist: Poli Umum\n",
		"duplicate loket":      "counters:\n  - {loket: \"1\", specialist: A, prefix: A}\n  - {loket: \"1\", specialist: B, prefix: B}\n",
		"duplicate specialist": "counters:\n  - {loket: \"1\", specialist: A, prefix: A}\n  - {loket: \"2\", specialist: A, prefix: B}\n",
		"duplicate prefix":     "counters:\n  - {loket: \"1\", specialist: A, prefix: A}\n  - {loket: \"2\", specialist: B, prefix: A}\n",
		"not yaml":             "counters: [",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCounters([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadCounters(t *testing.T) {
	c, err := LoadCounters("")
	require.NoError(t, err)
	assert.Len(t, c.Counters, 4)

	path := filepath.Join(t.TempDir(), "counters.yaml")
	require.NoError(t, os.WriteFile(path, []byte("counters:\n  - {loket: \"7\", specialist: Poli Mata, prefix: M}\n"), 0o600))
	c, err = LoadCounters(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, c.Lokets())

	_, err = LoadCounters(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
