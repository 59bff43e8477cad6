package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "587", cfg.SMTP.Port)
	assert.Equal(t, Duration(10*time.Second), cfg.SMTP.Timeout)
	assert.Equal(t, "https://fcm.googleapis.com/fcm/send", cfg.Push.Endpoint)
	assert.Equal(t, 8, cfg.Notifier.Workers)
	assert.Equal(t, Duration(24*time.Hour), cfg.Scheduler.DailyInterval)
	assert.Equal(t, Duration(7*24*time.Hour), cfg.Scheduler.WeeklyInterval)
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
smtp:
  host: mail.campus.edu
  from: news@campus.edu
  timeout: 5s
notifier:
  workers: 3
scheduler:
  dailyInterval: 12h
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv(configPathEnv, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mail.campus.edu", cfg.SMTP.Host)
	assert.Equal(t, "news@campus.edu", cfg.SMTP.From)
	assert.Equal(t, Duration(5*time.Second), cfg.SMTP.Timeout)
	assert.Equal(t, 3, cfg.Notifier.Workers)
	assert.Equal(t, Duration(12*time.Hour), cfg.Scheduler.DailyInterval)
	// Unset values still get defaults.
	assert.Equal(t, "587", cfg.SMTP.Port)
	assert.Equal(t, Duration(7*24*time.Hour), cfg.Scheduler.WeeklyInterval)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("smtp:\n  host: mail.campus.edu\n"), 0o600))
	t.Setenv(configPathEnv, path)
	t.Setenv("SMTP_HOST", "relay.campus.edu")
	t.Setenv("FCM_SERVER_KEY", "env-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "relay.campus.edu", cfg.SMTP.Host)
	assert.Equal(t, "env-key", cfg.Push.ServerKey)
}

func TestLoadMissingFileFails(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoadJWTFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "unit-test-secret")
	t.Setenv("JWT_EXPIRATION", "2h")

	loadJWT()
	assert.Equal(t, []byte("unit-test-secret"), JWTSecret)
	assert.Equal(t, 2*time.Hour, JWTExpiration)
}

func TestLoadJWTDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_EXPIRATION", "not-a-duration")

	loadJWT()
	assert.NotEmpty(t, JWTSecret)
	assert.Equal(t, 24*time.Hour, JWTExpiration)
}
