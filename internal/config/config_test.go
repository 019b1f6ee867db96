package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := process(context.Background(), envconfig.MapLookuper(nil))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.LoginRateLimit)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Nil(t, cfg.SMTPSender())

	_, ok := cfg.S3Config()
	assert.False(t, ok)
}

func TestOverrides(t *testing.T) {
	cfg, err := process(context.Background(), envconfig.MapLookuper(map[string]string{
		"BASE_URL":            "https://lost.campus.edu",
		"SMTP_HOST":           "smtp.campus.edu",
		"SMTP_PORT":           "2525",
		"SMTP_USER":           "mailer",
		"SMTP_PASS":           "hunter2",
		"S3_BUCKET":           "photos",
		"S3_ACCESS_KEY":       "ak",
		"S3_SECRET_KEY":       "sk",
		"S3_FORCE_PATH_STYLE": "true",
		"TOKEN_TTL":           "30m",
		"COOKIE_SECURE":       "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://lost.campus.edu", cfg.BaseURL)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.True(t, cfg.CookieSecure)

	sender := cfg.SMTPSender()
	require.NotNil(t, sender)
	assert.Equal(t, "smtp.campus.edu", sender.Host)
	assert.Equal(t, 2525, sender.Port)
	assert.Equal(t, "hunter2", sender.Password)

	s3, ok := cfg.S3Config()
	require.True(t, ok)
	assert.Equal(t, "photos", s3.Bucket)
	assert.True(t, s3.ForcePathStyle)
	assert.Equal(t, "us-east-1", s3.Region)
}

func TestRejectsNonPositiveTTL(t *testing.T) {
	_, err := process(context.Background(), envconfig.MapLookuper(map[string]string{"TOKEN_TTL": "0s"}))
	assert.Error(t, err)

	_, err = process(context.Background(), envconfig.MapLookuper(map[string]string{"SESSION_TTL": "bogus"}))
	assert.Error(t, err)
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FINDMATE_TEST_ONLY=1\n"), 0o600))
	t.Setenv("BASE_URL", "https://from-env.example")

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.example", cfg.BaseURL)
	assert.Equal(t, "1", os.Getenv("FINDMATE_TEST_ONLY"))
	os.Unsetenv("FINDMATE_TEST_ONLY")

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
