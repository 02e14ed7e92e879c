package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "MAX_UPLOAD_SIZE_BYTES", "FLASH_TTL", "PROFILE", "PROFILE_PATH", "DATABASE_PATH", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		t.Setenv(k, "")
	}
	// t.Setenv with "" still marks the variable as set; defaults apply only to the parsed ones.
	cfg := FromEnv()
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadSizeBytes)
	assert.Equal(t, 5*time.Minute, cfg.FlashTTL)
	assert.Equal(t, float64(10), cfg.RateLimitRPS)
	assert.Equal(t, 30, cfg.RateLimitBurst)
	assert.Equal(t, "", cfg.DatabasePath)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAX_UPLOAD_SIZE_BYTES", "2048")
	t.Setenv("FLASH_TTL", "30s")
	t.Setenv("PROFILE", "INTESA")
	t.Setenv("DATABASE_PATH", "/tmp/audit.db")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "nope")

	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(2048), cfg.MaxUploadSizeBytes)
	assert.Equal(t, 30*time.Second, cfg.FlashTTL)
	assert.Equal(t, "intesa", cfg.Profile)
	assert.Equal(t, "/tmp/audit.db", cfg.DatabasePath)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 30, cfg.RateLimitBurst)
}

func TestFromEnvRejectsBadUploadSize(t *testing.T) {
	t.Setenv("MAX_UPLOAD_SIZE_BYTES", "-5")
	assert.Equal(t, int64(10*1024*1024), FromEnv().MaxUploadSizeBytes)
}
