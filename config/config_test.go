package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "AUTO_PROCESS_DELAY", "TICK_INTERVAL",
		"MAX_REQUESTS_PER_HOUR", "MAX_MESSAGE_LENGTH", "PROCESSOR_CONTINUE_ON_ERROR",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "5003", cfg.ServerPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 5*time.Minute, cfg.AutoProcessDelay)
	assert.Equal(t, 10*time.Second, cfg.TickInterval)
	assert.Equal(t, 4, cfg.MaxPerHour)
	assert.Equal(t, 150, cfg.MaxMessageLength)
	assert.False(t, cfg.ContinueOnFailure)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("AUTO_PROCESS_DELAY", "90s")
	t.Setenv("MAX_REQUESTS_PER_HOUR", "2")
	t.Setenv("PROCESSOR_CONTINUE_ON_ERROR", "true")

	cfg := Load()
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 90*time.Second, cfg.AutoProcessDelay)
	assert.Equal(t, 2, cfg.MaxPerHour)
	assert.True(t, cfg.ContinueOnFailure)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("AUTO_PROCESS_DELAY", "not-a-duration")
	t.Setenv("MAX_REQUESTS_PER_HOUR", "lots")

	cfg := Load()
	assert.Equal(t, 5*time.Minute, cfg.AutoProcessDelay)
	assert.Equal(t, 4, cfg.MaxPerHour)
}
