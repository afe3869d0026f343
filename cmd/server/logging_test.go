package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreLogging(t *testing.T) {
	originalLogger := log.Logger
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = originalLogger
		zerolog.SetGlobalLevel(originalLevel)
	})
}

func TestSetupLogging_JSON(t *testing.T) {
	restoreLogging(t)
	var buf bytes.Buffer

	setupLogging(&buf, "info", "json")
	log.Info().Str("user_id", "alice").Int("pool_entries", 3).Msg("Realtime channel authorized")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "alice", entry["user_id"])
	assert.Equal(t, float64(3), entry["pool_entries"])
	assert.Equal(t, "Realtime channel authorized", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestSetupLogging_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			restoreLogging(t)
			setupLogging(&bytes.Buffer{}, tt.level, "json")
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestSetupLogging_FiltersBelowLevel(t *testing.T) {
	restoreLogging(t)
	var buf bytes.Buffer

	setupLogging(&buf, "warn", "json")
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestSetupLogging_Console(t *testing.T) {
	restoreLogging(t)
	var buf bytes.Buffer

	setupLogging(&buf, "info", "")
	log.Info().Str("post_id", "3kabc").Msg("Post created")

	out := buf.String()
	assert.Contains(t, out, "Post created")
	assert.Contains(t, out, "post_id=")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
}
