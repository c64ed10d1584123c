package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return FromZap(zap.New(core)), logs
}

func TestRedaction(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		redacted bool
	}{
		{"api key", "api_key", "abc123", true},
		{"mixed case key", "Authorization", "key abc123", true},
		{"token suffix", "refresh_token", "t", true},
		{"plain key", "colour", "4", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, logs := observed()
			log.Info("msg", tt.key, tt.value)
			require.Equal(t, 1, logs.Len())
			got := logs.All()[0].ContextMap()[tt.key]
			if tt.redacted {
				assert.Equal(t, redacted, got)
			} else {
				assert.Equal(t, tt.value, got)
			}
		})
	}
}

func TestWithCarriesFields(t *testing.T) {
	log, logs := observed()
	log.With("component", "fetch", "secret", "s").Warn("slow")
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "fetch", entry.ContextMap()["component"])
	assert.Equal(t, redacted, entry.ContextMap()["secret"])
}

func TestOddKeyValuesKeptVerbatim(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	assert.Equal(t, []interface{}{"a", 1, "dangling"}, out)
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"dev", "prod"} {
		l, err := New(mode)
		require.NoError(t, err)
		require.NotNil(t, l)
	}
	Nop().Info("discarded")
}
