package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanmail/vaadin-selenium/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggerConfig{Level: "debug", Format: "json"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Debug("Clicking.", zap.String("locator", "xpath=//*[@id='save']"))
	require.NoError(t, logger.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "Clicking.", entry["msg"])
	assert.Equal(t, "xpath=//*[@id='save']", entry["locator"])
}

func TestNewConsoleFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggerConfig{Level: "warn", Format: "console"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Info("Hidden.")
	logger.Warn("Wait timed out.", zap.String("wait", "overlays"))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "Hidden.")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "Wait timed out.")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestNewDefaults(t *testing.T) {
	logger, err := New(config.NewDefaultConfig().Logger, zapcore.AddSync(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "chatty"}, zapcore.AddSync(&bytes.Buffer{}))
	assert.Error(t, err)

	_, err = New(config.LoggerConfig{Level: "info", Format: "xml"}, zapcore.AddSync(&bytes.Buffer{}))
	assert.Error(t, err)
}
