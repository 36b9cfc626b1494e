package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"rescue-sim/server/internal/config"
)

func testLoggerConfig() config.LoggerConfig {
	return config.Default().Logger
}

func TestInitializeRunsOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var first, second bytes.Buffer
	Initialize(testLoggerConfig(), zapcore.AddSync(&first))
	Initialize(testLoggerConfig(), zapcore.AddSync(&second))

	GetLogger().Info("tick loop started")
	Sync()
	assert.Contains(t, first.String(), "tick loop started")
	assert.Contains(t, first.String(), "rescue-sim.")
	assert.Empty(t, second.String())
}

func TestConsoleLevelsAreColored(t *testing.T) {
	var buf bytes.Buffer
	logger := New(testLoggerConfig(), zapcore.AddSync(&buf))
	logger.Warn("npc stuck")

	assert.Contains(t, buf.String(), colorYellow+"WARN"+colorReset)
}

func TestJSONFormatAndFileOutput(t *testing.T) {
	cfg := testLoggerConfig()
	cfg.Format = "json"
	cfg.Level = "debug"
	cfg.LogFile = filepath.Join(t.TempDir(), "server.log")

	var buf bytes.Buffer
	logger := New(cfg, zapcore.AddSync(&buf))
	logger.Debug("victim delivered")
	require.NoError(t, logger.Sync())

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "{"), line)
	assert.Contains(t, line, `"level":"DEBUG"`)

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "victim delivered")
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	cfg := testLoggerConfig()
	cfg.Level = "chatty"
	var buf bytes.Buffer
	logger := New(cfg, zapcore.AddSync(&buf))
	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestGetLoggerFallback(t *testing.T) {
	ResetForTest()
	assert.NotNil(t, GetLogger())
}
