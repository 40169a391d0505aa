package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/registration-agent/pkg/config"
)

// swapGlobal 临时替换全局 logger，测试结束恢复
func swapGlobal(t *testing.T, l *zap.Logger) {
	t.Helper()
	mu.Lock()
	prev := baseLogger
	baseLogger = l
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		baseLogger = prev
		mu.Unlock()
	})
}

func TestLoggerAddsDefaultFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	swapGlobal(t, zap.New(core))
	SetDefaultCollector("registration")
	t.Cleanup(func() { SetDefaultCollector("main") })

	Debug("debug msg", zap.Int("n", 1))
	Info("info msg")
	Warn("warn msg")
	Error("error msg")

	entries := logs.All()
	require.Len(t, entries, 4)
	first := entries[0].ContextMap()
	assert.Equal(t, "registration", first["collector"])
	assert.NotEmpty(t, first["goid"])
	assert.EqualValues(t, 1, first["n"])
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestLoggerRespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	swapGlobal(t, zap.New(core))

	Debug("dropped")
	Info("dropped")
	Warn("kept")
	assert.Equal(t, 1, logs.Len())
}

func TestPanicPanics(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	swapGlobal(t, zap.New(core))
	assert.Panics(t, func() { Panic("panic msg") })
}

func TestUninitializedLoggerIsNop(t *testing.T) {
	swapGlobal(t, zap.NewNop())
	assert.NotPanics(t, func() { Info("nobody listens") })
	assert.NoError(t, Sync())
}

func TestNewWritesRotatedFile(t *testing.T) {
	dir := t.TempDir()
	l, err := New(&config.ZapLogConfig{
		Level:     "debug",
		Format:    "json",
		Path:      dir,
		MaxSize:   1,
		MaxBackup: 3,
		MaxAge:    7,
	})
	require.NoError(t, err)
	l.Info("hello file")
	_ = l.Sync()

	matches, err := filepath.Glob(filepath.Join(dir, "registration-agent-*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	b, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), "hello file")
}

func TestNewCountBasedRotation(t *testing.T) {
	dir := t.TempDir()
	l, err := New(&config.ZapLogConfig{
		Level:     "info",
		Format:    "console",
		Path:      dir,
		MaxSize:   1,
		MaxBackup: 5,
		MaxAge:    0,
	})
	require.NoError(t, err)
	l.Info("kept by count")
	_ = l.Sync()

	matches, err := filepath.Glob(filepath.Join(dir, "registration-agent-*.log"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}
