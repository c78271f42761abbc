package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerDefaults(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf)

	formatter, ok := l.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	assert.Equal(t, time.RFC3339Nano, formatter.TimestampFormat)
	assert.True(t, formatter.FullTimestamp)
	assert.Equal(t, &buf, l.Out)
}

func TestGetLogger(t *testing.T) {
	t.Run("falls back to the global logger", func(t *testing.T) {
		entry := G(context.Background())
		assert.Equal(t, L.Logger, entry.Logger)
	})

	t.Run("returns the context logger", func(t *testing.T) {
		custom := logrus.NewEntry(logrus.New()).WithField("request_id", "abc")
		ctx := WithLogger(context.Background(), custom)

		entry := GetLogger(ctx)
		assert.Equal(t, custom.Logger, entry.Logger)
		assert.Equal(t, "abc", entry.Data["request_id"])
	})
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	entry, err := New(&buf, "debug", "json")
	require.NoError(t, err)

	entry.WithField("skill", "pdf").Debug("loaded skill")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "loaded skill", out["message"])
	assert.Equal(t, "debug", out["logLevel"])
	assert.Equal(t, "pdf", out["skill"])
	assert.Contains(t, out, "timestamp")

	_, err = New(&buf, "chatty", "fmt")
	assert.Error(t, err)
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	entry, err := New(&buf, "warn", "fmt")
	require.NoError(t, err)

	entry.Info("hidden")
	assert.Empty(t, buf.String())

	entry.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetLogFormat(t *testing.T) {
	original := L.Logger.Formatter
	defer func() { L.Logger.Formatter = original }()

	SetLogFormat("json")
	assert.IsType(t, &logrus.JSONFormatter{}, L.Logger.Formatter)

	SetLogFormat("text")
	assert.IsType(t, &logrus.TextFormatter{}, L.Logger.Formatter)
}
