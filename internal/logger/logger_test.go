package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextWritesAtLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Text(&buf, slog.LevelWarn)

	log.Info("hidden")
	log.Warn("visible", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "key=value")
}

func TestJSONIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)

	log.Info("started", "address", "127.0.0.1:8080")
	assert.Contains(t, buf.String(), `"address":"127.0.0.1:8080"`)
}

func TestWithAddsPersistentFields(t *testing.T) {
	var buf bytes.Buffer
	log := Text(&buf, slog.LevelInfo).With("component", "server")

	log.Info("ready")
	assert.Contains(t, buf.String(), "component=server")
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := Text(&buf, slog.LevelInfo)

	ctx := WithContext(context.Background(), log)
	FromContext(ctx).Info("carried")
	assert.Contains(t, buf.String(), "carried")
}

func TestFromContextDefaultsWhenAbsent(t *testing.T) {
	log := FromContext(context.Background())
	assert.NotNil(t, log)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}
