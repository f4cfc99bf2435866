package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_FormatFollowsEnvironment(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{"production logs json", "production", true},
		{"development logs pretty", "development", false},
		{"empty environment logs pretty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Writer: &buf, Environment: tt.environment, Level: slog.LevelInfo})
			log.Info("entry saved")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"entry saved"`)
			} else {
				assert.Contains(t, buf.String(), "entry saved")
				assert.NotContains(t, buf.String(), `"msg"`)
			}
		})
	}
}

func TestNew_ExplicitFormatWins(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json", Environment: "development"})
	log.Info("hello")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"Warning": slog.LevelWarn,
		"error":   slog.LevelError,
		" error ": slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), "input %q", input)
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Debug("streak updated", "count", 3, "mode", "local")
	log.Error("export failed")

	out := buf.String()
	assert.Contains(t, out, "DBG")
	assert.Contains(t, out, "streak updated")
	assert.Contains(t, out, "count=3")
	assert.Contains(t, out, "mode=local")
	assert.Contains(t, out, "ERR")
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	base := NewPrettyHandler(&buf, nil)

	assert.Equal(t, slog.Handler(base), base.WithGroup(""))

	h := base.WithAttrs([]slog.Attr{slog.String("component", "router")}).WithGroup("remote")
	slog.New(h).Info("request", "status", 200)

	out := buf.String()
	assert.Contains(t, out, "component=router")
	assert.Contains(t, out, "remote.status=200")
}

func TestPrettyHandler_WithSource(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{AddSource: true}))
	log.Info("where")

	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestFormatValue(t *testing.T) {
	now := time.Date(2026, 3, 1, 22, 15, 0, 0, time.UTC)

	assert.Equal(t, "text", formatValue(slog.StringValue("text")))
	assert.Equal(t, now.Format(time.RFC3339), formatValue(slog.TimeValue(now)))
	assert.Equal(t, "1.5s", formatValue(slog.DurationValue(1500*time.Millisecond)))
	assert.Equal(t, "7", formatValue(slog.IntValue(7)))
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json"})

	log.WithError(errors.New("disk full")).WithField("entry_id", "entry-1").Warn("write rejected")

	out := buf.String()
	assert.Contains(t, out, `"error":"disk full"`)
	assert.Contains(t, out, `"entry_id":"entry-1"`)
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Info("nothing to see")
	assert.NotNil(t, log)
}
