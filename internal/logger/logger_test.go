package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"debug", "debug"},
		{"DEBUG", "debug"},
		{"warn", "warning"},
		{"invalid", "info"},
		{"", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := New(tt.level, "text", &bytes.Buffer{}).Level(); got != tt.want {
				t.Errorf("Level() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", "text", &buf)

	log.Debug().Msg("hidden debug")
	log.Info().Msg("hidden info")
	log.Warn().Msg("shown warning")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below warn were logged: %q", out)
	}
	if !strings.Contains(out, "shown warning") {
		t.Errorf("warning missing: %q", out)
	}
}

func TestJSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "json", &buf)

	log.Error().
		Str("statement", "DROP TABLE").
		Int("step", 1).
		Strs("hosts", []string{"a", "b"}).
		Dur("took", 1500*time.Microsecond).
		Err(errors.New("boom")).
		Msg("completion failed")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if line["msg"] != "completion failed" || line["level"] != "error" {
		t.Errorf("unexpected line: %v", line)
	}
	if line["statement"] != "DROP TABLE" || line["step"] != float64(1) || line["took"] != 1.5 {
		t.Errorf("unexpected fields: %v", line)
	}
	if line["error"] != "boom" {
		t.Errorf("error field = %v", line["error"])
	}
}

func TestErrNil(t *testing.T) {
	var buf bytes.Buffer
	New("info", "text", &buf).Info().Err(nil).Msg("ok")
	if strings.Contains(buf.String(), "error=") {
		t.Errorf("nil error should add no field: %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error().Msg("dropped")
	if log.FieldLogger() == nil {
		t.Fatal("FieldLogger() returned nil")
	}
}
