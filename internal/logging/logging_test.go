package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"", logrus.InfoLevel},
		{"debug", logrus.DebugLevel},
		{"WARN", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{" error ", logrus.ErrorLevel},
		{"verbose", logrus.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf)

	log.WithField("session_id", "abc").Debug("asking")

	out := buf.String()
	if !strings.Contains(out, "level=debug") {
		t.Errorf("output missing level: %q", out)
	}
	if !strings.Contains(out, "session_id=abc") {
		t.Errorf("output missing field: %q", out)
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)

	log.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("dropped")
	if log.IsLevelEnabled(logrus.ErrorLevel) {
		t.Error("Discard logger should not enable error level")
	}
}
