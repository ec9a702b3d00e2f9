package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"warning", LogLevelWarn, false},
		{"", LogLevelError, false},
		{"off", LogLevelSilent, false},
		{"verbose", LogLevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	prev := GetLogLevel()
	defer func() {
		SetLogLevel(prev)
		SetOutput(os.Stderr)
	}()

	SetLogLevel(LogLevelWarn)
	Debug("debug %d", 1)
	Info("info %d", 2)
	Warn("warn %d", 3)
	Error("error %d", 4)

	out := buf.String()
	for _, hidden := range []string{"debug 1", "info 2"} {
		if strings.Contains(out, hidden) {
			t.Errorf("output %q should not contain %q", out, hidden)
		}
	}
	for _, shown := range []string{"warn 3", "error 4"} {
		if !strings.Contains(out, shown) {
			t.Errorf("output %q should contain %q", out, shown)
		}
	}

	buf.Reset()
	SetLogLevel(LogLevelSilent)
	Error("hidden")
	if buf.Len() != 0 {
		t.Errorf("silent level wrote %q", buf.String())
	}
}

func TestWithField(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	prev := GetLogLevel()
	defer func() {
		SetLogLevel(prev)
		SetOutput(os.Stderr)
	}()

	SetLogLevel(LogLevelInfo)
	WithField("keyword", "ccv3").Info("embedded")

	if !strings.Contains(buf.String(), "keyword=ccv3") {
		t.Errorf("output %q should carry the keyword field", buf.String())
	}
}
