package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestEnvLevel(t *testing.T) {
	tests := []struct {
		env  string
		want Level
	}{
		{"", WarnLevel},
		{"debug", DebugLevel},
		{"TRACE", TraceLevel},
		{" info ", InfoLevel},
		{"error", ErrorLevel},
		{"bogus", WarnLevel},
	}
	for _, tt := range tests {
		t.Setenv(LevelEnv, tt.env)
		if got := EnvLevel(); got != tt.want {
			t.Errorf("EnvLevel() with %q = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	if err != nil || lvl != DebugLevel {
		t.Errorf("ParseLevel(debug) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewLoggerWithCommand(t *testing.T) {
	t.Setenv(LevelEnv, "info")
	var buf bytes.Buffer
	l, err := NewLoggerWithCommand(&buf, "normalize", "")
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("below the environment level")
	l.WithField("k", "v").Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["command"] != "normalize" || entry["k"] != "v" || entry["msg"] != "hello" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewLoggerWithCommandLevel(t *testing.T) {
	t.Setenv(LevelEnv, "")
	var buf bytes.Buffer
	l, err := NewLoggerWithCommand(&buf, "rewrite", "debug")
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("visible")
	if !bytes.Contains(buf.Bytes(), []byte(`"visible"`)) {
		t.Errorf("debug entry missing: %q", buf.String())
	}

	if _, err := NewLoggerWithCommand(&buf, "rewrite", "chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}
