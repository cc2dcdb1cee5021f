package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithFormat(FormatJSON, &buf); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}

	Named("codec").Info(context.Background(), "saved recording", String("path", "a.xml"), Int("frames", 3))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if entry["component"] != "codec" {
		t.Errorf("expected component codec, got %v", entry["component"])
	}
	if entry["path"] != "a.xml" {
		t.Errorf("expected path a.xml, got %v", entry["path"])
	}
	if src, _ := entry["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("expected source to point at the test file, got %q", src)
	}
}

func TestLoggerUnknownFormat(t *testing.T) {
	if err := InitWithFormat("xml", nil); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithFormat(FormatText, &buf); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = SetLevelString("info") }()

	ctx := context.Background()
	Get().Debug(ctx, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered at info level, got %q", buf.String())
	}

	if err := SetLevelString("DEBUG"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Get().With(Bool("replay", true)).Debug(ctx, "visible")
	if !strings.Contains(buf.String(), "visible") || !strings.Contains(buf.String(), "replay=true") {
		t.Errorf("expected debug line with bound field, got %q", buf.String())
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}
