package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetup(t *testing.T) {
	t.Cleanup(func() { _ = Setup(DefaultConfig()) })

	if err := Setup(LogConfig{Level: "debug", Format: "json", Output: "discard"}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("level = %v, want debug", zerolog.GlobalLevel())
	}

	file := filepath.Join(t.TempDir(), "billgen.log")
	if err := Setup(LogConfig{Level: "info", Format: "console", Output: file}); err != nil {
		t.Fatalf("Setup(file): %v", err)
	}

	if err := Setup(LogConfig{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestComponentAndRequestLoggers(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = orig })

	compLog := WithComponent("render")
	compLog.Info().Msg("a")
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["component"] != "render" {
		t.Errorf("component = %v", entry["component"])
	}

	buf.Reset()
	reqLog := WithRequestID("req-1")
	ctx := reqLog.WithContext(context.Background())
	WithContext(ctx).Info().Msg("b")
	entry = nil
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v", entry["request_id"])
	}
}
