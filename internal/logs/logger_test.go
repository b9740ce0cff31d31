package logs

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := Setup(Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer closer.Close()

	log.Debug("call completed", "method", "ping")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %q", buf.String())
	}
	if entry["msg"] != "call completed" || entry["method"] != "ping" {
		t.Errorf("entry = %v", entry)
	}
}

func TestSetupLevel(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := Setup(Options{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info logged at warn level: %q", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("expected text output with warn entry, got %q", out)
	}
}

func TestSetupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcpcall.log")
	log, closer, err := Setup(Options{Level: "info", Format: "json", File: path})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	log.Info("written to file")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !bytes.Contains(data, []byte("written to file")) {
		t.Errorf("log file = %q", data)
	}
}

func TestSetupInvalid(t *testing.T) {
	if _, _, err := Setup(Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, _, err := Setup(Options{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}
