package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestSetup_EmitsJSONLogs(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf)

	log.Info("server started", "port", "8080")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v", err)
	}
	if entry["msg"] != "server started" {
		t.Errorf("unexpected msg: %v", entry["msg"])
	}
	if entry["port"] != "8080" {
		t.Errorf("unexpected port attribute: %v", entry["port"])
	}
}

func TestSetup_DebugLevelIsSuppressed(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf)

	log.Debug("noisy detail")

	if buf.Len() != 0 {
		t.Errorf("debug logs should be suppressed, got: %s", buf.String())
	}
}
