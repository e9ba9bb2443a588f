package almlog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWritesTextToGivenWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)
	logger.Info("scenario started", slog.String("scenario", "parallel-up"))

	if buf.Len() == 0 {
		t.Fatal("expected text output on the given writer")
	}
}

func TestNewFileCreatesDatedJSONFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile() failed: %v", err)
	}

	logger.Error("contract generation failed",
		slog.String("contract_id", "LOAN-FIX-5Y"),
		slog.String("source_contract_type", "fixed_bullet"),
	)

	logFile := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Fatalf("log output is not valid JSON: %v", err)
	}
	if entry["contract_id"] != "LOAN-FIX-5Y" {
		t.Errorf("expected contract_id field, got %v", entry["contract_id"])
	}
	if entry["level"] != "ERROR" {
		t.Errorf("expected ERROR level, got %v", entry["level"])
	}
}

func TestNopDiscardsOutput(t *testing.T) {
	logger := Nop()
	logger.Info("should not panic or write anywhere visible")
}
