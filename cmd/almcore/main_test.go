package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/bankalm/irrbb-core/scenario"
)

func TestRunProducesValidSummaryJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}

	var out Output
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, stdout.String())
	}
	if len(out.Summary.Scenarios) != 6 {
		t.Errorf("expected 6 stressed scenarios, got %d", len(out.Summary.Scenarios))
	}
	if out.Summary.WorstScenario == "" {
		t.Error("expected a worst scenario to be identified")
	}
	if len(out.CurveDiagnostics) == 0 {
		t.Error("expected curve diagnostics for at least one index")
	}
	if pillars := out.CurveDiagnostics["EUR_ESTR_OIS"]; len(pillars) != 5 {
		t.Errorf("expected 5 EUR_ESTR_OIS pillars, got %d", len(pillars))
	}
}

func TestRunHelpFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-h"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run(-h) = %d", code)
	}
	if stdout.Len() == 0 {
		t.Error("expected usage text on stdout")
	}
}
