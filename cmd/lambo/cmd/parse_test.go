package cmd

import (
	"strings"
	"testing"
)

func TestRunParseDumpsTermTree(t *testing.T) {
	evalExpr = "1 + 1"
	defer func() { evalExpr = "" }()

	var runErr error
	output := captureStdout(t, func() {
		runErr = runParse(parseCmd, nil)
	})
	if runErr != nil {
		t.Fatalf("runParse failed: %v", runErr)
	}
	if !strings.Contains(output, "App") || !strings.Contains(output, "Prim(+)") {
		t.Fatalf("expected an App/Prim(+) dump, got %q", output)
	}
}

func TestRunParseReportsParseErrors(t *testing.T) {
	evalExpr = "x"
	defer func() { evalExpr = "" }()

	if err := runParse(parseCmd, nil); err == nil {
		t.Fatalf("expected a parse error for an unbound variable")
	}
}
