package cmd

import (
	"strings"
	"testing"
)

func TestLexScriptPrintsEveryToken(t *testing.T) {
	evalExpr = "1 + 1"
	defer func() { evalExpr = "" }()

	var runErr error
	output := captureStdout(t, func() {
		runErr = lexScript(lexCmd, nil)
	})
	if runErr != nil {
		t.Fatalf("lexScript failed: %v", runErr)
	}
	if !strings.Contains(output, "INT") || !strings.Contains(output, "EOF") {
		t.Fatalf("expected INT and EOF tokens in output, got %q", output)
	}
}
