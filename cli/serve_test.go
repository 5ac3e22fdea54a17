package cli

import (
	"errors"
	"testing"
)

func TestServeRejectsNegativeRetention(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cmd := NewServeCmd()
	if err := cmd.Flags().Set("history-retention", "-1h"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	err := runServe(cmd, nil)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("runServe() error = %v, want *ExitError", err)
	}
	if exitErr.Code != exitValidation {
		t.Fatalf("exit code = %d, want %d", exitErr.Code, exitValidation)
	}
}
