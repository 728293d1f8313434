package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	t.Parallel()

	if getVersion() == "" {
		t.Error("expected non-empty version")
	}
}

func TestGetCommit(t *testing.T) {
	t.Parallel()

	got := getCommit()
	if got == "" {
		t.Error("expected non-empty commit")
	}
	if got != "unknown" && len(got) > 7 {
		t.Errorf("expected short commit hash, got %q", got)
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	if cmd.Use != "version" {
		t.Errorf("expected use 'version', got %q", cmd.Use)
	}

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"skitter version", "commit:", "built:"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output, got %q", want, out.String())
		}
	}
}
