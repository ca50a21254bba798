// Copyright 2024-2026 Aiku AI

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aiku/buttbot/pkg/config"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("buttbot %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestTryCommand(t *testing.T) {
	t.Parallel()
	got := execute(t, "try", "--word", "poop", "computer", "keyboard")
	if !strings.Contains(got, "poop") {
		t.Errorf("try: got %q", got)
	}
}

func TestTryCommandNoOp(t *testing.T) {
	t.Parallel()
	if got := execute(t, "try", "hi"); got != "hi\n" {
		t.Errorf("try: got %q, want the input back", got)
	}
}

func TestSyllablesCommand(t *testing.T) {
	t.Parallel()
	got := strings.TrimSpace(execute(t, "syllables", "good", "morning"))
	words := strings.Fields(got)
	if len(words) != 2 {
		t.Fatalf("syllables: got %q", got)
	}
	if joined := strings.ReplaceAll(got, "|", ""); joined != "good morning" {
		t.Errorf("syllables lost text: got %q", joined)
	}
}

func TestExampleConfigCommand(t *testing.T) {
	t.Parallel()
	if got := execute(t, "example-config"); got != config.ExampleConfig {
		t.Error("example-config output differs from the embedded config")
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()
	if got := execute(t, "version"); !strings.HasPrefix(got, "buttbot "+Tag) {
		t.Errorf("version: got %q", got)
	}
}

func TestWriteExampleConfig(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := writeExampleConfig(path); !errors.Is(err, errConfigCreated) {
		t.Fatalf("first call: got %v, want errConfigCreated", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(raw) != config.ExampleConfig {
		t.Error("written config differs from the example")
	}
	if err = writeExampleConfig(path); err != nil {
		t.Errorf("existing file: got %v", err)
	}
}
