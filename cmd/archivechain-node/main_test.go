package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRunDryRunPrintsConfigAndExits(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{"--dry-run", "--datadir", dir}, &out, &errOut)
	if code != 0 {
		t.Fatalf("code=%d, stderr=%s", code, errOut.String())
	}
	if out.Len() == 0 {
		t.Fatal("expected config output")
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{"--datadir", dir, "--initial-difficulty", "0"}, &out, &errOut)
	if code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestRunMinesBlocksAndPersistsState(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{"--datadir", dir, "--mine-blocks", "1", "--mine-exit"}, &out, &errOut)
	if code != 0 {
		t.Fatalf("code=%d, stderr=%s", code, errOut.String())
	}
	if !bytes.Contains(out.Bytes(), []byte("mined: height=1")) {
		t.Fatalf("expected a mined-block line, got %q", out.String())
	}

	statePath := filepath.Join(dir, "chainstate.json")
	if _, err := os.Stat(statePath); err != nil {
		t.Fatalf("expected chainstate.json to exist: %v", err)
	}
}

func TestRunResumesFromExistingState(t *testing.T) {
	dir := t.TempDir()
	var out1, errOut1 bytes.Buffer
	if code := run([]string{"--datadir", dir, "--mine-blocks", "1", "--mine-exit"}, &out1, &errOut1); code != 0 {
		t.Fatalf("first run code=%d, stderr=%s", code, errOut1.String())
	}

	var out2, errOut2 bytes.Buffer
	code := run([]string{"--datadir", dir, "--dry-run"}, &out2, &errOut2)
	if code != 0 {
		t.Fatalf("second run code=%d, stderr=%s", code, errOut2.String())
	}
	if !bytes.Contains(out2.Bytes(), []byte("height=1")) {
		t.Fatalf("expected resumed chain to report height=1, got %q", out2.String())
	}
}
