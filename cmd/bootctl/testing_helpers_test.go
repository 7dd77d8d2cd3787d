package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testConfig = `memory:
  base: 0x100000
  size: 0x40000
map:
  - {addr: 0x100000, size: 0x1000, type: reserved}
  - {addr: 0x101000, size: 0x8000, type: conventional}
  - {addr: 0x109000, size: 0x7000, type: conventional}
  - {addr: 0x120000, pages: 16, type: conventional}
slab:
  size: 64
  align: 8
  count: 16
devices:
  - {name: pl011, base: 0x9000000, kind: uart}
root: esp
`

// writeTestConfig writes a boot config and a boot volume into a temp dir
// and points --config at it.
func writeTestConfig(t *testing.T, doc string) {
	t.Helper()
	dir := t.TempDir()
	kernel := filepath.Join(dir, "esp", "EFI", "caliga", "kernel.elf")
	if err := os.MkdirAll(filepath.Dir(kernel), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(kernel, []byte("\x7fELF kernel"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "boot.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	configPath = path
}

// resetFlags restores every flag to its default.
func resetFlags() {
	verbose = false
	quiet = false
	jsonOut = false
	noColor = true
	runOpen = nil
	slabAlloc = 0
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return string(<-done), fnErr
}

// decodeJSON checks that output is valid JSON and decodes it into v
func decodeJSON(t *testing.T, output string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
