package models

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"large-v3", "ggml-large-v3.bin"},
		{"base.en", "ggml-base.en.bin"},
		{"ggml-small.bin", "ggml-small.bin"},
	}
	for _, tc := range cases {
		if got := Filename(tc.in); got != tc.want {
			t.Errorf("Filename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEnsureEmptyName(t *testing.T) {
	if _, err := Ensure("", t.TempDir()); err == nil {
		t.Fatal("Ensure(\"\") should return error")
	}
}

func TestEnsureExistingModelSkipsDownload(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "ggml-base.en.bin")
	if err := os.WriteFile(dest, []byte("ggml"), 0644); err != nil {
		t.Fatal(err)
	}

	// No network should be touched; the existing file short-circuits.
	path, err := Ensure("base.en", dir)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if path != dest {
		t.Errorf("Ensure() = %q, want %q", path, dest)
	}
}
