// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadFromPath(t *testing.T) {
	dir := t.TempDir()

	t.Run("trims_whitespace", func(t *testing.T) {
		path := filepath.Join(dir, "key")
		if err := os.WriteFile(path, []byte("  hmac-key\n"), 0600); err != nil {
			t.Fatal(err)
		}
		got, err := ReadFromPath(path)
		if err != nil {
			t.Fatalf("ReadFromPath() error = %v", err)
		}
		if string(got) != "hmac-key" {
			t.Errorf("ReadFromPath() = %q, want %q", got, "hmac-key")
		}
	})

	t.Run("empty_file", func(t *testing.T) {
		path := filepath.Join(dir, "empty")
		if err := os.WriteFile(path, []byte("  \n"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadFromPath(path); err == nil {
			t.Error("ReadFromPath() = nil for whitespace-only file, want error")
		}
	})

	t.Run("missing_file", func(t *testing.T) {
		if _, err := ReadFromPath(filepath.Join(dir, "absent")); err == nil {
			t.Error("ReadFromPath() = nil for missing file, want error")
		}
	})
}

func TestZero(t *testing.T) {
	b := []byte("sensitive")
	Zero(b)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("b[%d] = %d, want 0", i, v)
		}
	}
}
