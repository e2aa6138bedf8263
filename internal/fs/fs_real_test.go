package fs

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestRealFSWriteAndRead(t *testing.T) {
	fs := RealFS()
	dir := t.TempDir()
	file := fs.Join(dir, "nested", "bundle.js")

	if err := fs.WriteFile(file, []byte("var a = 1;\n")); err != nil {
		t.Fatal(err)
	}
	contents, err := fs.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if contents != "var a = 1;\n" {
		t.Fatalf("Incorrect contents: %q", contents)
	}

	// A file that was just written is too new to have a trustworthy key
	if _, err := fs.ModKey(file); !errors.Is(err, modKeyUnusable) {
		t.Fatalf("Expected an unusable modification key, got %v", err)
	}

	if _, err := fs.ReadFile(filepath.Join(dir, "missing.js")); err == nil {
		t.Fatal("Unexpectedly found missing.js")
	}
}
