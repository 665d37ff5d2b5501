package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cases := map[string]string{
		"":              "",
		"/tmp":          "/tmp",
		"~":             home,
		"~/models/llm":  filepath.Join(home, "models", "llm"),
		"~other/models": "~other/models",
		"models/~/x":    "models/~/x",
	}
	for in, want := range cases {
		got, err := ExpandHome(in)
		if err != nil || got != want {
			t.Fatalf("ExpandHome(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
}

func TestIsRegularFile(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "model.gguf")
	if err := os.WriteFile(p, []byte("gguf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !IsRegularFile(p) {
		t.Fatalf("expected %q to be a regular file", p)
	}
	if IsRegularFile(d) {
		t.Fatalf("directory reported as regular file")
	}
	if IsRegularFile(filepath.Join(d, "missing.gguf")) {
		t.Fatalf("missing file reported as regular file")
	}
}

func TestEnsureParentDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a", "b", "memoryd.db")
	if err := EnsureParentDir(p); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if fi, err := os.Stat(filepath.Dir(p)); err != nil || !fi.IsDir() {
		t.Fatalf("dir not created: %v", err)
	}
	if err := EnsureParentDir("memoryd.db"); err != nil {
		t.Fatalf("relative file: %v", err)
	}
}

func TestSameFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	p := filepath.Join(home, "m.gguf")
	if err := os.WriteFile(p, []byte("gguf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !SameFile("~/m.gguf", p) {
		t.Fatalf("~ path not matched")
	}
	if !SameFile(filepath.Join(home, ".", "m.gguf"), p) {
		t.Fatalf("unclean path not matched")
	}
	if SameFile(filepath.Join(home, "other.gguf"), p) {
		t.Fatalf("different files matched")
	}
	if !SameFile("/nope/x.gguf", "/nope/./x.gguf") {
		t.Fatalf("missing files not compared lexically")
	}
}
