package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDirFiltersGGUF(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.gguf":        "bb",
		"a.GGUF":        "a", // case-insensitive
		"not-model.txt": "",
		"model.bin":     "",
	}
	for f, content := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte(content), 0o644); err != nil {
			t.Fatalf("write temp file: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.gguf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	models, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %+v", models)
	}
	if models[0].ID != "a.GGUF" || models[1].ID != "b.gguf" {
		t.Fatalf("unexpected order: %+v", models)
	}
	if models[1].Name != "b" || models[1].SizeBytes != 2 || models[1].Path != filepath.Join(dir, "b.gguf") {
		t.Fatalf("unexpected model: %+v", models[1])
	}
}

func TestLoadDirExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	if err := os.MkdirAll(filepath.Join(home, "models"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(home, "models", "x.gguf"), nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	models, err := LoadDir("~/models")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(models) != 1 || models[0].ID != "x.gguf" {
		t.Fatalf("unexpected models: %+v", models)
	}
}

func TestLoadDirMissing(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	got, err := Resolve(dir, "m.gguf")
	if err != nil || got != filepath.Join(dir, "m.gguf") {
		t.Fatalf("got %q err=%v", got, err)
	}
	got, err = Resolve(dir, "/abs/m.gguf")
	if err != nil || got != "/abs/m.gguf" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if _, err := Resolve(dir, "  "); err == nil {
		t.Fatalf("expected error for empty reference")
	}
}
