package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"memoryd/internal/common/fsutil"
	"memoryd/pkg/types"
)

// LoadDir scans a directory for *.gguf files. ID is the full filename
// (including extension); Path is the absolute file path.
func LoadDir(dir string) ([]types.Model, error) {
	abs, err := absDir(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() || !isGGUF(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		name := e.Name()
		models = append(models, types.Model{
			ID:        name,
			Name:      strings.TrimSuffix(name, filepath.Ext(name)),
			Path:      filepath.Join(abs, name),
			SizeBytes: info.Size(),
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// Resolve turns a model reference into a file path. A bare filename is
// looked up in dir; anything containing a path separator or starting with
// '~' is taken as a path.
func Resolve(dir, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty model reference")
	}
	if strings.HasPrefix(ref, "~") || strings.ContainsRune(ref, '/') || strings.ContainsRune(ref, filepath.Separator) {
		return fsutil.ExpandHome(ref)
	}
	abs, err := absDir(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(abs, ref), nil
}

func absDir(dir string) (string, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("abs path: %w", err)
	}
	return abs, nil
}

func isGGUF(name string) bool { return strings.HasSuffix(strings.ToLower(name), ".gguf") }
