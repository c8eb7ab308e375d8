package sweep_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// tree describes a directory layout: a string value is a file with that content,
// a tree value is a subdirectory.
type tree map[string]any

// build creates layout below dir.
func build(t *testing.T, dir string, layout tree) {
	t.Helper()

	for name, content := range layout {
		path := filepath.Join(dir, name)

		switch c := content.(type) {
		case string:
			if err := os.WriteFile(path, []byte(c), 0o600); err != nil {
				t.Fatalf("writing %s: %v", path, err)
			}
		case tree:
			if err := os.MkdirAll(path, 0o755); err != nil {
				t.Fatalf("creating %s: %v", path, err)
			}

			build(t, path, c)
		default:
			t.Fatalf("unsupported content %T for %s", content, path)
		}
	}
}

// newTree creates layout in a fresh temporary directory and returns its path.
func newTree(t *testing.T, layout tree) string {
	t.Helper()

	dir := t.TempDir()
	build(t, dir, layout)

	return dir
}

func assertExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Lstat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected %s to be gone, stat error: %v", path, err)
	}
}
