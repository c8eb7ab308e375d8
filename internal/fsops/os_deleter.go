package fsops

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	windowsPathPrefix = `\\?\`
	windowsUNCPrefix  = `\\?\UNC\`
	windowsMaxPath    = 260
)

// OSDeleter implements Deleter using the os package.
type OSDeleter struct{}

// RemoveAll deletes path and everything below it.
// A missing path is not an error.
func (OSDeleter) RemoveAll(path string) error {
	return os.RemoveAll(normalizePath(path))
}

// normalizePath makes deep node_modules trees reachable on Windows.
func normalizePath(path string) string {
	if runtime.GOOS != "windows" {
		return path
	}

	// Extended-length paths are taken literally, so they must be absolute.
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	return extendedPath(runtime.GOOS, path)
}

// extendedPath prefixes an absolute Windows path longer than MAX_PATH with \\?\.
// Relative, short and already prefixed paths, and paths on other systems, are returned unchanged.
func extendedPath(goos, path string) string {
	if goos != "windows" || len(path) <= windowsMaxPath || strings.HasPrefix(path, windowsPathPrefix) {
		return path
	}

	switch {
	case strings.HasPrefix(path, `\\`):
		return windowsUNCPrefix + path[2:]
	case len(path) >= 3 && isDriveLetter(path[0]) && path[1] == ':' && path[2] == '\\':
		return windowsPathPrefix + path
	default:
		return path
	}
}

func isDriveLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
