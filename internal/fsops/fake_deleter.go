package fsops

import "sync"

// FakeDeleter implements Deleter for testing.
// It records every call and returns the error registered for the path, if any,
// without touching the filesystem.
type FakeDeleter struct {
	mu     sync.Mutex
	Calls  []string
	Errors map[string]error
}

// RemoveAll records an "rmall:" call.
func (f *FakeDeleter) RemoveAll(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, "rmall:"+path)

	return f.Errors[path]
}
