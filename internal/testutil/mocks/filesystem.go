package mocks

import (
	"fmt"
	"io/fs"
	"sync"

	"github.com/felixgeelhaar/pactverify/internal/ports"
)

// FileSystem is a thread-safe test double for ports.FileSystem.
type FileSystem struct {
	mu       sync.RWMutex
	files    map[string][]byte
	symlinks map[string]string
	dirs     map[string]bool
	others   map[string]bool
	errors   map[string]error
	lstats   []string
}

// NewFileSystem creates a new FileSystem mock.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files:    make(map[string][]byte),
		symlinks: make(map[string]string),
		dirs:     make(map[string]bool),
		others:   make(map[string]bool),
		errors:   make(map[string]error),
	}
}

// AddFile adds a file to the mock filesystem.
func (m *FileSystem) AddFile(path string, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = []byte(content)
}

// AddSymlink adds a symlink to the mock filesystem.
func (m *FileSystem) AddSymlink(link, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symlinks[link] = target
}

// AddDir adds a directory to the mock filesystem.
func (m *FileSystem) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = true
}

// AddOther adds a path that exists but is neither a file nor a directory,
// such as a socket or device.
func (m *FileSystem) AddOther(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.others[path] = true
}

// SetLstatError makes Lstat fail for path with err.
func (m *FileSystem) SetLstatError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[path] = err
}

// Lstat implements ports.FileSystem. Symlinks are reported, not followed.
func (m *FileSystem) Lstat(path string) (ports.FileKind, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lstats = append(m.lstats, path)

	if err, ok := m.errors[path]; ok {
		return ports.KindOther, err
	}
	switch {
	case m.dirs[path]:
		return ports.KindDirectory, nil
	case m.others[path]:
		return ports.KindOther, nil
	}
	if _, ok := m.symlinks[path]; ok {
		return ports.KindSymlink, nil
	}
	if _, ok := m.files[path]; ok {
		return ports.KindRegular, nil
	}
	return ports.KindOther, &fs.PathError{Op: "lstat", Path: path, Err: fs.ErrNotExist}
}

// ReadFile reads a file from the mock filesystem, following symlinks.
func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if target, ok := m.symlinks[path]; ok {
		path = target
	}
	if content, ok := m.files[path]; ok {
		return content, nil
	}
	return nil, fmt.Errorf("file not found: %s", path)
}

// Lstats returns every path passed to Lstat, in call order.
func (m *FileSystem) Lstats() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.lstats...)
}

// Ensure FileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*FileSystem)(nil)
