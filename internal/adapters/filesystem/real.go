// Package filesystem provides file system adapters.
package filesystem

import (
	"os"

	"github.com/felixgeelhaar/pactverify/internal/ports"
)

// RealFileSystem implements ports.FileSystem on top of the os package.
type RealFileSystem struct{}

// NewRealFileSystem creates a new RealFileSystem.
func NewRealFileSystem() *RealFileSystem {
	return &RealFileSystem{}
}

// Lstat reports the kind of path. Symlinks are not followed.
func (fs *RealFileSystem) Lstat(path string) (ports.FileKind, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return ports.KindOther, err
	}
	return ports.KindOf(info.Mode()), nil
}

// ReadFile reads a file and returns its contents.
func (fs *RealFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(ports.ExpandPath(path))
}

var _ ports.FileSystem = (*RealFileSystem)(nil)
