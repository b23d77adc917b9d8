package ports

import (
	"os"
	"path/filepath"
	"strings"
)

// FileKind classifies what a path points to without following symlinks.
type FileKind int

const (
	// KindOther covers sockets, devices, named pipes and anything unusual.
	KindOther FileKind = iota
	// KindRegular is a regular file.
	KindRegular
	// KindDirectory is a directory.
	KindDirectory
	// KindSymlink is a symbolic link (never followed).
	KindSymlink
)

// String returns the kind name.
func (k FileKind) String() string {
	switch k {
	case KindRegular:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// KindOf maps an os.FileMode to a FileKind.
func KindOf(mode os.FileMode) FileKind {
	switch {
	case mode&os.ModeSymlink != 0:
		return KindSymlink
	case mode.IsDir():
		return KindDirectory
	case mode.IsRegular():
		return KindRegular
	default:
		return KindOther
	}
}

// FileSystem is the read-only view of the file system used by the verifier.
type FileSystem interface {
	// Lstat reports the kind of path using lstat semantics.
	Lstat(path string) (FileKind, error)
	ReadFile(path string) ([]byte, error)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
