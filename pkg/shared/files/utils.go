package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	serrors "github.com/srcmap-tools/srcmap/pkg/shared/errors"
)

// ExpandPath resolves paths that include a tilde (~) to the user's home directory.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, path[2:]), nil
	}
	return path, nil
}

// ValidatePath checks if the given path is a valid file path for reading.
func ValidatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path stat error: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path %q is a directory, not a file", path)
	}

	if info.Mode()&os.ModeType != 0 {
		return fmt.Errorf("path %q is not a regular file", path)
	}
	return nil
}

// CreateFolderIfNotExists checks if a folder exists, and if not, creates it.
func CreateFolderIfNotExists(folder string) error {
	if _, err := os.Stat(folder); os.IsNotExist(err) {
		if err := os.MkdirAll(folder, os.ModePerm); err != nil {
			return fmt.Errorf("unable to create folder %q: %w", folder, err)
		}
	} else if err != nil {
		return fmt.Errorf("unable to check folder %q: %w", folder, err)
	}
	return nil
}

// TempPath returns the sibling temporary path used while writing target.
func TempPath(target string) string {
	return fmt.Sprintf("%s.%s.tmp", target, uuid.NewString())
}

var renameFile = os.Rename

// SetRenameFunc replaces the function that commits a temporary file onto its
// target and returns a function restoring the previous one.
func SetRenameFunc(fn func(oldpath, newpath string) error) (restore func()) {
	prev := renameFile
	renameFile = fn
	return func() { renameFile = prev }
}

// WriteFileAtomic writes data to a sibling temporary file and renames it onto path.
// Readers of path observe either the old or the new content. When the target
// already exists its permission bits are kept and perm is ignored.
// All failures are returned as *errors.IOError and leave path untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		if !info.Mode().IsRegular() {
			return serrors.NewIOError("write", path, fmt.Errorf("not a regular file"))
		}
		perm = info.Mode().Perm()
	}

	tmpPath := TempPath(path)
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, perm)
	if err != nil {
		return serrors.NewIOError("create temp file", tmpPath, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return serrors.NewIOError("write temp file", tmpPath, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return serrors.NewIOError("sync temp file", tmpPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return serrors.NewIOError("close temp file", tmpPath, err)
	}

	// the only commit point
	if err := renameFile(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return serrors.NewIOError("rename", path, err)
	}
	return nil
}
