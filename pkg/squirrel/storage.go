package squirrel

import (
	"os"
	"time"
)

// Storage is the filesystem capability the cache calls into. The default is
// OSStorage; tests and alternate backends may inject their own.
type Storage interface {
	// IsDir reports whether path exists and is a directory.
	IsDir(path string) bool

	// IsRegularFile reports whether path exists and is a regular file.
	IsRegularFile(path string) bool

	// ModTime returns the modification time of path.
	ModTime(path string) (time.Time, error)

	// ReadAll returns the full contents of path.
	ReadAll(path string) ([]byte, error)

	// WriteAll replaces the contents of path, returning the bytes written.
	WriteAll(path string, data []byte) (int, error)

	// Remove deletes path.
	Remove(path string) error
}

// OSStorage implements Storage on top of the local filesystem.
type OSStorage struct{}

// IsDir reports whether path exists and is a directory.
func (OSStorage) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsRegularFile reports whether path exists and is a regular file.
func (OSStorage) IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ModTime returns the modification time of path.
func (OSStorage) ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// ReadAll returns the full contents of path.
func (OSStorage) ReadAll(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteAll replaces the contents of path. The write goes to a temp file
// first and is moved into place with an atomic rename, so readers never
// observe a partially written entry.
func (OSStorage) WriteAll(path string, data []byte) (int, error) {
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return 0, err
	}

	n, err := file.Write(data)
	closeErr := file.Close()

	if err != nil {
		os.Remove(tempPath)
		return n, err
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return n, closeErr
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return n, err
	}
	return n, nil
}

// Remove deletes path.
func (OSStorage) Remove(path string) error {
	return os.Remove(path)
}
