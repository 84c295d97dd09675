package paramstore

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore stores the vault key parameters in a file, for platforms
// without a usable OS keyring. The payload is base64-encoded and written
// with 0600 permissions.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get implements Store.
func (f *FileStore) Get() ([]byte, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read params file: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(string(b))
	if err != nil {
		return nil, fmt.Errorf("params file is not valid base64: %w", err)
	}
	return data, nil
}

// Set implements Store. The new payload is written to a temporary file and
// renamed over the old one, so a crash mid-write never leaves torn params.
func (f *FileStore) Set(data []byte) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp params file: %w", err)
	}
	tmpName := tmp.Name()

	encoded := base64.StdEncoding.EncodeToString(data)
	if _, err := tmp.WriteString(encoded); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write params file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod params file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close params file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace params file: %w", err)
	}
	return nil
}

// Delete implements Store.
func (f *FileStore) Delete() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove params file: %w", err)
	}
	return nil
}
