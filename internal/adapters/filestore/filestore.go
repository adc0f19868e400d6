// Package filestore stores uploaded file bytes on local disk.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store writes and reads uploaded file content. The metadata record
// (id, mimetype, size) lives in the database; this only handles bytes.
type Store interface {
	// Save writes the content and returns the relative path to record.
	Save(id, filename string, r io.Reader) (string, error)
	// Open returns a reader for a previously saved path.
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
}

// DiskStore keeps files under a root directory, fanned out by id prefix
// so a single directory never accumulates every upload.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root %s: %w", root, err)
	}
	return &DiskStore{root: root}, nil
}

func (d *DiskStore) Save(id, filename string, r io.Reader) (string, error) {
	if len(id) < 2 {
		return "", fmt.Errorf("file id %q too short", id)
	}
	rel := filepath.Join(id[:2], id+sanitizeExt(filename))
	full := filepath.Join(d.root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return rel, nil
}

func (d *DiskStore) Open(path string) (io.ReadCloser, error) {
	clean := filepath.Clean(path)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid file path %q", path)
	}
	f, err := os.Open(filepath.Join(d.root, clean))
	if err != nil {
		return nil, fmt.Errorf("open stored file %s: %w", path, err)
	}
	return f, nil
}

func (d *DiskStore) Remove(path string) error {
	clean := filepath.Clean(path)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("invalid file path %q", path)
	}
	if err := os.Remove(filepath.Join(d.root, clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stored file %s: %w", path, err)
	}
	return nil
}

// sanitizeExt keeps only a plain extension from the client filename.
func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, r := range ext {
		if r != '.' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	if len(ext) > 8 {
		return ""
	}
	return ext
}
