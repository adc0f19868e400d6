// Package file models uploaded files: payment slips and activity thumbnails.
package file

import (
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrEmptyUpload = errors.New("uploaded file is empty")
	ErrTooLarge    = errors.New("uploaded file exceeds size limit")
	ErrBadMimetype = errors.New("unsupported file type")
)

// MaxUploadBytes caps slip and thumbnail uploads.
const MaxUploadBytes = 10 << 20 // 10 MiB

// StoredFile is the metadata record for a file on disk.
type StoredFile struct {
	ID        string
	Filename  string
	Mimetype  string
	Size      int64
	Path      string // relative path under the upload root
	CreatedAt time.Time
}

// allowedMimetypes are the upload types accepted for slips and thumbnails.
var allowedMimetypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// ValidateUpload checks size and mimetype constraints before a file is accepted.
// PRE: size and mimetype come from the multipart part, not client headers alone
// POST: nil iff the upload may be stored
func ValidateUpload(size int64, mimetype string) error {
	if size <= 0 {
		return ErrEmptyUpload
	}
	if size > MaxUploadBytes {
		return ErrTooLarge
	}
	if !allowedMimetypes[mimetype] {
		return ErrBadMimetype
	}
	return nil
}
