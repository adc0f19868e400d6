package file

import (
	"context"

	domain "academy/internal/domain/file"
)

// Store persists StoredFile metadata. File bytes live in the filestore;
// this store only tracks the record that points at them.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.StoredFile, error)
	Save(ctx context.Context, f domain.StoredFile) error
	Delete(ctx context.Context, id string) error
}
