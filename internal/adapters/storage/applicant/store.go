package applicant

import (
	"context"
	"errors"

	domain "academy/internal/domain/applicant"
)

// ErrNotFound reports a missing applicant row.
var ErrNotFound = errors.New("applicant not found")

// Store persists Applicant state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Applicant, error)
	Save(ctx context.Context, value domain.Applicant) error
	Delete(ctx context.Context, id string) error
	ListByAccountID(ctx context.Context, accountID string) ([]domain.Applicant, error)
}
