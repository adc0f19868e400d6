package activity

import (
	"context"
	"errors"

	domain "academy/internal/domain/activity"
)

// Not-found errors for the two entity kinds this store manages.
var (
	ErrNotFound         = errors.New("activity not found")
	ErrScheduleNotFound = errors.New("schedule not found")
)

// Store persists Activity and Schedule state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Activity, error)
	Save(ctx context.Context, value domain.Activity) error
	ListPublished(ctx context.Context) ([]domain.Activity, error)
	ListUnpublished(ctx context.Context) ([]domain.Activity, error)

	GetSchedule(ctx context.Context, id string) (domain.Schedule, error)
	SaveSchedule(ctx context.Context, value domain.Schedule) error
	ListSchedules(ctx context.Context, activityID string) ([]domain.Schedule, error)
}
