package registration

import (
	"context"
	"errors"

	domain "academy/internal/domain/registration"
)

// ErrNotFound reports a missing registration row.
var ErrNotFound = errors.New("registration not found")

// Store persists ScheduleRegistration state. Status mutation goes
// through UpdateStatus only, which is conditioned on the row's prior
// status (compare-and-swap) so concurrent approve/reject calls cannot
// both succeed.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.ScheduleRegistration, error)
	// CreateBatch inserts all rows of one wizard submission atomically.
	// capacities maps each schedule id to its max_users; the insert of a
	// row fails with domain.ErrScheduleFull when the schedule already
	// holds that many non-rejected rows, and the whole batch rolls back.
	CreateBatch(ctx context.Context, rows []domain.ScheduleRegistration, capacities map[string]int) error
	// UpdateStatus transitions a row from `from` to `to`. Returns
	// domain.ErrConflict when the row is no longer in `from`.
	UpdateStatus(ctx context.Context, id, from, to string) (domain.ScheduleRegistration, error)
	Delete(ctx context.Context, id string) error
	ListByActivityID(ctx context.Context, activityID string) ([]domain.ScheduleRegistration, error)
	CountBySchedule(ctx context.Context, scheduleID string) (int, error)
	// CountActiveByApplicant counts the applicant's non-rejected rows,
	// used to guard applicant deletion.
	CountActiveByApplicant(ctx context.Context, applicantID string) (int, error)
}
