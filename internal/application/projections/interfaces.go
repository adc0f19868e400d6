package projections

import (
	"context"

	domainActivity "academy/internal/domain/activity"
	domainApplicant "academy/internal/domain/applicant"
	domainRegistration "academy/internal/domain/registration"
)

// ActivityStore interface for activity queries.
type ActivityStore interface {
	GetByID(ctx context.Context, id string) (domainActivity.Activity, error)
	ListPublished(ctx context.Context) ([]domainActivity.Activity, error)
	ListUnpublished(ctx context.Context) ([]domainActivity.Activity, error)
	ListSchedules(ctx context.Context, activityID string) ([]domainActivity.Schedule, error)
}

// RegistrationStore interface for registration queries.
type RegistrationStore interface {
	ListByActivityID(ctx context.Context, activityID string) ([]domainRegistration.ScheduleRegistration, error)
	CountBySchedule(ctx context.Context, scheduleID string) (int, error)
}

// ApplicantStore interface for applicant queries.
type ApplicantStore interface {
	GetByID(ctx context.Context, id string) (domainApplicant.Applicant, error)
	ListByAccountID(ctx context.Context, accountID string) ([]domainApplicant.Applicant, error)
}
