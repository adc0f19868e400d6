package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"academy/internal/domain/applicant"
)

// ApplicantStore defines the interface for applicant persistence.
type ApplicantStore interface {
	GetByID(ctx context.Context, id string) (applicant.Applicant, error)
	Save(ctx context.Context, a applicant.Applicant) error
	Delete(ctx context.Context, id string) error
	ListByAccountID(ctx context.Context, accountID string) ([]applicant.Applicant, error)
}

// ApplicantRegistrationCounter counts an applicant's live registrations.
type ApplicantRegistrationCounter interface {
	CountActiveByApplicant(ctx context.Context, applicantID string) (int, error)
}

// SaveApplicantInput carries input for creating or updating a profile.
type SaveApplicantInput struct {
	ApplicantID string // empty for create
	AccountID   string
	Applicant   applicant.Applicant // field values; ID and AccountID are ignored
}

// SaveApplicantDeps holds dependencies for SaveApplicant.
type SaveApplicantDeps struct {
	ApplicantStore ApplicantStore
	GenerateID     func() string
	Now            func() time.Time
}

// ExecuteSaveApplicant creates or updates an applicant profile owned by
// the calling account.
// PRE: Applicant passes domain validation
// POST: Profile persisted under the account; returns the profile ID
func ExecuteSaveApplicant(ctx context.Context, input SaveApplicantInput, deps SaveApplicantDeps) (string, error) {
	if input.AccountID == "" {
		return "", errors.New("account ID is required")
	}

	a := input.Applicant
	a.AccountID = input.AccountID

	if input.ApplicantID == "" {
		a.ID = deps.GenerateID()
		a.CreatedAt = deps.Now()
	} else {
		existing, err := deps.ApplicantStore.GetByID(ctx, input.ApplicantID)
		if err != nil {
			return "", err
		}
		if existing.AccountID != input.AccountID {
			return "", applicant.ErrNotOwner
		}
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	}

	if err := a.Validate(); err != nil {
		return "", err
	}
	if err := deps.ApplicantStore.Save(ctx, a); err != nil {
		return "", err
	}

	slog.Info("applicant_event", "event", "profile_saved", "applicant_id", a.ID)
	return a.ID, nil
}

// DeleteApplicantInput carries input for removing a profile.
type DeleteApplicantInput struct {
	ApplicantID string
	AccountID   string
	IsAdmin     bool
}

// DeleteApplicantDeps holds dependencies for DeleteApplicant.
type DeleteApplicantDeps struct {
	ApplicantStore    ApplicantStore
	RegistrationStore ApplicantRegistrationCounter
}

// ExecuteDeleteApplicant removes a profile that has no live
// registrations. Admins may delete any profile; members only their own.
// PRE: The profile has no non-rejected registration rows
// POST: Profile deleted, or applicant.ErrHasRegistrations
func ExecuteDeleteApplicant(ctx context.Context, input DeleteApplicantInput, deps DeleteApplicantDeps) error {
	a, err := deps.ApplicantStore.GetByID(ctx, input.ApplicantID)
	if err != nil {
		return err
	}
	if !input.IsAdmin && a.AccountID != input.AccountID {
		return applicant.ErrNotOwner
	}

	active, err := deps.RegistrationStore.CountActiveByApplicant(ctx, input.ApplicantID)
	if err != nil {
		return err
	}
	if active > 0 {
		return applicant.ErrHasRegistrations
	}

	if err := deps.ApplicantStore.Delete(ctx, input.ApplicantID); err != nil {
		return err
	}
	slog.Info("applicant_event", "event", "profile_deleted", "applicant_id", input.ApplicantID)
	return nil
}
