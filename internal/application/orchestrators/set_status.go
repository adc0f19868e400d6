package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"academy/internal/domain/registration"
)

// StatusRegistrationStore defines the registration store interface for review.
type StatusRegistrationStore interface {
	GetByID(ctx context.Context, id string) (registration.ScheduleRegistration, error)
	UpdateStatus(ctx context.Context, id, from, to string) (registration.ScheduleRegistration, error)
	Delete(ctx context.Context, id string) error
}

// SetRegistrationStatusInput carries an admin review decision. The
// review screen shows one aggregated registrant, so a single decision
// usually covers several rows.
type SetRegistrationStatusInput struct {
	RegistrationIDs []string
	Status          string // approved or rejected
}

// SetRegistrationStatusResult reports the decision per row.
type SetRegistrationStatusResult struct {
	Updated []registration.ScheduleRegistration
}

// SetRegistrationStatusDeps holds dependencies for SetRegistrationStatus.
type SetRegistrationStatusDeps struct {
	RegistrationStore StatusRegistrationStore
}

// ExecuteSetRegistrationStatus applies an approve or reject decision to
// each row. Transitions use compare-and-swap against pending, so when
// two admins race, the loser gets registration.ErrConflict and no row
// is decided twice.
// PRE: Status is approved or rejected
// POST: Every listed row is in Status, or the error names why not
func ExecuteSetRegistrationStatus(ctx context.Context, input SetRegistrationStatusInput, deps SetRegistrationStatusDeps) (SetRegistrationStatusResult, error) {
	if input.Status != registration.StatusApproved && input.Status != registration.StatusRejected {
		return SetRegistrationStatusResult{}, registration.ErrInvalidStatus
	}
	if len(input.RegistrationIDs) == 0 {
		return SetRegistrationStatusResult{}, errors.New("at least one registration ID is required")
	}

	var result SetRegistrationStatusResult
	for _, id := range input.RegistrationIDs {
		updated, err := deps.RegistrationStore.UpdateStatus(ctx, id, registration.StatusPending, input.Status)
		if err != nil {
			if errors.Is(err, registration.ErrConflict) {
				// The row left pending under us. If it already carries the
				// requested status the decision stands; anything else is a
				// real conflict.
				current, getErr := deps.RegistrationStore.GetByID(ctx, id)
				if getErr == nil && current.PaymentStatus == input.Status {
					result.Updated = append(result.Updated, current)
					continue
				}
			}
			return result, err
		}
		result.Updated = append(result.Updated, updated)
	}

	slog.Info("registration_event", "event", "status_set",
		"status", input.Status, "row_count", len(result.Updated))
	return result, nil
}

// DeleteRegistrationInput carries input for removing rows outright.
type DeleteRegistrationInput struct {
	RegistrationIDs []string
}

// DeleteRegistrationDeps holds dependencies for DeleteRegistration.
type DeleteRegistrationDeps struct {
	RegistrationStore StatusRegistrationStore
}

// ExecuteDeleteRegistration removes rows entirely, freeing their
// schedule seats. Used by admins for withdrawn or mistaken submissions.
// POST: Listed rows no longer exist
func ExecuteDeleteRegistration(ctx context.Context, input DeleteRegistrationInput, deps DeleteRegistrationDeps) error {
	if len(input.RegistrationIDs) == 0 {
		return errors.New("at least one registration ID is required")
	}
	for _, id := range input.RegistrationIDs {
		if err := deps.RegistrationStore.Delete(ctx, id); err != nil {
			return err
		}
	}
	slog.Info("registration_event", "event", "rows_deleted", "row_count", len(input.RegistrationIDs))
	return nil
}
