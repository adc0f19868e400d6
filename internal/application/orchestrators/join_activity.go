package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"academy/internal/domain/activity"
	"academy/internal/domain/applicant"
	"academy/internal/domain/registration"
)

// JoinActivityStore defines the activity store interface needed for joining.
type JoinActivityStore interface {
	GetByID(ctx context.Context, id string) (activity.Activity, error)
	ListSchedules(ctx context.Context, activityID string) ([]activity.Schedule, error)
}

// JoinApplicantStore defines the applicant store interface needed for joining.
type JoinApplicantStore interface {
	GetByID(ctx context.Context, id string) (applicant.Applicant, error)
	Save(ctx context.Context, a applicant.Applicant) error
}

// JoinRegistrationStore defines the registration store interface needed for joining.
type JoinRegistrationStore interface {
	CreateBatch(ctx context.Context, rows []registration.ScheduleRegistration, capacities map[string]int) error
}

// JoinActivityInput carries one finished wizard submission. Exactly one
// of ApplicantID and NewApplicant is set.
type JoinActivityInput struct {
	ActivityID   string
	AccountID    string
	ApplicantID  string               // existing profile
	NewApplicant *applicant.Applicant // profile created during the wizard
	ScheduleIDs  []string
	ProofFileID  string
}

// JoinActivityResult carries the created row IDs.
type JoinActivityResult struct {
	ApplicantID     string
	RegistrationIDs []string
}

// JoinActivityDeps holds dependencies for JoinActivity.
type JoinActivityDeps struct {
	ActivityStore     JoinActivityStore
	ApplicantStore    JoinApplicantStore
	RegistrationStore JoinRegistrationStore
	GenerateID        func() string
	Now               func() time.Time
}

// ExecuteJoinActivity turns a wizard submission into one pending row
// per selected schedule, all sharing the applicant and payment proof.
// PRE: ScheduleIDs is non-empty and all belong to the activity
// POST: N rows created atomically, or none on any failure
// INVARIANT: a row is never created for a closed window or a full schedule
func ExecuteJoinActivity(ctx context.Context, input JoinActivityInput, deps JoinActivityDeps) (JoinActivityResult, error) {
	if len(input.ScheduleIDs) == 0 {
		return JoinActivityResult{}, activity.ErrNoSchedules
	}
	if input.AccountID == "" {
		return JoinActivityResult{}, errors.New("account ID is required")
	}

	act, err := deps.ActivityStore.GetByID(ctx, input.ActivityID)
	if err != nil {
		return JoinActivityResult{}, err
	}
	if !act.Approved {
		return JoinActivityResult{}, activity.ErrNotApproved
	}
	now := deps.Now()
	if !act.IsOpen(now) {
		return JoinActivityResult{}, activity.ErrWindowClosed
	}

	schedules, err := deps.ActivityStore.ListSchedules(ctx, input.ActivityID)
	if err != nil {
		return JoinActivityResult{}, err
	}
	scheduleByID := make(map[string]activity.Schedule, len(schedules))
	for _, s := range schedules {
		scheduleByID[s.ID] = s
	}

	total := 0
	capacities := make(map[string]int, len(input.ScheduleIDs))
	seen := make(map[string]bool, len(input.ScheduleIDs))
	for _, id := range input.ScheduleIDs {
		s, ok := scheduleByID[id]
		if !ok {
			return JoinActivityResult{}, errors.New("schedule does not belong to this activity")
		}
		if seen[id] {
			return JoinActivityResult{}, errors.New("duplicate schedule selection")
		}
		seen[id] = true
		total += s.Price
		capacities[id] = s.MaxUsers
	}
	if total > 0 && input.ProofFileID == "" {
		return JoinActivityResult{}, errors.New("payment proof is required for paid schedules")
	}

	// Resolve or create the applicant profile.
	applicantID := input.ApplicantID
	switch {
	case input.NewApplicant != nil:
		a := *input.NewApplicant
		a.ID = deps.GenerateID()
		a.AccountID = input.AccountID
		a.CreatedAt = now
		if err := a.Validate(); err != nil {
			return JoinActivityResult{}, err
		}
		if err := deps.ApplicantStore.Save(ctx, a); err != nil {
			return JoinActivityResult{}, err
		}
		applicantID = a.ID
	case applicantID != "":
		a, err := deps.ApplicantStore.GetByID(ctx, applicantID)
		if err != nil {
			return JoinActivityResult{}, err
		}
		if a.AccountID != input.AccountID {
			return JoinActivityResult{}, applicant.ErrNotOwner
		}
	default:
		return JoinActivityResult{}, errors.New("an applicant profile is required")
	}

	rows := make([]registration.ScheduleRegistration, 0, len(input.ScheduleIDs))
	ids := make([]string, 0, len(input.ScheduleIDs))
	for _, scheduleID := range input.ScheduleIDs {
		id := deps.GenerateID()
		ids = append(ids, id)
		rows = append(rows, registration.ScheduleRegistration{
			ID:            id,
			ScheduleID:    scheduleID,
			ApplicantID:   applicantID,
			AccountID:     input.AccountID,
			PaymentStatus: registration.StatusPending,
			PaymentFileID: input.ProofFileID,
			CreatedAt:     now,
		})
	}

	if err := deps.RegistrationStore.CreateBatch(ctx, rows, capacities); err != nil {
		return JoinActivityResult{}, err
	}

	slog.Info("registration_event", "event", "activity_joined",
		"activity_id", input.ActivityID, "applicant_id", applicantID,
		"schedule_count", len(rows), "amount", total)
	return JoinActivityResult{ApplicantID: applicantID, RegistrationIDs: ids}, nil
}
