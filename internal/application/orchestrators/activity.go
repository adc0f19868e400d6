package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"academy/internal/domain/activity"
)

// ActivityStore defines the interface for activity persistence.
type ActivityStore interface {
	GetByID(ctx context.Context, id string) (activity.Activity, error)
	Save(ctx context.Context, a activity.Activity) error
	SaveSchedule(ctx context.Context, s activity.Schedule) error
	ListSchedules(ctx context.Context, activityID string) ([]activity.Schedule, error)
}

// ScheduleInput is one schedule of a new activity.
type ScheduleInput struct {
	EventStartAt time.Time
	Price        int
	MaxUsers     int
}

// CreateActivityInput carries input for the orchestrator.
type CreateActivityInput struct {
	Title               string
	Description         string
	DescriptionShort    string
	ThumbnailFileID     string
	RegistrationOpenAt  time.Time
	RegistrationCloseAt time.Time
	Schedules           []ScheduleInput
	CreatedBy           string
}

// CreateActivityDeps holds dependencies for CreateActivity.
type CreateActivityDeps struct {
	ActivityStore ActivityStore
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteCreateActivity creates an activity with its schedules. The
// activity starts unapproved and stays invisible to members until an
// admin approves it.
// PRE: At least one schedule; all pass domain validation
// POST: Activity and schedules persisted, Approved=false
func ExecuteCreateActivity(ctx context.Context, input CreateActivityInput, deps CreateActivityDeps) (string, error) {
	if len(input.Schedules) == 0 {
		return "", activity.ErrNoSchedules
	}
	if input.CreatedBy == "" {
		return "", errors.New("creator account ID is required")
	}

	act := activity.Activity{
		ID:                  deps.GenerateID(),
		Title:               input.Title,
		Description:         input.Description,
		DescriptionShort:    input.DescriptionShort,
		ThumbnailFileID:     input.ThumbnailFileID,
		RegistrationOpenAt:  input.RegistrationOpenAt,
		RegistrationCloseAt: input.RegistrationCloseAt,
		CreatedBy:           input.CreatedBy,
		CreatedAt:           deps.Now(),
	}
	if err := act.Validate(); err != nil {
		return "", err
	}

	schedules := make([]activity.Schedule, 0, len(input.Schedules))
	for _, in := range input.Schedules {
		s := activity.Schedule{
			ID:           deps.GenerateID(),
			ActivityID:   act.ID,
			EventStartAt: in.EventStartAt,
			Price:        in.Price,
			MaxUsers:     in.MaxUsers,
		}
		if err := s.Validate(); err != nil {
			return "", err
		}
		schedules = append(schedules, s)
	}

	if err := deps.ActivityStore.Save(ctx, act); err != nil {
		return "", err
	}
	for _, s := range schedules {
		if err := deps.ActivityStore.SaveSchedule(ctx, s); err != nil {
			return "", err
		}
	}

	slog.Info("activity_event", "event", "activity_created",
		"activity_id", act.ID, "schedule_count", len(schedules))
	return act.ID, nil
}

// ApproveActivityInput carries input for publishing an activity.
type ApproveActivityInput struct {
	ActivityID string
}

// ApproveActivityDeps holds dependencies for ApproveActivity.
type ApproveActivityDeps struct {
	ActivityStore ActivityStore
}

// ExecuteApproveActivity publishes an activity to members.
// PRE: Activity exists and is not already approved
// POST: Approved=true
func ExecuteApproveActivity(ctx context.Context, input ApproveActivityInput, deps ApproveActivityDeps) error {
	act, err := deps.ActivityStore.GetByID(ctx, input.ActivityID)
	if err != nil {
		return err
	}
	if err := act.Approve(); err != nil {
		return err
	}
	if err := deps.ActivityStore.Save(ctx, act); err != nil {
		return err
	}
	slog.Info("activity_event", "event", "activity_approved", "activity_id", act.ID)
	return nil
}
