package projections

import (
	"context"
	"time"

	domainActivity "academy/internal/domain/activity"
	"academy/internal/domain/wizard"
)

// GetActivityDetailQuery carries query parameters.
type GetActivityDetailQuery struct {
	ActivityID string
	Now        time.Time
}

// GetActivityDetailResult carries the query result.
type GetActivityDetailResult struct {
	Activity  domainActivity.Activity
	Schedules []wizard.ScheduleOption
	Open      bool
}

// GetActivityDetailDeps holds dependencies for GetActivityDetail.
type GetActivityDetailDeps struct {
	ActivityStore     ActivityStore
	RegistrationStore RegistrationStore
}

// QueryGetActivityDetail loads an activity with per-schedule
// availability, ready to seed a registration wizard.
// PRE: Valid activity ID
// POST: Options carry remaining spots based on non-rejected rows
func QueryGetActivityDetail(ctx context.Context, query GetActivityDetailQuery, deps GetActivityDetailDeps) (GetActivityDetailResult, error) {
	act, err := deps.ActivityStore.GetByID(ctx, query.ActivityID)
	if err != nil {
		return GetActivityDetailResult{}, err
	}
	schedules, err := deps.ActivityStore.ListSchedules(ctx, query.ActivityID)
	if err != nil {
		return GetActivityDetailResult{}, err
	}

	options := make([]wizard.ScheduleOption, 0, len(schedules))
	for _, s := range schedules {
		registered, err := deps.RegistrationStore.CountBySchedule(ctx, s.ID)
		if err != nil {
			return GetActivityDetailResult{}, err
		}
		options = append(options, wizard.ScheduleOption{
			ID:             s.ID,
			EventStartAt:   s.EventStartAt,
			Price:          s.Price,
			AvailableSpots: s.AvailableSpots(registered),
		})
	}

	return GetActivityDetailResult{
		Activity:  act,
		Schedules: options,
		Open:      act.IsOpen(query.Now),
	}, nil
}
