package projections

import (
	"context"
	"sort"
	"time"

	domainActivity "academy/internal/domain/activity"
	domainApplicant "academy/internal/domain/applicant"
	domainRegistration "academy/internal/domain/registration"
)

// Registrant is one applicant's aggregated view across all their
// registration rows for a single activity. The raw rows are one per
// (applicant, schedule) pair; the admin review screen, the export
// files, and the notification batch all consume this aggregate.
type Registrant struct {
	ApplicantID     string
	RegistrationIDs []string // Sorted; one per underlying row
	FullName        string   // Prefix + name
	Email           string   // Guardian email with fallback
	School          string
	EducationLevel  int
	RegisteredAt    time.Time   // Earliest row's creation time
	EventDates      []time.Time // Sorted, deduped by schedule identity
	Amount          int         // Sum of schedule prices over ALL rows
	Status          string      // Priority fold over row statuses
	SlipFileID      string      // Shared payment proof, empty if none
}

// IntegrityWarning flags a row that references data the aggregation
// could not resolve. The row is skipped rather than failing the whole
// projection so one bad reference cannot hide every other registrant.
type IntegrityWarning struct {
	RegistrationID string
	Reason         string
}

// ActivityStats summarizes an activity for the admin dashboard.
type ActivityStats struct {
	TotalRegistrants int
	Pending          int
	Approved         int
	Rejected         int
	Registered       int // Non-rejected rows across all schedules
	Capacity         int // Sum of schedule max_users
	ApprovedRevenue  int // Amount summed over approved registrants
}

// GetRegistrantsQuery carries query parameters.
type GetRegistrantsQuery struct {
	ActivityID string
}

// GetRegistrantsResult carries the query result.
type GetRegistrantsResult struct {
	Registrants []Registrant
	Warnings    []IntegrityWarning
	Stats       ActivityStats
}

// GetRegistrantsDeps holds dependencies for GetRegistrants.
type GetRegistrantsDeps struct {
	ActivityStore     ActivityStore
	RegistrationStore RegistrationStore
	ApplicantStore    ApplicantStore
}

// QueryGetRegistrants aggregates all registration rows of an activity
// into one entry per applicant.
// PRE: Valid activity ID
// POST: Registrants sorted by earliest registration time, stable on id
func QueryGetRegistrants(ctx context.Context, query GetRegistrantsQuery, deps GetRegistrantsDeps) (GetRegistrantsResult, error) {
	if _, err := deps.ActivityStore.GetByID(ctx, query.ActivityID); err != nil {
		return GetRegistrantsResult{}, err
	}
	schedules, err := deps.ActivityStore.ListSchedules(ctx, query.ActivityID)
	if err != nil {
		return GetRegistrantsResult{}, err
	}
	rows, err := deps.RegistrationStore.ListByActivityID(ctx, query.ActivityID)
	if err != nil {
		return GetRegistrantsResult{}, err
	}

	// Load each referenced applicant once.
	applicants := make(map[string]domainApplicant.Applicant)
	for _, row := range rows {
		if _, seen := applicants[row.ApplicantID]; seen {
			continue
		}
		a, err := deps.ApplicantStore.GetByID(ctx, row.ApplicantID)
		if err != nil {
			continue // surfaces as an integrity warning in the fold
		}
		applicants[row.ApplicantID] = a
	}

	registrants, warnings := FoldRegistrants(schedules, rows, applicants)
	return GetRegistrantsResult{
		Registrants: registrants,
		Warnings:    warnings,
		Stats:       foldStats(schedules, rows, registrants),
	}, nil
}

// FoldRegistrants groups raw rows by applicant and derives the
// aggregate fields. Pure: depends only on its inputs, and the result
// is independent of row order.
// INVARIANT: every input row lands in exactly one registrant or one warning
func FoldRegistrants(
	schedules []domainActivity.Schedule,
	rows []domainRegistration.ScheduleRegistration,
	applicants map[string]domainApplicant.Applicant,
) ([]Registrant, []IntegrityWarning) {
	scheduleByID := make(map[string]domainActivity.Schedule, len(schedules))
	for _, s := range schedules {
		scheduleByID[s.ID] = s
	}

	type group struct {
		registrant Registrant
		statuses   []string
		dateSeen   map[string]bool // schedule id, dedupe by schedule identity
	}
	groups := make(map[string]*group)
	var warnings []IntegrityWarning
	var order []string

	for _, row := range rows {
		sched, ok := scheduleByID[row.ScheduleID]
		if !ok {
			warnings = append(warnings, IntegrityWarning{
				RegistrationID: row.ID,
				Reason:         "references unknown schedule " + row.ScheduleID,
			})
			continue
		}
		app, ok := applicants[row.ApplicantID]
		if !ok {
			warnings = append(warnings, IntegrityWarning{
				RegistrationID: row.ID,
				Reason:         "references unknown applicant " + row.ApplicantID,
			})
			continue
		}

		g, ok := groups[row.ApplicantID]
		if !ok {
			g = &group{
				registrant: Registrant{
					ApplicantID:    app.ID,
					FullName:       app.DisplayName(),
					Email:          app.NotifyEmail(),
					School:         app.School,
					EducationLevel: app.EducationLevel,
					RegisteredAt:   row.CreatedAt,
				},
				dateSeen: make(map[string]bool),
			}
			groups[row.ApplicantID] = g
			order = append(order, row.ApplicantID)
		}

		g.registrant.RegistrationIDs = append(g.registrant.RegistrationIDs, row.ID)
		g.statuses = append(g.statuses, row.PaymentStatus)
		g.registrant.Amount += sched.Price
		if row.CreatedAt.Before(g.registrant.RegisteredAt) {
			g.registrant.RegisteredAt = row.CreatedAt
		}
		if !g.dateSeen[sched.ID] {
			g.dateSeen[sched.ID] = true
			g.registrant.EventDates = append(g.registrant.EventDates, sched.EventStartAt)
		}
		if g.registrant.SlipFileID == "" {
			g.registrant.SlipFileID = row.PaymentFileID
		}
	}

	result := make([]Registrant, 0, len(groups))
	for _, id := range order {
		g := groups[id]
		g.registrant.Status = domainRegistration.DeriveStatus(g.statuses)
		sort.Strings(g.registrant.RegistrationIDs)
		sort.Slice(g.registrant.EventDates, func(i, j int) bool {
			return g.registrant.EventDates[i].Before(g.registrant.EventDates[j])
		})
		result = append(result, g.registrant)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].RegisteredAt.Equal(result[j].RegisteredAt) {
			return result[i].RegisteredAt.Before(result[j].RegisteredAt)
		}
		return result[i].ApplicantID < result[j].ApplicantID
	})
	return result, warnings
}

func foldStats(schedules []domainActivity.Schedule, rows []domainRegistration.ScheduleRegistration, registrants []Registrant) ActivityStats {
	stats := ActivityStats{TotalRegistrants: len(registrants)}
	for _, s := range schedules {
		stats.Capacity += s.MaxUsers
	}
	for _, row := range rows {
		if row.PaymentStatus != domainRegistration.StatusRejected {
			stats.Registered++
		}
	}
	for _, r := range registrants {
		switch r.Status {
		case domainRegistration.StatusApproved:
			stats.Approved++
			stats.ApprovedRevenue += r.Amount
		case domainRegistration.StatusPending:
			stats.Pending++
		case domainRegistration.StatusRejected:
			stats.Rejected++
		}
	}
	return stats
}
