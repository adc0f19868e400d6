package activity

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength            = 200
	MaxDescriptionShortLength = 300
)

// Domain errors
var (
	ErrAlreadyApproved = errors.New("activity is already approved")
	ErrNotApproved     = errors.New("activity has not been approved")
	ErrWindowClosed    = errors.New("registration window is closed")
	ErrNoSchedules     = errors.New("activity must have at least one schedule")
)

// Activity is a published offering containing one or more schedules.
// Activities start unapproved and become visible to members once an
// admin approves them.
type Activity struct {
	ID                  string
	Title               string
	Description         string
	DescriptionShort    string
	ThumbnailFileID     string
	RegistrationOpenAt  time.Time
	RegistrationCloseAt time.Time
	Approved            bool
	CreatedBy           string
	CreatedAt           time.Time
}

// Schedule is one dated, priced, capacity-limited session of an activity.
type Schedule struct {
	ID           string
	ActivityID   string
	EventStartAt time.Time
	Price        int
	MaxUsers     int
}

// Validate checks if the Activity has valid data.
// PRE: Activity struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return errors.New("activity title cannot be empty")
	}
	if len(a.Title) > MaxTitleLength {
		return errors.New("activity title too long")
	}
	if len(a.DescriptionShort) > MaxDescriptionShortLength {
		return errors.New("short description too long")
	}
	if a.RegistrationCloseAt.Before(a.RegistrationOpenAt) {
		return errors.New("registration close must not precede open")
	}
	return nil
}

// Validate checks if the Schedule has valid data.
// PRE: Schedule struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (s *Schedule) Validate() error {
	if s.EventStartAt.IsZero() {
		return errors.New("schedule start time is required")
	}
	if s.Price < 0 {
		return errors.New("schedule price cannot be negative")
	}
	if s.MaxUsers < 1 {
		return errors.New("schedule capacity must be at least 1")
	}
	return nil
}

// Approve marks the activity as visible to members.
// PRE: Activity is not already approved
// POST: Approved is true
func (a *Activity) Approve() error {
	if a.Approved {
		return ErrAlreadyApproved
	}
	a.Approved = true
	return nil
}

// IsOpen reports whether the registration window contains now.
// INVARIANT: Activity fields are not mutated
func (a *Activity) IsOpen(now time.Time) bool {
	return !now.Before(a.RegistrationOpenAt) && !now.After(a.RegistrationCloseAt)
}

// AvailableSpots returns remaining seats given the current non-rejected
// registration count. Never negative.
// INVARIANT: registered beyond capacity reports zero, not a negative count
func (s *Schedule) AvailableSpots(registered int) int {
	spots := s.MaxUsers - registered
	if spots < 0 {
		return 0
	}
	return spots
}
