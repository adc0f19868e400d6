package registration

import (
	"errors"
	"time"
)

// Payment status constants. A row starts pending; approved and rejected
// are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Domain errors
var (
	ErrNotPending    = errors.New("registration is not pending")
	ErrConflict      = errors.New("registration status changed concurrently")
	ErrScheduleFull  = errors.New("schedule has no available spots")
	ErrInvalidStatus = errors.New("status must be approved or rejected")
)

// ScheduleRegistration is the raw unit of truth: one row per
// (applicant, schedule) pair. A single wizard submission for N
// schedules produces N rows sharing the same applicant and the same
// payment proof reference.
type ScheduleRegistration struct {
	ID            string
	ScheduleID    string
	ApplicantID   string
	AccountID     string
	PaymentStatus string
	PaymentFileID string
	CreatedAt     time.Time
}

// IsValidStatus reports whether s is a known payment status.
func IsValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// IsTerminalStatus reports whether s admits no further transitions.
func IsTerminalStatus(s string) bool {
	return s == StatusApproved || s == StatusRejected
}

// Approve transitions the row from pending to approved.
// PRE: PaymentStatus is pending
// POST: PaymentStatus is approved
func (r *ScheduleRegistration) Approve() error {
	if r.PaymentStatus != StatusPending {
		return ErrNotPending
	}
	r.PaymentStatus = StatusApproved
	return nil
}

// Reject transitions the row from pending to rejected.
// PRE: PaymentStatus is pending
// POST: PaymentStatus is rejected
func (r *ScheduleRegistration) Reject() error {
	if r.PaymentStatus != StatusPending {
		return ErrNotPending
	}
	r.PaymentStatus = StatusRejected
	return nil
}

// DeriveStatus folds the statuses of all rows belonging to one
// applicant into a single aggregate status. This is a priority fold,
// not a majority vote: any approved row makes the applicant approved,
// otherwise any pending row keeps them pending, and only when every
// row is rejected is the applicant rejected.
// PRE: statuses is non-empty
// POST: returns one of the three status constants
func DeriveStatus(statuses []string) string {
	hasPending := false
	for _, s := range statuses {
		switch s {
		case StatusApproved:
			return StatusApproved
		case StatusPending:
			hasPending = true
		}
	}
	if hasPending {
		return StatusPending
	}
	return StatusRejected
}
