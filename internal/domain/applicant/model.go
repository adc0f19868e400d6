package applicant

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength   = 100
	MaxSchoolLength = 150
)

// Education level bounds (Thai secondary school levels ม.1–ม.6).
const (
	MinEducationLevel = 1
	MaxEducationLevel = 6
)

// Prefixes allowed for an applicant name.
var Prefixes = []string{"เด็กหญิง", "เด็กชาย", "นาย", "นางสาว"}

// Domain errors
var (
	ErrHasRegistrations = errors.New("applicant has non-rejected registrations")
	ErrNotOwner         = errors.New("applicant belongs to another account")
)

// Applicant is the registration subject ("student information").
// An account may own several applicants.
type Applicant struct {
	ID             string
	AccountID      string
	Prefix         string
	FullName       string
	EducationLevel int
	School         string
	FoodAllergies  string
	ParentName     string
	ParentEmail    string
	SecondaryEmail string
	PhoneNumber    string
	CreatedAt      time.Time
}

// Validate checks if the Applicant has valid data.
// PRE: Applicant struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: at least one guardian email is set, EducationLevel within 1–6
func (a *Applicant) Validate() error {
	if !isAllowedPrefix(a.Prefix) {
		return errors.New("prefix must be one of the allowed name prefixes")
	}
	if strings.TrimSpace(a.FullName) == "" {
		return errors.New("applicant name cannot be empty")
	}
	if len(a.FullName) > MaxNameLength {
		return fmt.Errorf("applicant name cannot exceed %d characters", MaxNameLength)
	}
	if a.EducationLevel < MinEducationLevel || a.EducationLevel > MaxEducationLevel {
		return fmt.Errorf("education level must be between %d and %d", MinEducationLevel, MaxEducationLevel)
	}
	if strings.TrimSpace(a.School) == "" {
		return errors.New("school cannot be empty")
	}
	if len(a.School) > MaxSchoolLength {
		return fmt.Errorf("school cannot exceed %d characters", MaxSchoolLength)
	}
	if strings.TrimSpace(a.ParentName) == "" {
		return errors.New("parent name cannot be empty")
	}
	if a.ParentEmail == "" && a.SecondaryEmail == "" {
		return errors.New("a guardian email or backup email is required")
	}
	if a.ParentEmail != "" && !strings.Contains(a.ParentEmail, "@") {
		return errors.New("parent email must be valid")
	}
	if a.SecondaryEmail != "" && !strings.Contains(a.SecondaryEmail, "@") {
		return errors.New("secondary email must be valid")
	}
	return nil
}

// DisplayName returns the prefix-qualified full name used in tables and emails.
// INVARIANT: Applicant fields are not mutated
func (a *Applicant) DisplayName() string {
	return strings.TrimSpace(a.Prefix + " " + a.FullName)
}

// NotifyEmail returns the address notifications go to, preferring the
// parent email and falling back to the secondary email.
func (a *Applicant) NotifyEmail() string {
	if a.ParentEmail != "" {
		return a.ParentEmail
	}
	return a.SecondaryEmail
}

// EducationLevelLabel renders an education level as its Thai label, e.g. "ม. 4".
// Unknown levels still render with the same scheme rather than failing.
func EducationLevelLabel(level int) string {
	return fmt.Sprintf("ม. %d", level)
}

func isAllowedPrefix(p string) bool {
	for _, allowed := range Prefixes {
		if p == allowed {
			return true
		}
	}
	return false
}
