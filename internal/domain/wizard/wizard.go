// Package wizard models the three-step registration flow as an
// explicit finite-state machine: applicant selection, schedule
// selection, payment capture. Every forward transition passes the
// current step's validation gate; backward transitions always succeed
// and never discard entered data.
package wizard

import (
	"errors"
	"time"

	"academy/internal/domain/applicant"
)

// Step identifies a wizard step.
type Step int

// Wizard steps in order.
const (
	StepApplicant Step = 1
	StepSchedules Step = 2
	StepPayment   Step = 3
)

// Domain errors
var (
	ErrInvalidTransition   = errors.New("transition not allowed from this step")
	ErrUnknownProfile      = errors.New("unknown applicant profile")
	ErrUnknownSchedule     = errors.New("unknown schedule")
	ErrScheduleFull        = errors.New("schedule has no available spots")
	ErrNoSchedulesSelected = errors.New("at least one schedule must be selected")
	ErrProofRequired       = errors.New("payment proof is required for a paid registration")
)

// allowedTransitions is the single transition table. Forward moves are
// additionally gated by the current step's validation.
var allowedTransitions = map[Step][]Step{
	StepApplicant: {StepSchedules},
	StepSchedules: {StepApplicant, StepPayment},
	StepPayment:   {StepSchedules},
}

// ScheduleOption is one selectable session shown in step 2.
type ScheduleOption struct {
	ID             string
	EventStartAt   time.Time
	Price          int
	AvailableSpots int
}

// Selectable reports whether the schedule can still be chosen.
func (o ScheduleOption) Selectable() bool {
	return o.AvailableSpots > 0
}

// Submission is the packaged result of a completed wizard run: either
// an existing applicant profile or a new-applicant draft, the selected
// schedule ids, and the optional payment proof. The backend expands it
// into one registration row per schedule id, all sharing the proof.
type Submission struct {
	ProfileID    string
	NewApplicant *applicant.Applicant
	ScheduleIDs  []string
	ProofFileID  string
	Amount       int
}

// State is the wizard's mutable state. It is a client-side value: the
// server re-validates capacity and the registration window on submit.
type State struct {
	Step Step

	AccountEmail string
	Profiles     []applicant.Applicant

	// SelectedProfileID is empty while the operator is creating a new
	// applicant inline; NewApplicant then carries the draft.
	SelectedProfileID string
	NewApplicant      applicant.Applicant
	UseAccountEmail   bool

	Schedules           []ScheduleOption
	SelectedScheduleIDs []string

	ProofFileID string
}

// New starts a wizard at step 1.
// PRE: schedules belong to a single activity
// POST: State is at StepApplicant with nothing selected
func New(accountEmail string, profiles []applicant.Applicant, schedules []ScheduleOption) *State {
	return &State{
		Step:         StepApplicant,
		AccountEmail: accountEmail,
		Profiles:     profiles,
		Schedules:    schedules,
	}
}

// SelectProfile chooses an existing applicant profile for step 1.
// PRE: id matches one of the loaded profiles
// POST: SelectedProfileID is set and any new-applicant draft is ignored
func (s *State) SelectProfile(id string) error {
	for _, p := range s.Profiles {
		if p.ID == id {
			s.SelectedProfileID = id
			return nil
		}
	}
	return ErrUnknownProfile
}

// StartNewApplicant switches step 1 to inline profile creation.
// POST: SelectedProfileID is cleared; draft holds the entered fields
func (s *State) StartNewApplicant(draft applicant.Applicant) {
	s.SelectedProfileID = ""
	s.NewApplicant = draft
	if s.UseAccountEmail {
		s.NewApplicant.ParentEmail = s.AccountEmail
		s.NewApplicant.SecondaryEmail = s.AccountEmail
	}
}

// SetUseAccountEmail toggles the "use my own email" convenience.
// Enabling copies the account email into both guardian email fields;
// disabling clears them so the required validation applies again.
func (s *State) SetUseAccountEmail(on bool) {
	s.UseAccountEmail = on
	if on {
		s.NewApplicant.ParentEmail = s.AccountEmail
		s.NewApplicant.SecondaryEmail = s.AccountEmail
	} else {
		s.NewApplicant.ParentEmail = ""
		s.NewApplicant.SecondaryEmail = ""
	}
}

// ToggleSchedule selects or deselects a schedule in step 2.
// PRE: id belongs to the activity's schedule set
// POST: selection updated; a full schedule is never selected
func (s *State) ToggleSchedule(id string) error {
	var opt *ScheduleOption
	for i := range s.Schedules {
		if s.Schedules[i].ID == id {
			opt = &s.Schedules[i]
			break
		}
	}
	if opt == nil {
		return ErrUnknownSchedule
	}

	for i, sel := range s.SelectedScheduleIDs {
		if sel == id {
			s.SelectedScheduleIDs = append(s.SelectedScheduleIDs[:i], s.SelectedScheduleIDs[i+1:]...)
			return nil
		}
	}

	if !opt.Selectable() {
		return ErrScheduleFull
	}
	s.SelectedScheduleIDs = append(s.SelectedScheduleIDs, id)
	return nil
}

// Total recomputes the running amount from the current selection.
// Never memoized: each call walks the selection.
func (s *State) Total() int {
	total := 0
	for _, id := range s.SelectedScheduleIDs {
		for _, opt := range s.Schedules {
			if opt.ID == id {
				total += opt.Price
			}
		}
	}
	return total
}

// AttachProof records the uploaded payment proof file for step 3.
func (s *State) AttachProof(fileID string) {
	s.ProofFileID = fileID
}

// Next advances to the following step after validating the current one.
// PRE: current step's gate passes
// POST: Step advanced by one; state is otherwise untouched
func (s *State) Next() error {
	target := s.Step + 1
	if !s.canTransition(target) {
		return ErrInvalidTransition
	}
	if err := s.gate(s.Step); err != nil {
		return err
	}
	s.Step = target
	return nil
}

// Back returns to the previous step without validation.
// POST: Step decreased by one; all entered data preserved
func (s *State) Back() error {
	target := s.Step - 1
	if !s.canTransition(target) {
		return ErrInvalidTransition
	}
	s.Step = target
	return nil
}

// Submission validates every gate and packages the final request.
// A failing submission leaves the state untouched and on step 3 so the
// operator can retry without re-entering anything.
// PRE: Step is StepPayment
// POST: Returns the packaged request; State unchanged
func (s *State) Submission() (Submission, error) {
	if s.Step != StepPayment {
		return Submission{}, ErrInvalidTransition
	}
	for _, step := range []Step{StepApplicant, StepSchedules, StepPayment} {
		if err := s.gate(step); err != nil {
			return Submission{}, err
		}
	}

	sub := Submission{
		ProfileID:   s.SelectedProfileID,
		ScheduleIDs: append([]string(nil), s.SelectedScheduleIDs...),
		ProofFileID: s.ProofFileID,
		Amount:      s.Total(),
	}
	if s.SelectedProfileID == "" {
		draft := s.NewApplicant
		sub.NewApplicant = &draft
	}
	return sub, nil
}

// gate validates one step's completion requirements.
func (s *State) gate(step Step) error {
	switch step {
	case StepApplicant:
		if s.SelectedProfileID != "" {
			return nil
		}
		return s.NewApplicant.Validate()
	case StepSchedules:
		if len(s.SelectedScheduleIDs) == 0 {
			return ErrNoSchedulesSelected
		}
		return nil
	case StepPayment:
		if s.Total() > 0 && s.ProofFileID == "" {
			return ErrProofRequired
		}
		return nil
	}
	return ErrInvalidTransition
}

func (s *State) canTransition(to Step) bool {
	for _, allowed := range allowedTransitions[s.Step] {
		if allowed == to {
			return true
		}
	}
	return false
}
