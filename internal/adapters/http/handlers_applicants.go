package web

import (
	"errors"
	"net/http"

	applicantStore "academy/internal/adapters/storage/applicant"
	"academy/internal/application/orchestrators"
	"academy/internal/domain/applicant"
	"academy/pkg/validator"
)

type applicantRequest struct {
	Prefix         string `json:"prefix" validate:"required"`
	FullName       string `json:"fullName" validate:"required,max=100"`
	EducationLevel int    `json:"educationLevel" validate:"edulevel"`
	School         string `json:"school" validate:"required,max=150"`
	FoodAllergies  string `json:"foodAllergies"`
	ParentName     string `json:"parentName" validate:"required"`
	ParentEmail    string `json:"parentEmail" validate:"required_without=SecondaryEmail,omitempty,email"`
	SecondaryEmail string `json:"secondaryEmail" validate:"omitempty,email"`
	PhoneNumber    string `json:"phoneNumber" validate:"omitempty,thaiphone"`
}

func (r applicantRequest) toApplicant() applicant.Applicant {
	return applicant.Applicant{
		Prefix:         r.Prefix,
		FullName:       r.FullName,
		EducationLevel: r.EducationLevel,
		School:         r.School,
		FoodAllergies:  r.FoodAllergies,
		ParentName:     r.ParentName,
		ParentEmail:    r.ParentEmail,
		SecondaryEmail: r.SecondaryEmail,
		PhoneNumber:    r.PhoneNumber,
	}
}

type applicantResponse struct {
	ID             string `json:"id"`
	Prefix         string `json:"prefix"`
	FullName       string `json:"fullName"`
	EducationLevel int    `json:"educationLevel"`
	LevelLabel     string `json:"levelLabel"`
	School         string `json:"school"`
	FoodAllergies  string `json:"foodAllergies,omitempty"`
	ParentName     string `json:"parentName,omitempty"`
	ParentEmail    string `json:"parentEmail"`
	SecondaryEmail string `json:"secondaryEmail,omitempty"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
}

func toApplicantResponse(a applicant.Applicant) applicantResponse {
	return applicantResponse{
		ID:             a.ID,
		Prefix:         a.Prefix,
		FullName:       a.FullName,
		EducationLevel: a.EducationLevel,
		LevelLabel:     applicant.EducationLevelLabel(a.EducationLevel),
		School:         a.School,
		FoodAllergies:  a.FoodAllergies,
		ParentName:     a.ParentName,
		ParentEmail:    a.ParentEmail,
		SecondaryEmail: a.SecondaryEmail,
		PhoneNumber:    a.PhoneNumber,
	}
}

// handleListApplicants handles GET /api/applicants. A member sees only
// the profiles owned by their own account.
func handleListApplicants(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	profiles, err := stores.ApplicantStore.ListByAccountID(r.Context(), sess.AccountID)
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]applicantResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toApplicantResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"applicants": out})
}

// handleSaveApplicant handles POST /api/applicants.
func handleSaveApplicant(w http.ResponseWriter, r *http.Request) {
	saveApplicant(w, r, "")
}

// handleUpdateApplicant handles PUT /api/applicants/{id}.
func handleUpdateApplicant(w http.ResponseWriter, r *http.Request) {
	saveApplicant(w, r, r.PathValue("id"))
}

func saveApplicant(w http.ResponseWriter, r *http.Request, applicantID string) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	var req applicantRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := orchestrators.ExecuteSaveApplicant(r.Context(), orchestrators.SaveApplicantInput{
		ApplicantID: applicantID,
		AccountID:   sess.AccountID,
		Applicant:   req.toApplicant(),
	}, orchestrators.SaveApplicantDeps{
		ApplicantStore: stores.ApplicantStore,
		GenerateID:     generateID,
		Now:            timeNow,
	})
	switch {
	case errors.Is(err, applicantStore.ErrNotFound):
		http.Error(w, "applicant not found", http.StatusNotFound)
	case errors.Is(err, applicant.ErrNotOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		status := http.StatusOK
		if applicantID == "" {
			status = http.StatusCreated
		}
		writeJSON(w, status, map[string]string{"id": id})
	}
}

// handleDeleteApplicant handles DELETE /api/applicants/{id}. Profiles
// with live registrations cannot be removed.
func handleDeleteApplicant(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	err := orchestrators.ExecuteDeleteApplicant(r.Context(), orchestrators.DeleteApplicantInput{
		ApplicantID: r.PathValue("id"),
		AccountID:   sess.AccountID,
		IsAdmin:     isAdminSession(sess),
	}, orchestrators.DeleteApplicantDeps{
		ApplicantStore:    stores.ApplicantStore,
		RegistrationStore: stores.RegistrationStore,
	})
	switch {
	case errors.Is(err, applicantStore.ErrNotFound):
		http.Error(w, "applicant not found", http.StatusNotFound)
	case errors.Is(err, applicant.ErrNotOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, applicant.ErrHasRegistrations):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		internalError(w, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
