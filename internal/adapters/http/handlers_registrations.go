package web

import (
	"errors"
	"net/http"

	registrationStore "academy/internal/adapters/storage/registration"
	"academy/internal/application/orchestrators"
	"academy/internal/domain/registration"
)

type setStatusRequest struct {
	Status string `json:"status"`
}

// handleSetRegistrationStatus handles PATCH /api/registrations/{id}/status
// (admin only). The decision applies compare-and-swap against pending:
// a concurrent opposite decision surfaces as 409, a repeated identical
// decision succeeds.
func handleSetRegistrationStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var req setStatusRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteSetRegistrationStatus(r.Context(), orchestrators.SetRegistrationStatusInput{
		RegistrationIDs: []string{r.PathValue("id")},
		Status:          req.Status,
	}, orchestrators.SetRegistrationStatusDeps{
		RegistrationStore: stores.RegistrationStore,
	})
	switch {
	case errors.Is(err, registration.ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, registrationStore.ErrNotFound):
		http.Error(w, "registration not found", http.StatusNotFound)
	case errors.Is(err, registration.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		internalError(w, err)
	default:
		updated := result.Updated[0]
		writeJSON(w, http.StatusOK, map[string]string{
			"id":     updated.ID,
			"status": updated.PaymentStatus,
		})
	}
}

// handleDeleteRegistration handles DELETE /api/registrations/{id}
// (admin only).
func handleDeleteRegistration(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	err := orchestrators.ExecuteDeleteRegistration(r.Context(), orchestrators.DeleteRegistrationInput{
		RegistrationIDs: []string{r.PathValue("id")},
	}, orchestrators.DeleteRegistrationDeps{
		RegistrationStore: stores.RegistrationStore,
	})
	switch {
	case errors.Is(err, registrationStore.ErrNotFound):
		http.Error(w, "registration not found", http.StatusNotFound)
	case err != nil:
		internalError(w, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
