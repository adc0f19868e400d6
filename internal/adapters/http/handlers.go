package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"academy/internal/adapters/http/middleware"
	"academy/internal/domain/account"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write_json_failed", "error", err.Error())
	}
}

// registerRoutes wires every API endpoint onto the mux.
func registerRoutes(mux *http.ServeMux) {
	// Session
	mux.HandleFunc("POST /api/login", handleLogin)
	mux.HandleFunc("POST /api/logout", handleLogout)
	mux.HandleFunc("GET /api/me", handleMe)

	// Activities
	mux.HandleFunc("GET /api/activities", handleListActivities)
	mux.HandleFunc("POST /api/activities", handleCreateActivity)
	mux.HandleFunc("GET /api/activities/{id}", handleGetActivity)
	mux.HandleFunc("POST /api/activities/{id}/approve", handleApproveActivity)
	mux.HandleFunc("POST /api/activities/{id}/join", handleJoinActivity)
	mux.HandleFunc("GET /api/activities/{id}/registrants", handleListRegistrants)
	mux.HandleFunc("POST /api/activities/{id}/emails", handleSendApprovalEmails)
	mux.HandleFunc("GET /api/activities/{id}/export", handleExportRegistrants)
	mux.HandleFunc("GET /api/activities/{id}/payment-code", handlePaymentCode)

	// Registrations
	mux.HandleFunc("PATCH /api/registrations/{id}/status", handleSetRegistrationStatus)
	mux.HandleFunc("DELETE /api/registrations/{id}", handleDeleteRegistration)

	// Applicant profiles
	mux.HandleFunc("GET /api/applicants", handleListApplicants)
	mux.HandleFunc("POST /api/applicants", handleSaveApplicant)
	mux.HandleFunc("PUT /api/applicants/{id}", handleUpdateApplicant)
	mux.HandleFunc("DELETE /api/applicants/{id}", handleDeleteApplicant)

	// Uploads
	mux.HandleFunc("POST /api/files", handleUploadFile)
	mux.HandleFunc("GET /api/files/{id}", handleDownloadFile)
}

// sessionOrFail resolves the session or writes a 401.
func sessionOrFail(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, found := middleware.GetSessionFromContext(r.Context())
	if !found {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	return sess, true
}

// isAdminSession reports whether the session holds the admin role.
func isAdminSession(sess middleware.Session) bool {
	return sess.Role == account.RoleAdmin
}

// requireAdmin resolves the session and enforces the admin role.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return middleware.Session{}, false
	}
	if sess.Role != account.RoleAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}
