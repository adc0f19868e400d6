package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"academy/internal/adapters/http/middleware"
	"academy/internal/domain/account"
)

// handleLogin handles POST /api/login.
// Identity arrives from the upstream OAuth proxy; this endpoint only
// exchanges a verified email for a session. Unknown emails get a fresh
// member account.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	}
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") {
		http.Error(w, "a valid email is required", http.StatusBadRequest)
		return
	}

	acc, err := stores.AccountStore.GetByEmail(r.Context(), email)
	if errors.Is(err, account.ErrNotFound) {
		acc = account.Account{
			ID:          generateID(),
			Email:       email,
			DisplayName: req.DisplayName,
			Role:        account.RoleMember,
			CreatedAt:   timeNow(),
		}
		if err := acc.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.AccountStore.Save(r.Context(), acc); err != nil {
			internalError(w, err)
			return
		}
		slog.Info("auth_event", "event", "account_created", "account_id", acc.ID)
	} else if err != nil {
		internalError(w, err)
		return
	}

	token, err := sessions.Create(acc.ID, acc.Email, acc.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{
		"accountId": acc.ID,
		"email":     acc.Email,
		"role":      acc.Role,
	})
}

// handleLogout handles POST /api/logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("academy_session"); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /api/me.
func handleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"accountId": sess.AccountID,
		"email":     sess.Email,
		"role":      sess.Role,
	})
}
