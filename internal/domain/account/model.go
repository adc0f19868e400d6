package account

import (
	"errors"
	"strings"
	"time"
)

// Role constants
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Domain errors
var ErrNotFound = errors.New("account not found")

// Account is an authenticated identity. Authentication itself happens
// in an external identity provider; this record only carries what the
// portal needs: who the account is and whether it is an admin.
type Account struct {
	ID          string
	Email       string
	DisplayName string
	Role        string
	CreatedAt   time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (a *Account) Validate() error {
	if !strings.Contains(a.Email, "@") {
		return errors.New("account email must be valid")
	}
	if a.Role != RoleMember && a.Role != RoleAdmin {
		return errors.New("role must be 'member' or 'admin'")
	}
	return nil
}

// IsAdmin returns true if the account holds the admin role.
// INVARIANT: Account fields are not mutated
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
