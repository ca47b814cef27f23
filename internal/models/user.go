package models

import (
	"time"

	"github.com/google/uuid"
)

// Role constants
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User represents an authenticated account.
type User struct {
	ID        uuid.UUID `json:"id"`
	Sub       string    `json:"sub"`      // Identity provider subject
	Username  string    `json:"username"` // Extracted from PKI CN e.g. "heatht" from "Heath Taylor (heatht)"
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"` // user, moderator, admin
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user is an admin.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsModerator returns true if the user can moderate any list.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

// CanReview returns true if the user may approve or reject suggestions on
// the list: moderators everywhere, owners on their own lists.
func (u *User) CanReview(list *List) bool {
	if u.IsModerator() {
		return true
	}
	return list != nil && list.IsOwner(u.ID)
}

// ValidRole returns true if role is a known role.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}
