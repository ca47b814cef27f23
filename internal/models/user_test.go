package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestUser_IsAdmin(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		expected bool
	}{
		{"admin user", RoleAdmin, true},
		{"moderator", RoleModerator, false},
		{"regular user", RoleUser, false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Role: tt.role}
			if got := user.IsAdmin(); got != tt.expected {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUser_IsModerator(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		expected bool
	}{
		{"admin user", RoleAdmin, true},
		{"moderator", RoleModerator, true},
		{"regular user", RoleUser, false},
		{"unknown role", "owner", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Role: tt.role}
			if got := user.IsModerator(); got != tt.expected {
				t.Errorf("IsModerator() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUser_CanReview(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()
	owned := &List{ID: uuid.New(), OwnerID: &ownerID}
	orphan := &List{ID: uuid.New()}

	tests := []struct {
		name     string
		user     *User
		list     *List
		expected bool
	}{
		{"admin on any list", &User{ID: otherID, Role: RoleAdmin}, owned, true},
		{"moderator on any list", &User{ID: otherID, Role: RoleModerator}, owned, true},
		{"owner on own list", &User{ID: ownerID, Role: RoleUser}, owned, true},
		{"user on someone else's list", &User{ID: otherID, Role: RoleUser}, owned, false},
		{"user on list without owner", &User{ID: otherID, Role: RoleUser}, orphan, false},
		{"user with nil list", &User{ID: ownerID, Role: RoleUser}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.CanReview(tt.list); got != tt.expected {
				t.Errorf("CanReview() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleUser, RoleModerator, RoleAdmin} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false, want true", role)
		}
	}
	if ValidRole("global_mod") {
		t.Error("ValidRole(\"global_mod\") = true, want false")
	}
}
