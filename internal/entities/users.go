package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// ValidRole reports whether the role is one of the known roles.
func ValidRole(role UserRole) bool {
	return role == UserRoleUser || role == UserRoleAdmin
}

// User is the single persisted identity record. A user created through the
// local registration flow always has a password hash; a user created through
// an OAuth first login has ExternalID set and no hash until one is assigned.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"size:100" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash *string   `gorm:"size:100" json:"-"`
	ExternalID   *string   `gorm:"uniqueIndex;size:256" json:"-"`
	Role         UserRole  `gorm:"size:20;default:'user'" json:"role"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns the immutable record identifier.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = UserRoleUser
	}
	return nil
}

// HasPassword reports whether the user can authenticate locally.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
