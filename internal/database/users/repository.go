// Package users provides database operations for user records.
//
// # Usage
//
//	repo := users.NewRepository(db, hasher)
//	user, err := repo.GetByEmail(email)
package users

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"accounts-service/internal/entities"
)

var (
	// ErrNotFound is returned when no record matches the lookup key.
	ErrNotFound = errors.New("user not found")

	// ErrConflict is returned when a create or update would violate the
	// uniqueness of email or external id. Under concurrent creates the
	// database's unique indexes are the authority: exactly one writer
	// succeeds, the rest get ErrConflict.
	ErrConflict = errors.New("user already exists")

	// ErrMissingCredential is returned when a create supplies neither a
	// password nor an external id. Such a record could never authenticate.
	ErrMissingCredential = errors.New("either a password or an external id is required")
)

// Hasher is the password hash primitive the repository needs. Plaintext
// passwords never reach the database; they are hashed on the way in.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// UpdateFields holds a partial update. Nil fields are left unchanged.
type UpdateFields struct {
	Username *string
	Email    *string
	Password *string
	Role     *entities.UserRole
}

// Repository handles all user database operations.
type Repository struct {
	db     *gorm.DB
	hasher Hasher
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB, hasher Hasher) *Repository {
	return &Repository{db: db, hasher: hasher}
}

// Create persists a new user. A non-empty password is hashed before
// storage; without one the user must carry an external id.
func (r *Repository) Create(user *entities.User, password string) error {
	if password == "" && (user.ExternalID == nil || *user.ExternalID == "") {
		return ErrMissingCredential
	}

	if password != "" {
		hash, err := r.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = &hash
	}

	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByExternalID retrieves a user by their OAuth provider subject id.
func (r *Repository) GetByExternalID(externalID string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("external_id = ?", externalID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update applies a partial update and returns the updated record. A supplied
// password is re-hashed before persisting.
func (r *Repository) Update(id string, fields UpdateFields) (*entities.User, error) {
	user, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if fields.Username != nil {
		updates["username"] = *fields.Username
	}
	if fields.Email != nil {
		updates["email"] = *fields.Email
	}
	if fields.Role != nil {
		updates["role"] = *fields.Role
	}
	if fields.Password != nil {
		hash, err := r.hasher.Hash(*fields.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updates["password_hash"] = hash
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := r.db.Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return r.GetByID(id)
}

// SetExternalID links an OAuth provider subject id to an existing user.
func (r *Repository) SetExternalID(id, externalID string) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).
		Update("external_id", externalID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return fmt.Errorf("failed to link external id: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastLogin records a successful authentication.
func (r *Repository) TouchLastLogin(id string) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).
		Update("last_login_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to update last login: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user record. The delete is terminal: subsequent
// lookups by id return ErrNotFound.
func (r *Repository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&entities.User{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all user records.
func (r *Repository) List() ([]entities.User, error) {
	var list []entities.User
	if err := r.db.Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return list, nil
}
