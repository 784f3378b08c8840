package auth

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"accounts-service/internal/database/users"
	"accounts-service/internal/entities"
)

// Validation patterns
var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// MinPasswordLength is the minimum accepted password length on registration.
const MinPasswordLength = 6

var (
	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password. The two cases are deliberately indistinguishable so the login
	// endpoint cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameInvalid  = errors.New("username must be 3-30 characters, alphanumeric and underscore/hyphen only")
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailInvalid     = errors.New("invalid email format")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrInvalidRole      = errors.New("invalid role")
	ErrEmptyUpdate      = errors.New("at least one field must be provided")
)

// UserStore is the slice of the credential store the authenticators need.
// *users.Repository satisfies it.
type UserStore interface {
	Create(user *entities.User, password string) error
	GetByID(id string) (*entities.User, error)
	GetByEmail(email string) (*entities.User, error)
	GetByExternalID(externalID string) (*entities.User, error)
	SetExternalID(id, externalID string) error
	TouchLastLogin(id string) error
}

// ExternalIdentity is what an OAuth provider asserts about a user after a
// successful code exchange. Email and Username are optional; the provider
// may withhold either.
type ExternalIdentity struct {
	SubjectID string
	Email     string
	Username  string
}

// Service implements the authentication core: registration, local login,
// OAuth resolution and bearer token issuance. It is constructed with
// explicit references to its collaborators.
type Service struct {
	store  UserStore
	hasher PasswordHasher
	tokens *TokenIssuer
}

// NewService creates a new authentication service.
func NewService(store UserStore, hasher PasswordHasher, tokens *TokenIssuer) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
	}
}

// ValidateUsername checks registration and update rules for usernames.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if !usernamePattern.MatchString(username) {
		return ErrUsernameInvalid
	}
	return nil
}

// ValidateEmail checks registration and update rules for email addresses.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	// RFC 5321 limits addresses to 254 bytes
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

// ValidatePassword checks registration and update rules for plaintext
// passwords.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// Register creates a new local user and issues a bearer token for it.
// Registration does not count as authentication: LastLoginAt stays unset.
func (s *Service) Register(username, email, password string) (*entities.User, string, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, "", err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, "", err
	}

	user := &entities.User{
		Username: username,
		Email:    email,
		Role:     entities.UserRoleUser,
	}
	if err := s.store.Create(user, password); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// LoginLocal validates email+password and returns the user with a fresh
// bearer token. Every failure path returns ErrInvalidCredentials.
func (s *Service) LoginLocal(email, password string) (*entities.User, string, error) {
	user, err := s.store.GetByEmail(email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	// A nil hash (OAuth-only account) never verifies.
	if !user.HasPassword() || !s.hasher.Verify(password, *user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	if err := s.store.TouchLastLogin(user.ID); err != nil {
		return nil, "", fmt.Errorf("failed to record login: %w", err)
	}
	now := time.Now()
	user.LastLoginAt = &now

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// LoginOAuth resolves a provider identity to a local user and issues a
// bearer token. Resolution order: existing externalId match, then link by
// provider email, then create a fresh record with no password.
func (s *Service) LoginOAuth(identity ExternalIdentity) (*entities.User, string, error) {
	user, err := s.resolveExternal(identity)
	if err != nil {
		return nil, "", err
	}

	if err := s.store.TouchLastLogin(user.ID); err != nil {
		return nil, "", fmt.Errorf("failed to record login: %w", err)
	}
	now := time.Now()
	user.LastLoginAt = &now

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// resolveExternal maps a provider subject id to exactly one local record.
func (s *Service) resolveExternal(identity ExternalIdentity) (*entities.User, error) {
	if identity.SubjectID == "" {
		return nil, errors.New("external identity has no subject id")
	}

	// 1. Subject id already known.
	user, err := s.store.GetByExternalID(identity.SubjectID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, users.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up external id: %w", err)
	}

	// 2. Provider reported an email we already have: link the accounts.
	// This trusts the provider's email assertion; see the package docs.
	if identity.Email != "" {
		user, err = s.store.GetByEmail(identity.Email)
		if err == nil {
			if err := s.store.SetExternalID(user.ID, identity.SubjectID); err != nil {
				return nil, fmt.Errorf("failed to link external id: %w", err)
			}
			externalID := identity.SubjectID
			user.ExternalID = &externalID
			return user, nil
		}
		if !errors.Is(err, users.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up email: %w", err)
		}
	}

	// 3. First login: create a record with no password. Missing provider
	// fields get deterministic fallbacks derived from the subject id.
	username := identity.Username
	if username == "" {
		username = "github_" + identity.SubjectID
	}
	email := identity.Email
	if email == "" {
		email = identity.SubjectID + "@github.example.com"
	}
	externalID := identity.SubjectID
	user = &entities.User{
		Username:   username,
		Email:      email,
		ExternalID: &externalID,
		Role:       entities.UserRoleUser,
	}
	err = s.store.Create(user, "")
	if err == nil {
		return user, nil
	}

	// Two concurrent first logins with the same subject id race between the
	// lookup above and this create. The unique index rejects the loser;
	// re-resolving then finds the winner's record.
	if errors.Is(err, users.ErrConflict) {
		if user, lookupErr := s.store.GetByExternalID(identity.SubjectID); lookupErr == nil {
			return user, nil
		}
		return nil, err
	}
	return nil, fmt.Errorf("failed to create user: %w", err)
}

// VerifyBearer validates a presented token and returns its claims.
func (s *Service) VerifyBearer(token string) (*Claims, error) {
	return s.tokens.Verify(token)
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id string) (*entities.User, error) {
	return s.store.GetByID(id)
}
