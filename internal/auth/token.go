package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"accounts-service/internal/entities"
)

// ErrInvalidToken covers every bearer rejection: bad signature, expiry,
// malformed token, unexpected signing algorithm. Callers get no finer
// detail than this.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified content of a bearer token.
type Claims struct {
	UserID string
	Email  string
	Role   entities.UserRole
}

// tokenClaims is the internal claims type used for JWT signing and parsing.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// TokenIssuer signs and verifies bearer tokens. Verification is stateless:
// there is no revocation list, so a token stays valid for its full lifetime
// even after role changes or account deletion.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer with the process-wide signing secret and
// the configured token lifetime.
func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// WithClock overrides the issuer's time source. Tests use this to simulate
// token expiry without sleeping.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

// Issue signs a time-bounded assertion of the user's id, email and role.
func (t *TokenIssuer) Issue(user *entities.User) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("token issuer has no signing secret")
	}

	now := t.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
		Email: user.Email,
		Role:  string(user.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a bearer token, returning its claims.
// Any failure maps to ErrInvalidToken.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &parsed, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if parsed.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID: parsed.Subject,
		Email:  parsed.Email,
		Role:   entities.UserRole(parsed.Role),
	}, nil
}
