package http

import (
	"accounts-service/internal/auth"
	"accounts-service/internal/database"
	"accounts-service/internal/database/users"
	"accounts-service/internal/oauth2"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database    *database.Database
	Users       *users.Repository
	AuthService *auth.Service
	TokenIssuer *auth.TokenIssuer

	// Session binding for the OAuth hand-off
	SessionManager *auth.SessionManager

	// Registered OAuth providers
	Providers *oauth2.Registry

	// Login throttling (optional)
	RateLimiter *auth.RateLimiter

	// Adds the HSTS header; enable only when serving over HTTPS
	EnableHSTS bool

	// Application info
	Version string
}
