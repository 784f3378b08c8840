package auth

import (
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"accounts-service/internal/config"
	"accounts-service/internal/entities"
)

// Session data keys
const (
	SessionKeyUserID     = "user_id"
	SessionKeyOAuthState = "oauth_state"
)

// SessionManager wraps scs.SessionManager with the binding this service
// needs: carrying the OAuth state across the redirect round-trip and
// persisting the resolved user id for the session's lifetime. Only the user
// id is stored; the record is re-fetched per request, so role and profile
// changes are visible immediately on this path, unlike the token path.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager backed by the
// sessions table in the application database. The sqlDB parameter should be
// the underlying *sql.DB from GORM.
func NewSessionManager(sqlDB *sql.DB, cfg config.Session) (*SessionManager, error) {
	// Create sessions table if it doesn't exist
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = cfg.Lifetime

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode // Lax so the OAuth redirect carries the cookie
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// PutOAuthState stores the anti-forgery state before redirecting to the
// provider.
func (sm *SessionManager) PutOAuthState(r *http.Request, state string) {
	sm.Put(r.Context(), SessionKeyOAuthState, state)
}

// PopOAuthState returns and clears the stored state. Returns "" if none was
// stored or the session expired in between.
func (sm *SessionManager) PopOAuthState(r *http.Request) string {
	return sm.PopString(r.Context(), SessionKeyOAuthState)
}

// BindUser associates the session with a resolved user after a successful
// OAuth callback.
func (sm *SessionManager) BindUser(r *http.Request, user *entities.User) error {
	// Renew token to prevent session fixation
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}
	sm.Put(r.Context(), SessionKeyUserID, user.ID)
	return nil
}

// UserID retrieves the bound user id. Returns "" if the session carries no
// binding.
func (sm *SessionManager) UserID(r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyUserID)
}

// Unbind destroys the session binding. It does not and cannot invalidate a
// previously issued bearer token.
func (sm *SessionManager) Unbind(r *http.Request) error {
	return sm.Destroy(r.Context())
}
