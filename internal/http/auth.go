package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"accounts-service/internal/auth"
	"accounts-service/internal/oauth2"
)

// AuthController handles registration, login and the OAuth hand-off.
type AuthController struct {
	service   *auth.Service
	providers *oauth2.Registry
	sessions  *auth.SessionManager
	limiter   *auth.RateLimiter
}

// NewAuthController creates a new authentication controller. The limiter is
// optional; without one local logins are not throttled.
func NewAuthController(service *auth.Service, providers *oauth2.Registry, sessions *auth.SessionManager, limiter *auth.RateLimiter) *AuthController {
	return &AuthController{
		service:   service,
		providers: providers,
		sessions:  sessions,
		limiter:   limiter,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is returned by every endpoint that ends in a resolved
// identity. The user serialization never includes the password hash.
type authResponse struct {
	Message string `json:"message"`
	User    any    `json:"user"`
	Token   string `json:"token"`
}

// Register creates a new local account and returns it with a bearer token.
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, token, err := ac.service.Register(req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err, "register")
		return
	}

	log.Printf("New user registered: %s", user.Email)
	c.JSON(http.StatusCreated, authResponse{
		Message: "User registered successfully",
		User:    user,
		Token:   token,
	})
}

// Login authenticates with email and password.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	ip := c.ClientIP()
	if ac.limiter != nil {
		if allowed, retryAfter := ac.limiter.Allow(ip, req.Email); !allowed {
			c.Header("Retry-After", retryAfter.String())
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many login attempts"})
			return
		}
	}

	user, token, err := ac.service.LoginLocal(req.Email, req.Password)
	if err != nil {
		if ac.limiter != nil && errors.Is(err, auth.ErrInvalidCredentials) {
			ac.limiter.RecordFailure(ip, req.Email)
		}
		respondError(c, err, "login")
		return
	}
	if ac.limiter != nil {
		ac.limiter.RecordSuccess(ip, req.Email)
	}

	log.Printf("User logged in: %s", user.Email)
	c.JSON(http.StatusOK, authResponse{
		Message: "Login successful",
		User:    user,
		Token:   token,
	})
}

// OAuthRedirect starts the OAuth flow for the named provider, stashing the
// anti-forgery state in the session before redirecting.
func (ac *AuthController) OAuthRedirect(providerName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider, err := ac.providers.Get(providerName)
		if err != nil {
			respondBadRequest(c, "unknown oauth provider")
			return
		}

		state, err := oauth2.GenerateState()
		if err != nil {
			respondInternalError(c, err, "oauth state")
			return
		}
		ac.sessions.PutOAuthState(c.Request, state)

		c.Redirect(http.StatusFound, provider.AuthCodeURL(state))
	}
}

// OAuthCallback completes the OAuth flow: state check, code exchange,
// identity resolution, session binding, then a redirect carrying the token.
func (ac *AuthController) OAuthCallback(providerName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider, err := ac.providers.Get(providerName)
		if err != nil {
			respondBadRequest(c, "unknown oauth provider")
			return
		}

		state := c.Query("state")
		if state == "" || state != ac.sessions.PopOAuthState(c.Request) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid state"})
			return
		}

		code := c.Query("code")
		if code == "" {
			respondBadRequest(c, "missing authorization code")
			return
		}

		identity, err := provider.Exchange(c.Request.Context(), code)
		if err != nil {
			log.Printf("OAuth exchange failed (%s): %v", providerName, err)
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication failed"})
			return
		}

		user, token, err := ac.service.LoginOAuth(*identity)
		if err != nil {
			respondError(c, err, "oauth login")
			return
		}

		if err := ac.sessions.BindUser(c.Request, user); err != nil {
			respondInternalError(c, err, "session bind")
			return
		}

		log.Printf("User logged in via OAuth: %s", user.Email)
		c.Redirect(http.StatusFound, "/auth/success?token="+token)
	}
}

// OAuthSuccess is the landing page the callback redirects to. The frontend
// extracts the token from the query string.
func (ac *AuthController) OAuthSuccess(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, `<html>
<head><title>Authentication Successful</title></head>
<body>
<h1>Authentication Successful</h1>
<p>You can close this window.</p>
</body>
</html>`)
}

// Profile returns the authenticated user's record, re-fetched from the
// store so later profile changes are reflected.
func (ac *AuthController) Profile(c *gin.Context) {
	claims := auth.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	user, err := ac.service.GetUserByID(claims.UserID)
	if err != nil {
		respondError(c, err, fmt.Sprintf("profile %s", claims.UserID))
		return
	}

	c.JSON(http.StatusOK, user)
}

// Logout destroys the session binding. A previously issued bearer token
// remains valid until its natural expiry.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.sessions.Unbind(c.Request); err != nil {
		respondInternalError(c, err, "logout")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Logged out successfully"})
}
