package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"accounts-service/internal/entities"
)

// ContextKeyClaims is the Gin context key holding the verified bearer claims.
const ContextKeyClaims = "auth_claims"

// SessionAuth resolves a session-bound user into request claims, re-fetching
// the record so role and profile changes take effect immediately on the
// session path. It never rejects a request; RequireAuth still gates the
// route. A stale binding to a deleted user simply resolves no claims.
func SessionAuth(sessions *SessionManager, service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetClaims(c) == nil && sessions != nil && service != nil {
			if id := sessions.UserID(c.Request); id != "" {
				if user, err := service.GetUserByID(id); err == nil {
					c.Set(ContextKeyClaims, &Claims{
						UserID: user.ID,
						Email:  user.Email,
						Role:   user.Role,
					})
				}
			}
		}
		c.Next()
	}
}

// RequireAuth returns a middleware that rejects requests without a valid
// bearer token and stores the verified claims in the request context.
// Requests already resolved by an earlier middleware pass through.
func RequireAuth(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetClaims(c) != nil {
			c.Next()
			return
		}

		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		claims, err := issuer.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid token",
			})
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireRole returns a middleware admitting only the given roles.
// Must run after RequireAuth.
func RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		if !Authorize(roles, claims.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// GetClaims retrieves the verified bearer claims from the Gin context.
// Returns nil on unauthenticated requests.
func GetClaims(c *gin.Context) *Claims {
	if v, exists := c.Get(ContextKeyClaims); exists {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}
	return nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns "" when the header is absent or malformed.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
