package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"accounts-service/internal/auth"
	"accounts-service/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.EnableHSTS {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	// Allow-all CORS. The wildcard origin never admits credentialed
	// requests, so the session cookie stays same-site.
	router.Use(cors.Default())

	// Session middleware carries the OAuth state and the user binding
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	authController := NewAuthController(cfg.AuthService, cfg.Providers, cfg.SessionManager, cfg.RateLimiter)
	userController := NewUserController(cfg.Users)
	health := NewHealthController(cfg.Database, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Public auth endpoints
	router.POST("/api/auth/register", authController.Register)
	router.POST("/api/auth/login", authController.Login)
	router.GET("/api/auth/github", authController.OAuthRedirect("github"))
	router.GET("/api/auth/github/callback", authController.OAuthCallback("github"))
	router.GET("/auth/success", authController.OAuthSuccess)

	// Authenticated endpoints accept either credential: a session bound
	// during the OAuth hand-off (record re-fetched per request) or a
	// bearer token.
	authed := router.Group("/",
		auth.SessionAuth(cfg.SessionManager, cfg.AuthService),
		auth.RequireAuth(cfg.TokenIssuer),
	)
	authed.GET("/api/auth/profile", authController.Profile)
	authed.POST("/api/auth/logout", authController.Logout)

	// User management endpoints
	authed.GET("/api/users", auth.RequireRole(entities.UserRoleAdmin), userController.List)
	authed.GET("/api/users/:id", userController.Get)
	authed.PUT("/api/users/:id", userController.Update)
	authed.DELETE("/api/users/:id", userController.Delete)

	return router
}
