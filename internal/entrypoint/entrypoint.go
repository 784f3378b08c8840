package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"accounts-service/internal/auth"
	"accounts-service/internal/config"
	"accounts-service/internal/database"
	"accounts-service/internal/database/users"
	http_controllers "accounts-service/internal/http"
	"accounts-service/internal/oauth2"
	"accounts-service/internal/oauth2/providers"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	// Wait for interrupt signal to gracefully shutdown the server with
	// the configured timeout.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Accounts Service v%s", version)

	if cfg.Auth.JWTSecret == "" {
		log.Fatalf("JWT_SECRET is not set. Refusing to start without a signing secret.")
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Credential hashing and the user store
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	userRepo := users.NewRepository(db.DB, hasher)

	// Token issuance and the auth core
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	authService := auth.NewService(userRepo, hasher, issuer)

	// Session manager backs the OAuth redirect round-trip
	sqlDB, err := db.SQLDB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Session)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	// OAuth providers. GitHub is optional: without credentials the routes
	// respond with an error instead of redirecting.
	registry := oauth2.NewRegistry()
	if cfg.GitHub.ClientID != "" {
		github, err := providers.NewGitHubProvider(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.CallbackURL)
		if err != nil {
			log.Fatalf("Failed to configure GitHub OAuth: %v", err)
		}
		registry.Register(github)
		log.Printf("GitHub OAuth enabled, callback %s", cfg.GitHub.CallbackURL)
	} else {
		log.Printf("WARNING: GitHub OAuth is not configured. Set 'GITHUB_CLIENT_ID' and 'GITHUB_CLIENT_SECRET' to enable it.")
	}

	// Login throttling
	limiter := auth.NewRateLimiter(auth.DefaultRateLimitConfig())

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Users:          userRepo,
		AuthService:    authService,
		TokenIssuer:    issuer,
		SessionManager: sessionManager,
		Providers:      registry,
		RateLimiter:    limiter,
		EnableHSTS:     cfg.Session.SecureCookies,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		limiter.Stop()
	}

	Serve(router, cfg, onShutdown)
}
