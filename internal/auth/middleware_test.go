package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"accounts-service/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func issueTestToken(t *testing.T, issuer *TokenIssuer, role entities.UserRole) string {
	t.Helper()
	user := testUser()
	user.Role = role
	token, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return token
}

func protectedRouter(issuer *TokenIssuer, roles ...entities.UserRole) *gin.Engine {
	router := gin.New()
	group := router.Group("/", RequireAuth(issuer))
	handlers := []gin.HandlerFunc{}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		claims := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID})
	})
	group.GET("/protected", handlers...)
	return router
}

func TestRequireAuth_ValidToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	router := protectedRouter(issuer)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, issuer, entities.UserRoleUser))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	router := protectedRouter(issuer)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuth_MalformedHeaders(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	router := protectedRouter(issuer)
	token := issueTestToken(t, issuer, entities.UserRoleUser)

	tests := []struct {
		name   string
		header string
	}{
		{"wrong scheme", "Basic " + token},
		{"no scheme", token},
		{"empty bearer", "Bearer"},
		{"garbage token", "Bearer garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestRequireAuth_CaseInsensitiveScheme(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	router := protectedRouter(issuer)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "bearer "+issueTestToken(t, issuer, entities.UserRoleUser))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	issuer := NewTokenIssuer("test-secret", time.Hour).
		WithClock(func() time.Time { return clock })
	router := protectedRouter(issuer)
	token := issueTestToken(t, issuer, entities.UserRoleUser)

	clock = start.Add(2 * time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireRole_Admin(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	router := protectedRouter(issuer, entities.UserRoleAdmin)

	tests := []struct {
		name string
		role entities.UserRole
		want int
	}{
		{"admin admitted", entities.UserRoleAdmin, http.StatusOK},
		{"user rejected", entities.UserRoleUser, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+issueTestToken(t, issuer, tt.role))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestGetClaims_Unauthenticated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if claims := GetClaims(c); claims != nil {
		t.Errorf("GetClaims() = %v, want nil", claims)
	}
}

func TestRequireAuth_PresetClaimsPassThrough(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	router := gin.New()
	router.GET("/protected",
		func(c *gin.Context) {
			c.Set(ContextKeyClaims, &Claims{UserID: "session-user", Role: entities.UserRoleUser})
			c.Next()
		},
		RequireAuth(issuer),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"user_id": GetClaims(c).UserID})
		},
	)

	// No Authorization header: claims resolved upstream are accepted
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
