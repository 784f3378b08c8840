package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func newTestProvider(t *testing.T, userHandler http.HandlerFunc) *GitHubProvider {
	t.Helper()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"test-access-token","token_type":"bearer"}`))
	}))
	t.Cleanup(tokenServer.Close)

	userServer := httptest.NewServer(userHandler)
	t.Cleanup(userServer.Close)

	p, err := NewGitHubProvider("client-id", "client-secret", "http://localhost/callback")
	if err != nil {
		t.Fatalf("NewGitHubProvider() error = %v", err)
	}
	p.config.Endpoint = oauth2.Endpoint{
		AuthURL:  tokenServer.URL + "/authorize",
		TokenURL: tokenServer.URL + "/token",
	}
	p.userURL = userServer.URL
	return p
}

func TestNewGitHubProvider_MissingConfig(t *testing.T) {
	tests := []struct {
		name                            string
		clientID, clientSecret, callback string
	}{
		{"no client id", "", "secret", "http://localhost/callback"},
		{"no client secret", "id", "", "http://localhost/callback"},
		{"no callback", "id", "secret", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGitHubProvider(tt.clientID, tt.clientSecret, tt.callback); err == nil {
				t.Error("NewGitHubProvider() should fail with missing fields")
			}
		})
	}
}

func TestGitHubProvider_AuthCodeURL(t *testing.T) {
	p, err := NewGitHubProvider("client-id", "client-secret", "http://localhost/callback")
	if err != nil {
		t.Fatalf("NewGitHubProvider() error = %v", err)
	}

	raw := p.AuthCodeURL("state-token")
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("AuthCodeURL() produced unparseable URL: %v", err)
	}

	if parsed.Host != "github.com" {
		t.Errorf("host = %q, want github.com", parsed.Host)
	}
	q := parsed.Query()
	if q.Get("state") != "state-token" {
		t.Errorf("state = %q, want state-token", q.Get("state"))
	}
	if q.Get("client_id") != "client-id" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if !strings.Contains(q.Get("scope"), "user:email") {
		t.Errorf("scope = %q, want user:email", q.Get("scope"))
	}
}

func TestGitHubProvider_Exchange(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 583231, "login": "octocat", "email": "octocat@github.com"}`))
	})

	identity, err := p.Exchange(context.Background(), "some-code")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}

	if identity.SubjectID != "583231" {
		t.Errorf("SubjectID = %q, want 583231", identity.SubjectID)
	}
	if identity.Username != "octocat" {
		t.Errorf("Username = %q, want octocat", identity.Username)
	}
	if identity.Email != "octocat@github.com" {
		t.Errorf("Email = %q, want octocat@github.com", identity.Email)
	}
}

func TestGitHubProvider_Exchange_NullEmail(t *testing.T) {
	// GitHub returns null for users with a private email
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 583231, "login": "octocat", "email": null}`))
	})

	identity, err := p.Exchange(context.Background(), "some-code")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if identity.Email != "" {
		t.Errorf("Email = %q, want empty", identity.Email)
	}
}

func TestGitHubProvider_Exchange_UserFetchFails(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	})

	if _, err := p.Exchange(context.Background(), "some-code"); err == nil {
		t.Error("Exchange() should fail when the user fetch fails")
	}
}

func TestGitHubProvider_Exchange_MissingID(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"login": "octocat"}`))
	})

	if _, err := p.Exchange(context.Background(), "some-code"); err == nil {
		t.Error("Exchange() should fail when the profile has no id")
	}
}
