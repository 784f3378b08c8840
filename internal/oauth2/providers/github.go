package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"accounts-service/internal/auth"
)

const githubUserURL = "https://api.github.com/user"

// GitHubProvider implements OAuth login against GitHub. After the code
// exchange it fetches the user's profile to obtain the subject id, login
// and (possibly absent) public email.
type GitHubProvider struct {
	config  *oauth2.Config
	userURL string
}

// NewGitHubProvider creates a GitHub OAuth provider.
func NewGitHubProvider(clientID, clientSecret, callbackURL string) (*GitHubProvider, error) {
	if clientID == "" || clientSecret == "" || callbackURL == "" {
		return nil, errors.New("github oauth config missing required fields")
	}

	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"user:email"},
		},
		userURL: githubUserURL,
	}, nil
}

func (p *GitHubProvider) Name() string {
	return "github"
}

// AuthCodeURL builds the GitHub authorization URL.
func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades the callback code for an access token and fetches the
// user's profile from the GitHub API.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*auth.ExternalIdentity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github token exchange failed: %w", err)
	}

	client := p.config.Client(ctx, token)
	client.Timeout = 30 * time.Second

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github user fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("github user fetch returned %d: %s", resp.StatusCode, body)
	}

	var profile struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("github user response parse failed: %w", err)
	}
	if profile.ID == 0 {
		return nil, errors.New("github user response missing id")
	}

	return &auth.ExternalIdentity{
		SubjectID: strconv.FormatInt(profile.ID, 10),
		Email:     profile.Email,
		Username:  profile.Login,
	}, nil
}
