package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"pmblueprints/internal/config"
	"pmblueprints/internal/domain/integration"
)

// Profile is the identity returned by a login provider.
type Profile struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// Token is the subset of an OAuth grant the service stores.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

// Provider wraps one OAuth client registration with its user info
// endpoint. Providers back both social login and platform integrations.
type Provider struct {
	Name        string
	conf        *oauth2.Config
	userInfoURL string
	client      *http.Client
}

// AuthURL builds the authorization redirect URL carrying state.
func (p *Provider) AuthURL(state, redirectURI string) string {
	conf := *p.conf
	conf.RedirectURL = redirectURI
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange swaps an authorization code for tokens.
func (p *Provider) Exchange(ctx context.Context, code, redirectURI string) (*Token, error) {
	conf := *p.conf
	conf.RedirectURL = redirectURI

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange %s code: %w", p.Name, err)
	}

	out := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry.UTC()
		out.ExpiresAt = &expiry
	}
	return out, nil
}

// FetchProfile resolves the authenticated identity, used by social login.
func (p *Provider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	if p.userInfoURL == "" {
		return nil, fmt.Errorf("%s does not expose a user info endpoint", p.Name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s profile: %w", p.Name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read profile response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s profile: status %d", p.Name, resp.StatusCode)
	}

	var raw struct {
		ID                string `json:"id"`
		Email             string `json:"email"`
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
		GivenName         string `json:"given_name"`
		FamilyName        string `json:"family_name"`
		MSGivenName       string `json:"givenName"`
		Surname           string `json:"surname"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	profile := &Profile{
		ID:        raw.ID,
		Email:     raw.Email,
		FirstName: raw.GivenName,
		LastName:  raw.FamilyName,
	}
	if profile.Email == "" {
		profile.Email = raw.Mail
	}
	if profile.Email == "" {
		profile.Email = raw.UserPrincipalName
	}
	if profile.FirstName == "" {
		profile.FirstName = raw.MSGivenName
	}
	if profile.LastName == "" {
		profile.LastName = raw.Surname
	}
	return profile, nil
}

// Registry holds the configured providers keyed by platform identifier.
type Registry struct {
	providers map[string]*Provider
}

// NewRegistry builds providers from configuration. Providers with no
// client ID are left out; callers get a not-configured error for them.
func NewRegistry(cfg config.OAuthConfig) *Registry {
	client := &http.Client{Timeout: 30 * time.Second}
	providers := make(map[string]*Provider)

	add := func(name string, reg config.OAuthProvider, endpoint oauth2.Endpoint, scopes []string, userInfoURL string) {
		if reg.ClientID == "" {
			return
		}
		providers[name] = &Provider{
			Name: name,
			conf: &oauth2.Config{
				ClientID:     reg.ClientID,
				ClientSecret: reg.ClientSecret,
				Endpoint:     endpoint,
				Scopes:       scopes,
			},
			userInfoURL: userInfoURL,
			client:      client,
		}
	}

	add(integration.PlatformGoogle, cfg.Google,
		oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
		[]string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/spreadsheets",
		},
		"https://www.googleapis.com/oauth2/v2/userinfo")

	add(integration.PlatformMicrosoft, cfg.Microsoft,
		oauth2.Endpoint{
			AuthURL:  "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
			TokenURL: "https://login.microsoftonline.com/common/oauth2/v2.0/token",
		},
		[]string{"User.Read", "Files.ReadWrite"},
		"https://graph.microsoft.com/v1.0/me")

	add(integration.PlatformMonday, cfg.Monday,
		oauth2.Endpoint{
			AuthURL:  "https://auth.monday.com/oauth2/authorize",
			TokenURL: "https://auth.monday.com/oauth2/token",
		},
		[]string{"boards:read", "boards:write"},
		"")

	add(integration.PlatformSmartsheet, cfg.Smartsheet,
		oauth2.Endpoint{
			AuthURL:  "https://app.smartsheet.com/b/authorize",
			TokenURL: "https://api.smartsheet.com/2.0/token",
		},
		[]string{"READ_SHEETS", "WRITE_SHEETS", "CREATE_SHEETS"},
		"")

	return &Registry{providers: providers}
}

// For returns the provider for a platform.
func (r *Registry) For(platform string) (*Provider, bool) {
	p, ok := r.providers[platform]
	return p, ok
}
