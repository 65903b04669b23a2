package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"pmblueprints/internal/config"
	"pmblueprints/internal/domain/integration"
)

// ==================== REGISTRY TESTS ====================

func TestRegistry_OmitsUnconfiguredProviders(t *testing.T) {
	reg := NewRegistry(config.OAuthConfig{
		Monday: config.OAuthProvider{ClientID: "monday-client", ClientSecret: "monday-secret"},
		Google: config.OAuthProvider{ClientID: "google-client", ClientSecret: "google-secret"},
	})

	_, ok := reg.For(integration.PlatformMonday)
	assert.True(t, ok)
	_, ok = reg.For(integration.PlatformGoogle)
	assert.True(t, ok)

	_, ok = reg.For(integration.PlatformSmartsheet)
	assert.False(t, ok)
	_, ok = reg.For(integration.PlatformMicrosoft)
	assert.False(t, ok)
}

func TestProvider_AuthURL(t *testing.T) {
	reg := NewRegistry(config.OAuthConfig{
		Monday: config.OAuthProvider{ClientID: "monday-client", ClientSecret: "monday-secret"},
	})

	p, ok := reg.For(integration.PlatformMonday)
	require.True(t, ok)

	url := p.AuthURL("state-abc", "https://pmblueprints.example/v1/integrations/callback")

	assert.Contains(t, url, "auth.monday.com/oauth2/authorize")
	assert.Contains(t, url, "state=state-abc")
	assert.Contains(t, url, "client_id=monday-client")
	assert.Contains(t, url, "access_type=offline")
}

// ==================== EXCHANGE TESTS ====================

func TestProvider_Exchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "code-123", r.Form.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok-1","refresh_token":"ref-1","token_type":"bearer","expires_in":3600}`)
	}))
	defer srv.Close()

	p := &Provider{
		Name: "monday",
		conf: &oauth2.Config{
			ClientID:     "monday-client",
			ClientSecret: "monday-secret",
			Endpoint:     oauth2.Endpoint{TokenURL: srv.URL},
		},
		client: srv.Client(),
	}

	tok, err := p.Exchange(context.Background(), "code-123", "https://pmblueprints.example/callback")

	assert.NoError(t, err)
	assert.Equal(t, "tok-1", tok.AccessToken)
	assert.Equal(t, "ref-1", tok.RefreshToken)
	require.NotNil(t, tok.ExpiresAt)
	assert.True(t, tok.ExpiresAt.After(time.Now().UTC()))
}

func TestProvider_Exchange_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	}))
	defer srv.Close()

	p := &Provider{
		Name: "monday",
		conf: &oauth2.Config{
			ClientID: "monday-client",
			Endpoint: oauth2.Endpoint{TokenURL: srv.URL},
		},
	}

	tok, err := p.Exchange(context.Background(), "code-bad", "https://pmblueprints.example/callback")

	assert.Error(t, err)
	assert.Nil(t, tok)
}

// ==================== PROFILE TESTS ====================

func TestProvider_FetchProfile_GoogleShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"id":"goog-123","email":"ada@example.com","given_name":"Ada","family_name":"Lovelace"}`)
	}))
	defer srv.Close()

	p := &Provider{Name: "google_workspace", userInfoURL: srv.URL, client: srv.Client()}

	profile, err := p.FetchProfile(context.Background(), "tok-1")

	assert.NoError(t, err)
	assert.Equal(t, "goog-123", profile.ID)
	assert.Equal(t, "ada@example.com", profile.Email)
	assert.Equal(t, "Ada", profile.FirstName)
	assert.Equal(t, "Lovelace", profile.LastName)
}

func TestProvider_FetchProfile_MicrosoftShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"ms-123","userPrincipalName":"grace@example.com","givenName":"Grace","surname":"Hopper"}`)
	}))
	defer srv.Close()

	p := &Provider{Name: "microsoft_365", userInfoURL: srv.URL, client: srv.Client()}

	profile, err := p.FetchProfile(context.Background(), "tok-1")

	assert.NoError(t, err)
	assert.Equal(t, "grace@example.com", profile.Email)
	assert.Equal(t, "Grace", profile.FirstName)
	assert.Equal(t, "Hopper", profile.LastName)
}

func TestProvider_FetchProfile_NoEndpoint(t *testing.T) {
	p := &Provider{Name: "monday"}

	profile, err := p.FetchProfile(context.Background(), "tok-1")

	assert.Error(t, err)
	assert.Nil(t, profile)
	assert.Contains(t, err.Error(), "user info endpoint")
}

func TestProvider_FetchProfile_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := &Provider{Name: "google_workspace", userInfoURL: srv.URL, client: srv.Client()}

	profile, err := p.FetchProfile(context.Background(), "tok-expired")

	assert.Error(t, err)
	assert.Nil(t, profile)
}
