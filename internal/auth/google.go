package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"chesslounge/backend/internal/apperr"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var googleScopes = []string{
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
}

var errMissingFrontend = apperr.Misconfigured("Frontend URL is missing.")

// GoogleConfig configures the Google OAuth provider.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	FrontendURL  string

	// Overridable for tests.
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// GoogleProfile is the subset of Google's userinfo response the service uses.
type GoogleProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Google implements the authorization code flow against Google.
type Google struct {
	oauth       *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

func NewGoogle(config GoogleConfig, httpClient *http.Client) *Google {
	endpoint := google.Endpoint
	if config.AuthURL != "" {
		endpoint.AuthURL = config.AuthURL
	}
	if config.TokenURL != "" {
		endpoint.TokenURL = config.TokenURL
	}
	if config.UserInfoURL == "" {
		config.UserInfoURL = defaultGoogleUserInfoURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var redirect string
	if frontend := strings.TrimSuffix(config.FrontendURL, "/"); frontend != "" {
		redirect = frontend + "/login/google"
	}

	return &Google{
		oauth: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  redirect,
			Scopes:       googleScopes,
		},
		userInfoURL: config.UserInfoURL,
		httpClient:  httpClient,
	}
}

// LoginURL returns the consent screen URL.
func (g *Google) LoginURL() (string, error) {
	if g.oauth.RedirectURL == "" {
		return "", errMissingFrontend
	}
	return g.oauth.AuthCodeURL("",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// Exchange trades an authorization code for the user's profile.
func (g *Google) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	if g.oauth.RedirectURL == "" {
		return nil, errMissingFrontend
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.Upstream("Failed to exchange Google code", err)
	}

	var profile GoogleProfile
	if err := getJSON(ctx, g.oauth.Client(ctx, token), g.userInfoURL, &profile); err != nil {
		return nil, apperr.Upstream("Failed to fetch Google profile", err)
	}
	return &profile, nil
}

// getJSON fetches rawURL with an authorized client and decodes a 200 response into out.
func getJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
