package auth

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"chesslounge/backend/internal/apperr"

	"golang.org/x/oauth2"
)

const (
	defaultLichessBaseURL = "https://lichess.org"
	lichessState          = "cpd_state"
)

var lichessScopes = []string{"preference:read", "email:read", "puzzle:read"}

// LichessConfig configures the Lichess OAuth provider. CodeVerifier is the PKCE verifier
// shared by every login.
type LichessConfig struct {
	ClientID     string
	CodeVerifier string
	FrontendURL  string

	// Overridable for tests.
	BaseURL string
}

// LichessProfile is the subset of Lichess's /api/account response the service uses.
type LichessProfile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt int64  `json:"createdAt"`
	Count     struct {
		All int `json:"all"`
	} `json:"count"`
	Perfs struct {
		Puzzle *struct {
			Rating int `json:"rating"`
		} `json:"puzzle,omitempty"`
	} `json:"perfs"`
}

// AuthenticityScore rates how established an account looks, from 0 to 100. Account age,
// games played and puzzle rating contribute up to 30, 40 and 30 points.
func (p *LichessProfile) AuthenticityScore(now time.Time) int {
	created := now
	if p.CreatedAt > 0 {
		created = time.UnixMilli(p.CreatedAt)
	}
	ageYears := now.Sub(created).Hours() / (24 * 365)

	score := math.Min(ageYears*10, 30)
	score += math.Min(float64(p.Count.All)/100, 40)
	if p.Perfs.Puzzle != nil && p.Perfs.Puzzle.Rating > 0 {
		score += math.Min(float64(p.Perfs.Puzzle.Rating)/2000*30, 30)
	}
	return int(math.Round(score))
}

// Lichess implements the PKCE authorization code flow against Lichess.
type Lichess struct {
	oauth        *oauth2.Config
	codeVerifier string
	baseURL      string
	httpClient   *http.Client
}

func NewLichess(config LichessConfig, httpClient *http.Client) *Lichess {
	if config.BaseURL == "" {
		config.BaseURL = defaultLichessBaseURL
	}
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var redirect string
	if frontend := strings.TrimSuffix(config.FrontendURL, "/"); frontend != "" {
		redirect = frontend + "/login/lichess"
	}

	return &Lichess{
		oauth: &oauth2.Config{
			ClientID: config.ClientID,
			Endpoint: oauth2.Endpoint{
				AuthURL:   baseURL + "/oauth",
				TokenURL:  baseURL + "/api/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
			RedirectURL: redirect,
			Scopes:      lichessScopes,
		},
		codeVerifier: config.CodeVerifier,
		baseURL:      baseURL,
		httpClient:   httpClient,
	}
}

func (l *Lichess) check() error {
	if l.oauth.RedirectURL == "" {
		return errMissingFrontend
	}
	if l.codeVerifier == "" {
		return apperr.Misconfigured("Lichess OAuth key is missing.")
	}
	return nil
}

// LoginURL returns the Lichess consent screen URL.
func (l *Lichess) LoginURL() (string, error) {
	if err := l.check(); err != nil {
		return "", err
	}
	return l.oauth.AuthCodeURL(lichessState, oauth2.S256ChallengeOption(l.codeVerifier)), nil
}

// Exchange trades an authorization code for the user's profile. A rejected code is reported
// as Unauthorized.
func (l *Lichess) Exchange(ctx context.Context, code string) (*LichessProfile, error) {
	if err := l.check(); err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, l.httpClient)
	token, err := l.oauth.Exchange(ctx, code, oauth2.VerifierOption(l.codeVerifier))
	if err != nil {
		return nil, apperr.Unauthorized("Failed to exchange code for token", err)
	}

	var profile LichessProfile
	if err := getJSON(ctx, l.oauth.Client(ctx, token), l.baseURL+"/api/account", &profile); err != nil {
		return nil, apperr.Upstream("Failed to fetch user information", err)
	}
	return &profile, nil
}
