// Package auth signs users in through Google or Lichess and guards routes with bearer tokens.
package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"chesslounge/backend/internal/apperr"
	"chesslounge/backend/internal/models"
	"chesslounge/backend/internal/store"
	"chesslounge/backend/pkg/jwt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minUsernameLength = 5
	// createAttempts bounds username suffix retries for new accounts.
	createAttempts = 5
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]{5,}$`)

// ValidateUsername checks the display name rules: at least five letters or digits.
func ValidateUsername(username string) error {
	if username == "" {
		return apperr.Validation("Username is required")
	}
	if !usernamePattern.MatchString(username) {
		return apperr.Validation("Username must be at least 5 characters long and contain only letters and numbers")
	}
	return nil
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token   string
	Account *models.Account
	IsNew   bool
}

// Service finds or creates accounts for OAuth identities and issues identity tokens.
type Service struct {
	accounts store.AccountStore
	signer   *jwt.Signer
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(accounts store.AccountStore, signer *jwt.Signer, logger *zap.Logger) *Service {
	return &Service{accounts: accounts, signer: signer, logger: logger, now: time.Now}
}

// LoginGoogle signs in the owner of a Google profile. Accounts are keyed by email.
func (s *Service) LoginGoogle(ctx context.Context, profile *GoogleProfile) (*LoginResult, error) {
	if profile == nil || profile.Email == "" {
		return nil, apperr.Unauthorized("Invalid Google data", nil)
	}

	email := profile.Email
	local, _, _ := strings.Cut(email, "@")
	account, isNew, err := s.findOrCreate(ctx,
		func(ctx context.Context) (*models.Account, error) {
			return s.accounts.FindByGoogleEmail(ctx, email)
		},
		local,
		func(a *models.Account) {
			a.OAuthProvider = models.ProviderGoogle
			a.GoogleEmail = &email
		})
	if err != nil {
		return nil, err
	}

	token, err := s.signer.GenerateToken(jwt.UserClaims{
		ID:       account.ID,
		Username: account.Username,
		Email:    profile.Email,
	})
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Account: account, IsNew: isNew}, nil
}

// LoginLichess signs in the owner of a Lichess profile. Accounts are keyed by Lichess id.
func (s *Service) LoginLichess(ctx context.Context, profile *LichessProfile) (*LoginResult, error) {
	if profile == nil || profile.ID == "" {
		return nil, apperr.Unauthorized("Invalid Lichess data", nil)
	}

	lichessID := profile.ID
	base := profile.Username
	if base == "" {
		base = lichessID
	}
	account, isNew, err := s.findOrCreate(ctx,
		func(ctx context.Context) (*models.Account, error) {
			return s.accounts.FindByLichessUsername(ctx, lichessID)
		},
		base,
		func(a *models.Account) {
			a.OAuthProvider = models.ProviderLichess
			a.LichessUsername = &lichessID
			a.AuthenticityScore = profile.AuthenticityScore(s.now())
		})
	if err != nil {
		return nil, err
	}

	token, err := s.signer.GenerateToken(jwt.UserClaims{
		ID:              account.ID,
		Username:        account.Username,
		LichessUsername: profile.ID,
	})
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Account: account, IsNew: isNew}, nil
}

// findOrCreate returns the account find locates, creating one when there is none. If a
// concurrent login links the identity first, that account is returned instead.
func (s *Service) findOrCreate(
	ctx context.Context,
	find func(context.Context) (*models.Account, error),
	base string,
	fill func(*models.Account),
) (*models.Account, bool, error) {
	account, err := find(ctx)
	if err == nil {
		return account, false, nil
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, false, err
	}

	account, err = s.create(ctx, base, fill)
	if errors.Is(err, store.ErrIdentityExists) {
		account, err = find(ctx)
		if err != nil {
			return nil, false, err
		}
		return account, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return account, true, nil
}

// create stores a new account named after base. When the name is invalid or taken a random
// suffix is appended.
func (s *Service) create(ctx context.Context, base string, fill func(*models.Account)) (*models.Account, error) {
	base = sanitizeUsername(base)
	candidate := base
	if len(candidate) < minUsernameLength {
		candidate = base + randomSuffix()
	}

	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		if attempt > 0 {
			candidate = base + randomSuffix()
		}

		taken, err := s.accounts.UsernameExists(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if taken {
			lastErr = apperr.Conflict("Username is already taken")
			continue
		}

		account := &models.Account{Username: candidate}
		fill(account)
		err = s.accounts.Create(ctx, account)
		if apperr.KindOf(err) == apperr.KindConflict {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Info("account created",
			zap.String("accountID", account.ID),
			zap.String("provider", string(account.OAuthProvider)))
		return account, nil
	}
	return nil, lastErr
}

// UpdateUsername renames an account.
func (s *Service) UpdateUsername(ctx context.Context, accountID, username string) (*models.Account, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	taken, err := s.accounts.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("Username is already taken")
	}
	return s.accounts.UpdateUsername(ctx, accountID, username)
}

func sanitizeUsername(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "player"
	}
	return b.String()
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
