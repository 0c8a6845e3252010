// Package store persists accounts and chat messages through gorm.
package store

import (
	"context"
	"errors"

	"chesslounge/backend/internal/models"
)

// ErrIdentityExists is returned by AccountStore.Create when the Google email or Lichess id is
// already linked to another account.
var ErrIdentityExists = errors.New("store: identity already linked to an account")

// AccountStore reads and writes accounts.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Account, error)
	FindByGoogleEmail(ctx context.Context, email string) (*models.Account, error)
	FindByLichessUsername(ctx context.Context, username string) (*models.Account, error)
	// Create inserts account. A taken username is a Conflict error, a taken identity is
	// ErrIdentityExists.
	Create(ctx context.Context, account *models.Account) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateUsername(ctx context.Context, id, username string) (*models.Account, error)

	// ConditionalCheckIn applies a check-in only while the account is not yet checked in
	// and still has expectedStreak. It reports whether the row was updated.
	ConditionalCheckIn(ctx context.Context, id string, expectedStreak, newStreak, award int) (bool, error)

	// DailyReset zeroes the streak of every account that missed today's check-in and clears
	// the checked-in flag of all accounts. It returns the number of accounts processed.
	DailyReset(ctx context.Context) (int64, error)
}

// MessageStore reads and writes chat messages.
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	// ListBefore returns up to limit messages newest first. A zero cursor starts at the newest.
	ListBefore(ctx context.Context, cursor uint, limit int) ([]models.Message, error)
	// Latest returns the newest message or nil when the store is empty.
	Latest(ctx context.Context) (*models.Message, error)
	// RecentBodies returns message bodies newest first, skipping the skip newest ones.
	RecentBodies(ctx context.Context, limit, skip int) ([]string, error)
}
