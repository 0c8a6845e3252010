package store

import (
	"context"
	"errors"
	"time"

	"chesslounge/backend/internal/apperr"
	"chesslounge/backend/internal/models"

	"gorm.io/gorm"
)

// GormAccountStore implements AccountStore on gorm.
type GormAccountStore struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewAccountStore(db *gorm.DB, timeout time.Duration) *GormAccountStore {
	return &GormAccountStore{db: db, timeout: timeout}
}

func (s *GormAccountStore) withTimeout(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

func (s *GormAccountStore) FindByID(ctx context.Context, id string) (*models.Account, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *GormAccountStore) FindByGoogleEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.findOne(ctx, "google_email = ?", email)
}

func (s *GormAccountStore) FindByLichessUsername(ctx context.Context, username string) (*models.Account, error) {
	return s.findOne(ctx, "lichess_username = ?", username)
}

func (s *GormAccountStore) findOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	var account models.Account
	err := db.Where(query, arg).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Store("find account", err)
	}
	return &account, nil
}

func (s *GormAccountStore) FindByIDs(ctx context.Context, ids []string) ([]models.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	var accounts []models.Account
	if err := db.Where("id IN ?", ids).Find(&accounts).Error; err != nil {
		return nil, apperr.Store("find accounts", err)
	}
	return accounts, nil
}

func (s *GormAccountStore) Create(ctx context.Context, account *models.Account) error {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	err := db.Create(account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if identityLinked(db, account) {
			return ErrIdentityExists
		}
		return apperr.Conflict("Username is already taken")
	}
	return apperr.Store("create account", err)
}

// identityLinked reports whether another row already holds account's OAuth identity.
func identityLinked(db *gorm.DB, account *models.Account) bool {
	query := db.Model(&models.Account{})
	switch {
	case account.GoogleEmail != nil:
		query = query.Where("google_email = ?", *account.GoogleEmail)
	case account.LichessUsername != nil:
		query = query.Where("lichess_username = ?", *account.LichessUsername)
	default:
		return false
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

func (s *GormAccountStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	var count int64
	if err := db.Model(&models.Account{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, apperr.Store("count usernames", err)
	}
	return count > 0, nil
}

func (s *GormAccountStore) UpdateUsername(ctx context.Context, id, username string) (*models.Account, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	result := db.Model(&models.Account{}).Where("id = ?", id).Update("username", username)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return nil, apperr.Conflict("Username is already taken")
	}
	if result.Error != nil {
		return nil, apperr.Store("update username", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("User not found")
	}

	var account models.Account
	if err := db.First(&account, "id = ?", id).Error; err != nil {
		return nil, apperr.Store("reload account", err)
	}
	return &account, nil
}

func (s *GormAccountStore) ConditionalCheckIn(ctx context.Context, id string, expectedStreak, newStreak, award int) (bool, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	result := db.Model(&models.Account{}).
		Where("id = ? AND checked_in_today = ? AND streak = ?", id, false, expectedStreak).
		Updates(map[string]any{
			"points":           gorm.Expr("points + ?", award),
			"streak":           newStreak,
			"checked_in_today": true,
		})
	if result.Error != nil {
		return false, apperr.Store("check in", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *GormAccountStore) DailyReset(ctx context.Context) (int64, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	result := db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&models.Account{}).
		Updates(map[string]any{
			"streak":           gorm.Expr("CASE WHEN checked_in_today THEN streak ELSE 0 END"),
			"checked_in_today": false,
		})
	if result.Error != nil {
		return 0, apperr.Store("daily reset", result.Error)
	}
	return result.RowsAffected, nil
}

var _ AccountStore = (*GormAccountStore)(nil)
