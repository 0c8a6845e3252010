package store

import (
	"context"
	"errors"
	"time"

	"chesslounge/backend/internal/apperr"
	"chesslounge/backend/internal/models"

	"gorm.io/gorm"
)

// GormMessageStore implements MessageStore on gorm.
type GormMessageStore struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewMessageStore(db *gorm.DB, timeout time.Duration) *GormMessageStore {
	return &GormMessageStore{db: db, timeout: timeout}
}

func (s *GormMessageStore) withTimeout(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

func (s *GormMessageStore) Create(ctx context.Context, msg *models.Message) error {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	return apperr.Store("create message", db.Create(msg).Error)
}

func (s *GormMessageStore) ListBefore(ctx context.Context, cursor uint, limit int) ([]models.Message, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	query := db.Model(&models.Message{}).Order("id DESC").Limit(limit)
	if cursor > 0 {
		query = query.Where("id < ?", cursor)
	}

	var messages []models.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, apperr.Store("list messages", err)
	}
	return messages, nil
}

func (s *GormMessageStore) Latest(ctx context.Context) (*models.Message, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	var msg models.Message
	err := db.Order("id DESC").First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Store("latest message", err)
	}
	return &msg, nil
}

func (s *GormMessageStore) RecentBodies(ctx context.Context, limit, skip int) ([]string, error) {
	db, cancel := s.withTimeout(ctx)
	defer cancel()

	var bodies []string
	err := db.Model(&models.Message{}).
		Order("id DESC").
		Offset(skip).
		Limit(limit).
		Pluck("body", &bodies).Error
	if err != nil {
		return nil, apperr.Store("recent messages", err)
	}
	return bodies, nil
}

var _ MessageStore = (*GormMessageStore)(nil)
