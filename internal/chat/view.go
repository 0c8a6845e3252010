// Package chat implements the global chat room: the message feed, message ingestion and the
// AI responder.
package chat

import (
	"context"
	"encoding/json"
	"time"

	"chesslounge/backend/internal/models"
	"chesslounge/backend/internal/store"

	"go.uber.org/zap"
)

// UnknownAuthorName is shown when a message's author no longer resolves.
const UnknownAuthorName = "Unknown user"

// region --- DTOs ---

// Author is the public identity attached to a message.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// MessageView is a message enriched with its author's current display name.
type MessageView struct {
	ID          uint               `json:"id"`
	User        Author             `json:"user"`
	Message     string             `json:"message"`
	MessageType models.MessageType `json:"messageType"`
	GameDetail  json.RawMessage    `json:"gameDetail,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// endregion

// enricher resolves author names for a batch of messages.
type enricher struct {
	accounts store.AccountStore
	logger   *zap.Logger
}

// enrich looks up every distinct author once. A failed lookup degrades to placeholder names
// instead of failing the caller.
func (e enricher) enrich(ctx context.Context, msgs []models.Message) []MessageView {
	names := map[string]string{models.AIAccountID: models.AIAccountName}

	var ids []string
	for _, m := range msgs {
		if _, ok := names[m.AuthorID]; ok {
			continue
		}
		names[m.AuthorID] = UnknownAuthorName
		ids = append(ids, m.AuthorID)
	}

	if len(ids) > 0 {
		accounts, err := e.accounts.FindByIDs(ctx, ids)
		if err != nil {
			e.logger.Warn("author lookup failed, using placeholder names", zap.Error(err))
		}
		for _, a := range accounts {
			names[a.ID] = a.Username
		}
	}

	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, toView(m, names[m.AuthorID]))
	}
	return views
}

func toView(m models.Message, username string) MessageView {
	v := MessageView{
		ID:          m.ID,
		User:        Author{ID: m.AuthorID, Username: username},
		Message:     m.Body,
		MessageType: m.Type,
		CreatedAt:   m.CreatedAt,
	}
	if m.Type == models.MessageTypeGame && len(m.GameDetail) > 0 {
		v.GameDetail = json.RawMessage(m.GameDetail)
	}
	return v
}
