package handler

import "chesslounge/backend/internal/chat"

// CursorMeta defines the structure for cursor pagination metadata.
type CursorMeta struct {
	HasMore         bool  `json:"hasMore"`
	NextCursor      *uint `json:"nextCursor" example:"42"`
	Limit           int   `json:"limit" example:"30"`
	LatestMessageID *uint `json:"latestMessageId,omitempty" example:"71"`
}

// MessagesResponse defines the structure for a page of chat messages.
type MessagesResponse struct {
	Messages []chat.MessageView `json:"messages"`
	Meta     CursorMeta         `json:"meta"`
}

// NewMessagesResponse creates a MessagesResponse from a feed page.
func NewMessagesResponse(page chat.Page) MessagesResponse {
	items := page.Items
	if items == nil {
		items = []chat.MessageView{}
	}
	return MessagesResponse{
		Messages: items,
		Meta: CursorMeta{
			HasMore:         page.HasMore,
			NextCursor:      page.NextCursor,
			Limit:           page.Limit,
			LatestMessageID: page.LatestID,
		},
	}
}
