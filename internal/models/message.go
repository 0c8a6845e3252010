package models

import (
	"time"

	"gorm.io/datatypes"
)

type MessageType string

const (
	MessageTypeText MessageType = "text"
	MessageTypeGame MessageType = "game"
)

// ParseMessageType returns the matching type, falling back to text for anything unknown.
func ParseMessageType(raw string) MessageType {
	switch MessageType(raw) {
	case MessageTypeGame:
		return MessageTypeGame
	default:
		return MessageTypeText
	}
}

// Message represents a chat message in the global room.
// The auto-increment ID orders the feed and serves as the pagination cursor.
// Messages are never updated after creation.
type Message struct {
	ID         uint           `gorm:"primaryKey"`
	AuthorID   string         `gorm:"type:uuid;not null;index"`
	Body       string         `gorm:"type:text;not null"`
	Type       MessageType    `gorm:"size:20;not null;default:'text'"`
	GameDetail datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"index"`
}
