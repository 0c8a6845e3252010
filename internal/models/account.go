package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthProvider names the OAuth provider an account signed up with.
type AuthProvider string

const (
	ProviderGoogle  AuthProvider = "google"
	ProviderLichess AuthProvider = "lichess"
)

// MaxStreak is the length of the rolling check-in cycle.
const MaxStreak = 7

// AIAccountID is the reserved author id of messages written by the AI responder.
// No row in the accounts table carries it.
const AIAccountID = "00000000-0000-0000-0000-0000000000a1"

// AIAccountName is the display name shown for AIAccountID.
const AIAccountName = "AI Assistant"

// Preferences are client settings stored with the account.
type Preferences struct {
	Theme    string `gorm:"size:20;not null;default:'light'" json:"theme"`
	Sound    string `gorm:"size:20;not null;default:'on'" json:"sound"`
	Language string `gorm:"size:20;not null;default:'en'" json:"language"`
}

// Account represents a user who signed in through Google or Lichess.
// Exactly one of GoogleEmail and LichessUsername is set, matching OAuthProvider.
type Account struct {
	ID                string       `gorm:"primaryKey;type:uuid" json:"id"`
	Username          string       `gorm:"size:255;uniqueIndex;not null" json:"username"`
	OAuthProvider     AuthProvider `gorm:"size:20;not null" json:"oauthProvider"`
	GoogleEmail       *string      `gorm:"size:255;uniqueIndex" json:"googleEmail,omitempty"`
	LichessUsername   *string      `gorm:"size:255;uniqueIndex" json:"lichessUsername,omitempty"`
	AuthenticityScore int          `gorm:"not null;default:0" json:"userAuthencityScore"`

	Points         int  `gorm:"not null;default:0" json:"userPoints"`
	Streak         int  `gorm:"not null;default:0" json:"checkoutStreak"`
	CheckedInToday bool `gorm:"not null;default:false" json:"didCheckOutToday"`

	Preferences Preferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a random id to new accounts.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
