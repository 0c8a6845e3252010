package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSecret is returned when a signer has no key.
var ErrMissingSecret = errors.New("jwt: signing secret is not configured")

// UserClaims identify an account. Exactly one of Email and LichessUsername is set.
type UserClaims struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email,omitempty"`
	LichessUsername string `json:"lichessUsername,omitempty"`
	jwt.RegisteredClaims
}

// ChannelClaims grant a real-time connection access to channels.
type ChannelClaims struct {
	Channels []string `json:"channels"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a Signer. A zero ttl issues tokens without expiry.
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Signer) registered(subject string) jwt.RegisteredClaims {
	now := s.now()
	rc := jwt.RegisteredClaims{
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		rc.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	return rc
}

func (s *Signer) sign(claims jwt.Claims) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// GenerateToken creates an identity token for the given claims.
func (s *Signer) GenerateToken(claims UserClaims) (string, error) {
	claims.RegisteredClaims = s.registered(claims.ID)
	return s.sign(&claims)
}

// GenerateChannelToken creates a real-time connection token. subject may be empty for
// anonymous readers.
func (s *Signer) GenerateChannelToken(subject string, channels ...string) (string, error) {
	return s.sign(&ChannelClaims{Channels: channels, RegisteredClaims: s.registered(subject)})
}

// ParseToken verifies an identity token and returns its claims.
func (s *Signer) ParseToken(tokenString string) (*UserClaims, error) {
	if len(s.secret) == 0 {
		return nil, ErrMissingSecret
	}
	var claims UserClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ID == "" {
		return nil, errors.New("jwt: invalid token")
	}
	return &claims, nil
}
