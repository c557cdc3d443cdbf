// Package livekit mints room access tokens for LiveKit clients.
package livekit

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotConfigured is returned when the LiveKit credentials are missing.
var ErrNotConfigured = errors.New("livekit credentials not configured")

const defaultTokenTTL = time.Hour

// VideoGrant is the LiveKit video grant embedded in the access token.
type VideoGrant struct {
	Room         string `json:"room"`
	RoomJoin     bool   `json:"roomJoin"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

// Claims is the JWT payload LiveKit servers expect.
type Claims struct {
	jwt.RegisteredClaims
	Video VideoGrant `json:"video"`
	Name  string     `json:"name,omitempty"`
}

// TokenService signs LiveKit access tokens with the server's API secret.
type TokenService struct {
	url       string
	apiKey    string
	apiSecret string
	ttl       time.Duration
}

func NewTokenService(url, apiKey, apiSecret string) *TokenService {
	return &TokenService{
		url:       url,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		ttl:       defaultTokenTTL,
	}
}

// Configured reports whether all required LiveKit settings are present.
func (s *TokenService) Configured() bool {
	return s.url != "" && s.apiKey != "" && s.apiSecret != ""
}

// URL returns the LiveKit server URL clients should connect to.
func (s *TokenService) URL() string {
	return s.url
}

// MintToken issues a join token for the given room and participant identity.
func (s *TokenService) MintToken(roomName, identity string) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.apiKey,
			Subject:   identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Video: VideoGrant{
			Room:         roomName,
			RoomJoin:     true,
			CanPublish:   true,
			CanSubscribe: true,
		},
		Name: identity,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.apiSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
