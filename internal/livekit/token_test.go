package livekit

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestMintTokenNotConfigured(t *testing.T) {
	svc := NewTokenService("", "", "")
	if svc.Configured() {
		t.Fatal("expected unconfigured service")
	}
	if _, err := svc.MintToken("room", "user"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	svc = NewTokenService("wss://example.livekit.cloud", "key", "")
	if svc.Configured() {
		t.Fatal("expected unconfigured service with missing secret")
	}
}

func TestMintTokenClaims(t *testing.T) {
	svc := NewTokenService("wss://example.livekit.cloud", "api-key", "api-secret")
	if !svc.Configured() {
		t.Fatal("expected configured service")
	}
	if svc.URL() != "wss://example.livekit.cloud" {
		t.Fatalf("unexpected URL %q", svc.URL())
	}

	signed, err := svc.MintToken("demo-room", "alice")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(signed, &claims, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte("api-secret"), nil
	})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !token.Valid {
		t.Fatal("expected a valid token")
	}

	if claims.Issuer != "api-key" {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
	if claims.Subject != "alice" || claims.Name != "alice" {
		t.Fatalf("unexpected identity %q/%q", claims.Subject, claims.Name)
	}
	if claims.Video.Room != "demo-room" {
		t.Fatalf("unexpected room %q", claims.Video.Room)
	}
	if !claims.Video.RoomJoin || !claims.Video.CanPublish || !claims.Video.CanSubscribe {
		t.Fatalf("unexpected grant %+v", claims.Video)
	}

	expiry := claims.ExpiresAt.Time
	if until := time.Until(expiry); until < 55*time.Minute || until > 65*time.Minute {
		t.Fatalf("expected roughly one hour expiry, got %v", until)
	}
}

func TestMintTokenSignedWithSecret(t *testing.T) {
	svc := NewTokenService("wss://example.livekit.cloud", "api-key", "api-secret")
	signed, err := svc.MintToken("demo-room", "alice")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	_, err = jwt.ParseWithClaims(signed, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	if err == nil {
		t.Fatal("expected verification to fail with the wrong secret")
	}
}
