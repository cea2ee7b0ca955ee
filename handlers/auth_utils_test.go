package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3nha-forte")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "s3nha-forte" {
		t.Fatalf("hash should not equal the plain password")
	}
	if !CheckPassword("s3nha-forte", hash) {
		t.Fatalf("expected correct password to verify")
	}
	if CheckPassword("senha-errada", hash) {
		t.Fatalf("expected wrong password to fail verification")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := CreateAccessToken("alice")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	username, err := parseAccessToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if username != "alice" {
		t.Fatalf("expected subject alice, got %q", username)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	token, err := CreateAccessToken("alice")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	flipped := byte('A')
	if parts[2][0] == 'A' {
		flipped = 'B'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(flipped) + parts[2][1:]

	if _, err := parseAccessToken(tampered); err == nil {
		t.Fatalf("expected tampered token to be rejected")
	}
}

func TestUsernameFromRequestSources(t *testing.T) {
	token, err := CreateAccessToken("alice")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/tasks", nil)
		req.Header.Set("Cookie", accessTokenCookie+"="+token)
		username, err := usernameFromRequest(req)
		if err != nil {
			t.Fatalf("username from cookie: %v", err)
		}
		if username != "alice" {
			t.Fatalf("expected alice, got %q", username)
		}
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/tasks", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		username, err := usernameFromRequest(req)
		if err != nil {
			t.Fatalf("username from header: %v", err)
		}
		if username != "alice" {
			t.Fatalf("expected alice, got %q", username)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/tasks", nil)
		if _, err := usernameFromRequest(req); err == nil {
			t.Fatalf("expected error without token")
		}
	})
}
