package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	claims := Claims{
		UserID:       "u-1",
		TenantID:     "t-1",
		Role:         "AREA_MANAGER",
		DepartmentID: "d-9",
		Email:        "manager@example.com",
	}

	token, err := GenerateToken("secret", claims, time.Minute)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	parsed, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if parsed.UserID != "u-1" || parsed.TenantID != "t-1" {
		t.Fatalf("unexpected identity claims: %+v", parsed)
	}
	if parsed.Role != "AREA_MANAGER" || parsed.DepartmentID != "d-9" {
		t.Fatalf("unexpected scope claims: %+v", parsed)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "u-1"}, time.Minute)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if _, err := ParseToken("other", token); err == nil {
		t.Fatal("expected parse failure with wrong secret")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "u-1"}, -time.Minute)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected parse failure for expired token")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("calibrate-me")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if err := CheckPassword(hash, "calibrate-me"); err != nil {
		t.Fatalf("expected password to match: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch for wrong password")
	}
}
