package auth

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("super-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if err := CheckPassword(hash, "super-secret"); err != nil {
		t.Fatalf("expected password to match, got %v", err)
	}

	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestIssueAndParseToken(t *testing.T) {
	secret := "test-secret"
	user := UserContext{UserID: "u1", CompanyID: "c1", StaffID: "s1", Role: RoleManager}

	token, err := IssueToken(secret, user, "sess-1", time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if parsed.UserID != user.UserID || parsed.CompanyID != user.CompanyID || parsed.StaffID != user.StaffID || parsed.Role != user.Role {
		t.Fatalf("claims mismatch: %+v", parsed)
	}
	if parsed.SessionID != "sess-1" {
		t.Fatalf("expected session id to round-trip, got %q", parsed.SessionID)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := IssueToken("secret", UserContext{UserID: "u1"}, "sess-1", -time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestHashTokenIsStable(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Fatal("expected identical digests for identical tokens")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Fatal("expected different digests for different tokens")
	}
}
