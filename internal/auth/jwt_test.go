package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateAndParseToken(t *testing.T) {
	userID := uuid.New()
	tenantID := uuid.New()

	token, err := GenerateToken(userID, tenantID, "a@b.co", "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID || claims.TenantID != tenantID || claims.Email != "a@b.co" {
		t.Fatalf("claims = %+v, want the generated identity", claims)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(uuid.New(), uuid.New(), "a@b.co", "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ParseToken(token, "other-secret"); err == nil {
		t.Fatal("token signed with a different secret parsed successfully")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken(uuid.New(), uuid.New(), "a@b.co", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ParseToken(token, "secret"); err == nil {
		t.Fatal("expired token parsed successfully")
	}
}
