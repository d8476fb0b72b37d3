package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"taxpro/internal/common"
)

func TestJWTRoundTrip(t *testing.T) {
	provider := NewJWTProvider("secret")
	id := common.NewUUID()
	token, expiresAt, err := provider.Generate(id, []string{"admin"}, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expiry should be in the future")
	}
	claims, err := provider.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ProfileID != id.String() {
		t.Fatalf("expected profile %s, got %s", id, claims.ProfileID)
	}
	if !claims.HasRole(RoleAdmin) || claims.HasRole("auditor") {
		t.Fatalf("unexpected roles %v", claims.Roles)
	}
}

func TestJWTRejectsTampering(t *testing.T) {
	provider := NewJWTProvider("secret")
	token, _, err := provider.Generate(common.NewUUID(), nil, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewJWTProvider("other").Parse(token); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected signature error, got %v", err)
	}
	if _, err := provider.Parse(strings.TrimSuffix(token, token[len(token)-2:])); err == nil {
		t.Fatalf("expected truncated signature to fail")
	}
	if _, err := provider.Parse("not-a-token"); !errors.Is(err, ErrTokenFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestJWTExpiry(t *testing.T) {
	provider := NewJWTProvider("secret")
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return issued }
	token, _, err := provider.Generate(common.NewUUID(), nil, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	provider.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := provider.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expiry error, got %v", err)
	}
}
