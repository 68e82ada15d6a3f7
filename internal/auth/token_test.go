package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestTokens(t *testing.T, opts ...TokenOption) *TokenService {
	t.Helper()
	svc, err := NewTokenService("test-secret", opts...)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func TestTokenIssueAndVerify(t *testing.T) {
	svc := newTestTokens(t)

	token, expiresAt, err := svc.Issue(Identity{UserID: 42, UserName: "alice", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if d := time.Until(expiresAt); d <= 59*time.Minute || d > time.Hour {
		t.Fatalf("expected one hour lifetime, got %v", d)
	}

	claims, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	want := Identity{UserID: 42, UserName: "alice", Role: RoleAdmin}
	if got := claims.Identity(); got != want {
		t.Fatalf("identity mismatch: got %+v want %+v", got, want)
	}
	if claims.Issuer != DefaultIssuer {
		t.Fatalf("unexpected issuer: %s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be set")
	}
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	if _, err := NewTokenService("   "); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestIssueRejectsInvalidIdentity(t *testing.T) {
	svc := newTestTokens(t)
	if _, _, err := svc.Issue(Identity{UserName: "nobody", Role: RoleUser}); err == nil {
		t.Fatal("expected error for missing user id")
	}
	if _, _, err := svc.Issue(Identity{UserID: 1, Role: "root"}); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestVerifyRejectsTamperedAndForeignTokens(t *testing.T) {
	svc := newTestTokens(t)
	token, _, err := svc.Issue(Identity{UserID: 1, UserName: "bob", Role: RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := svc.Verify(context.Background(), token+"x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}

	other := newTestTokens(t, WithIssuer("someone-else"))
	if _, err := other.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign issuer, got %v", err)
	}

	if _, err := svc.Verify(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	past := newTestTokens(t, WithClock(func() time.Time { return issuedAt }))
	token, _, err := past.Issue(Identity{UserID: 7, UserName: "carol", Role: RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	svc := newTestTokens(t)
	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyRejectsMissingUserID(t *testing.T) {
	svc := newTestTokens(t)
	now := time.Now()
	claims := Claims{
		UserName: "ghost",
		Role:     RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    DefaultIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Verify(context.Background(), signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRevokedTokenFailsVerification(t *testing.T) {
	svc := newTestTokens(t, WithDenylist(NewMemoryDenylist()))
	token, _, err := svc.Issue(Identity{UserID: 3, UserName: "dave", Role: RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := svc.Revoke(context.Background(), claims); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, ErrRevokedToken) {
		t.Fatalf("expected ErrRevokedToken, got %v", err)
	}
}

func TestMemoryDenylistForgetsExpiredEntries(t *testing.T) {
	d := NewMemoryDenylist()
	now := time.Now()
	d.now = func() time.Time { return now }

	if err := d.Revoke(context.Background(), "jti-1", now.Add(time.Minute)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if revoked, _ := d.IsRevoked(context.Background(), "jti-1"); !revoked {
		t.Fatal("expected jti-1 revoked")
	}

	now = now.Add(2 * time.Minute)
	if revoked, _ := d.IsRevoked(context.Background(), "jti-1"); revoked {
		t.Fatal("expected jti-1 to expire")
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatal("expected no identity in empty context")
	}
	ctx := ContextWithIdentity(context.Background(), Identity{UserID: 9, UserName: "erin", Role: RoleUser})
	id, ok := IdentityFromContext(ctx)
	if !ok || id.UserID != 9 || id.IsAdmin() {
		t.Fatalf("unexpected identity: %+v ok=%v", id, ok)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := VerifyPassword(hash, "secret123"); err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if err := VerifyPassword(hash, "wrongpass1"); err == nil {
		t.Fatal("expected mismatch error")
	}
}
