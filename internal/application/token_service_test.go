package application

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var tokenTestIdentity = Identity{
	ID:           "staff-1",
	EmployeeID:   "EMP001",
	Name:         "Asha Perera",
	Role:         RoleNurse,
	DepartmentID: "dept-1",
}

func TestTokenService_Issue(t *testing.T) {
	t.Parallel()

	t.Run("issues verifiable tokens carrying identity claims", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
		svc := NewTokenService(TokenConfig{Secret: []byte("test-secret"), TTL: time.Hour}, func() time.Time { return now })

		issued, err := svc.Issue(tokenTestIdentity)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if issued.TokenType != "bearer" {
			t.Fatalf("expected bearer token type, got %q", issued.TokenType)
		}
		if issued.ExpiresIn != 3600 {
			t.Fatalf("expected 3600s lifetime, got %d", issued.ExpiresIn)
		}

		claims, err := svc.Verify(issued.Token)
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if claims.UserID != "staff-1" || claims.EmployeeID != "EMP001" {
			t.Fatalf("unexpected claims: %#v", claims)
		}
		if claims.Role != RoleNurse || claims.DepartmentID != "dept-1" {
			t.Fatalf("expected role and department snapshot, got %#v", claims)
		}
		if !claims.ExpiresAt.Equal(now.Add(time.Hour)) {
			t.Fatalf("unexpected expiry: %v", claims.ExpiresAt)
		}
	})

	t.Run("applies the default lifetime when none is configured", func(t *testing.T) {
		t.Parallel()

		svc := NewTokenService(TokenConfig{Secret: []byte("test-secret")}, nil)
		if svc.TTL() != DefaultTokenTTL {
			t.Fatalf("expected default TTL, got %v", svc.TTL())
		}
	})

	t.Run("refuses to sign without a secret", func(t *testing.T) {
		t.Parallel()

		svc := NewTokenService(TokenConfig{}, nil)
		if _, err := svc.Issue(tokenTestIdentity); err == nil {
			t.Fatal("expected error for missing secret")
		}
	})
}

func TestTokenService_Verify(t *testing.T) {
	t.Parallel()

	t.Run("rejects tokens signed with a different secret", func(t *testing.T) {
		t.Parallel()

		issuer := NewTokenService(TokenConfig{Secret: []byte("secret-a"), TTL: time.Hour}, nil)
		verifier := NewTokenService(TokenConfig{Secret: []byte("secret-b"), TTL: time.Hour}, nil)

		issued, err := issuer.Issue(tokenTestIdentity)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		if _, err := verifier.Verify(issued.Token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		t.Parallel()

		current := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
		svc := NewTokenService(TokenConfig{Secret: []byte("test-secret"), TTL: time.Minute}, func() time.Time { return current })

		issued, err := svc.Issue(tokenTestIdentity)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		current = current.Add(time.Minute + time.Second)
		if _, err := svc.Verify(issued.Token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
		}
	})

	t.Run("accepts tokens just inside the lifetime boundary", func(t *testing.T) {
		t.Parallel()

		current := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
		svc := NewTokenService(TokenConfig{Secret: []byte("test-secret"), TTL: time.Minute}, func() time.Time { return current })

		issued, err := svc.Issue(tokenTestIdentity)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		current = current.Add(time.Minute - time.Second)
		if _, err := svc.Verify(issued.Token); err != nil {
			t.Fatalf("expected token to remain valid, got %v", err)
		}
	})

	t.Run("rejects structurally damaged tokens", func(t *testing.T) {
		t.Parallel()

		svc := NewTokenService(TokenConfig{Secret: []byte("test-secret"), TTL: time.Hour}, nil)
		issued, err := svc.Issue(tokenTestIdentity)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		truncated := issued.Token[:len(issued.Token)/2]
		if _, err := svc.Verify(truncated); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for truncated token, got %v", err)
		}

		tampered := issued.Token[:len(issued.Token)-2] + "xx"
		if _, err := svc.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
		}

		if _, err := svc.Verify("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for garbage input, got %v", err)
		}
	})

	t.Run("rejects unsigned tokens", func(t *testing.T) {
		t.Parallel()

		svc := NewTokenService(TokenConfig{Secret: []byte("test-secret"), TTL: time.Hour}, nil)
		issued, err := svc.Issue(tokenTestIdentity)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		// Strip the signature segment entirely.
		parts := strings.Split(issued.Token, ".")
		if len(parts) != 3 {
			t.Fatalf("expected three JWT segments, got %d", len(parts))
		}
		unsigned := parts[0] + "." + parts[1] + "."
		if _, err := svc.Verify(unsigned); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for unsigned token, got %v", err)
		}
	})
}
