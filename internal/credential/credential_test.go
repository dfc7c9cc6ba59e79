package credential_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/medipro/console/internal/credential"
	"github.com/medipro/console/internal/shared"
	"github.com/medipro/console/internal/storage"
)

func newStore(t *testing.T) *credential.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	kv := storage.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return credential.NewStore(kv)
}

func mintToken(t *testing.T, claims *credential.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestStoreRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.Get(ctx); !errors.Is(err, credential.ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential got %v", err)
	}
	if err := store.Set(ctx, "tok"); err != nil {
		t.Fatalf("set: %v", err)
	}
	token, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if token != "tok" {
		t.Fatalf("expected tok got %q", token)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := store.Get(ctx); !errors.Is(err, credential.ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential after clear got %v", err)
	}
}

func TestDecodeClaims(t *testing.T) {
	now := time.Now()
	token := mintToken(t, &credential.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		ID:               "u1",
		Name:             "Dra. Ana",
		Email:            "ana@clinic.test",
		Role:             shared.RoleMedico,
	})

	claims, err := credential.DecodeClaims(token, now)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.ID != "u1" || claims.Email != "ana@clinic.test" || claims.Role != shared.RoleMedico {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestDecodeClaimsExpired(t *testing.T) {
	now := time.Now()
	token := mintToken(t, &credential.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second))},
		ID:               "u1",
	})

	if _, err := credential.DecodeClaims(token, now); !errors.Is(err, credential.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired got %v", err)
	}
}

func TestDecodeClaimsMalformed(t *testing.T) {
	if _, err := credential.DecodeClaims("not-a-token", time.Now()); !errors.Is(err, credential.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed got %v", err)
	}
}
