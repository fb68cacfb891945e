package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStoreWithClient(client), mr
}

func TestRevokeAndCheck(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "some-jti")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("jti should not be revoked before Revoke")
	}

	if err := store.Revoke(ctx, "some-jti", time.Minute); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	revoked, err = store.IsRevoked(ctx, "some-jti")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Fatal("jti should be revoked after Revoke")
	}
}

func TestRevokeExpiresWithTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Revoke(ctx, "expiring-jti", time.Minute); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	revoked, err := store.IsRevoked(ctx, "expiring-jti")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("jti should expire from the blacklist with its TTL")
	}
}

func TestRevokeIgnoresNonPositiveTTL(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Revoke(ctx, "stale-jti", -time.Second); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	revoked, err := store.IsRevoked(ctx, "stale-jti")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("expired access tokens should not be stored")
	}
}

func TestEmptyJTIIsNeverRevoked(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Revoke(ctx, "", time.Minute); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	revoked, err := store.IsRevoked(ctx, "")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("empty jti must not be treated as revoked")
	}
}
