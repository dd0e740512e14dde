package revocation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisRevokeAndRead(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()
	until := time.Now().Add(time.Hour)

	revoked, err := s.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("fresh jti: revoked=%v err=%v", revoked, err)
	}

	if err := s.Revoke(ctx, "jti-1", until); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	// Idempotent.
	if err := s.Revoke(ctx, "jti-1", until); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}

	revoked, err = s.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("after revoke: revoked=%v err=%v", revoked, err)
	}
}

func TestRedisEntryExpires(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	if err := s.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	revoked, err := s.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("entry survived past its deadline")
	}
}

func TestRedisClaimSingleWinner(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()
	until := time.Now().Add(time.Hour)

	const callers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := s.Claim(ctx, "jti-1", until)
			if err != nil {
				t.Errorf("Claim: %v", err)
				return
			}
			if won {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}

	revoked, err := s.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("after claim: revoked=%v err=%v", revoked, err)
	}
}

func TestRedisUnavailable(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()
	mr.Close()

	if _, err := s.IsRevoked(ctx, "jti-1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("IsRevoked err = %v, want ErrUnavailable", err)
	}
	if err := s.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Revoke err = %v, want ErrUnavailable", err)
	}
	if _, err := s.Claim(ctx, "jti-1", time.Now().Add(time.Hour)); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Claim err = %v, want ErrUnavailable", err)
	}
}

func TestRedisTTLClamp(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	// Deadline already passed: the entry must still land, with the minimum
	// one-second TTL.
	if err := s.Revoke(ctx, "jti-1", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	revoked, err := s.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("revoked=%v err=%v", revoked, err)
	}

	ttl := mr.TTL(keyPrefix + "jti-1")
	if ttl <= 0 || ttl > time.Second {
		t.Fatalf("ttl = %v, want (0, 1s]", ttl)
	}
}
