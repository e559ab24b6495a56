package sequence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func exercise(t *testing.T, s Sequencer) {
	t.Helper()
	ctx := context.Background()
	if n, err := s.Latest(ctx, "a"); err != nil || n != 0 {
		t.Fatalf("expected 0 before first Next, got %d err=%v", n, err)
	}
	var prev uint64
	for i := 0; i < 5; i++ {
		n, err := s.Next(ctx, "a")
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if n <= prev {
			t.Fatalf("expected strictly increasing, got %d after %d", n, prev)
		}
		prev = n
	}
	if n, _ := s.Latest(ctx, "a"); n != prev {
		t.Fatalf("expected latest %d, got %d", prev, n)
	}
	if n, _ := s.Next(ctx, "b"); n != 1 {
		t.Fatalf("expected independent counter per session, got %d", n)
	}
	if err := s.Forget(ctx, "a"); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if n, _ := s.Latest(ctx, "a"); n != 0 {
		t.Fatalf("expected 0 after forget, got %d", n)
	}
}

func TestMemorySequencer(t *testing.T) {
	exercise(t, NewMemory())
}

func TestRedisSequencer(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	exercise(t, NewRedis(rdb, time.Minute))
}

func TestRedisSequencerSetsTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	s := NewRedis(rdb, 30*time.Second)
	if _, err := s.Next(context.Background(), "x"); err != nil {
		t.Fatalf("next: %v", err)
	}
	if ttl := mr.TTL(keyPrefix + "x"); ttl != 30*time.Second {
		t.Fatalf("expected 30s ttl, got %v", ttl)
	}
}
