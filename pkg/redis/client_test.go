package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed on first request")
	}
	if count != 1 {
		t.Fatalf("expected counter 1 got %d", count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expected expire for first increment")
	}

	allowed, count, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expire should not be set again")
	}

	allowed, _, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected limit reached")
	}
}

func TestOnceClaimsSinglePeriod(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	first, err := client.Once(ctx, "weekly_report", "2025-W41", 8*24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first {
		t.Fatalf("expected first claim to win")
	}

	again, err := client.Once(ctx, "weekly_report", "2025-W41", 8*24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again {
		t.Fatalf("expected repeated claim in the same period to lose")
	}

	next, err := client.Once(ctx, "weekly_report", "2025-W42", 8*24*time.Hour)
	if err != nil || !next {
		t.Fatalf("expected next period to be claimable, got %v err=%v", next, err)
	}
}

func TestForgetReleasesPeriod(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	if ok, err := client.Once(ctx, "weekly_report", "2025-W41", time.Hour); err != nil || !ok {
		t.Fatalf("expected first claim, got %v err=%v", ok, err)
	}
	if err := client.Forget(ctx, "weekly_report", "2025-W41"); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if ok, err := client.Once(ctx, "weekly_report", "2025-W41", time.Hour); err != nil || !ok {
		t.Fatalf("expected claim after forget, got %v err=%v", ok, err)
	}
}

func TestGetMissingKeyReturnsNil(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	if ok, err := client.SetNX(ctx, "k", "v", time.Minute); err != nil || !ok {
		t.Fatalf("setnx failed: ok=%v err=%v", ok, err)
	}
	if err := client.Del(ctx, "k"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, "k"); err != redis.Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected error from uninitialized client")
	}
	if _, err := client.IncrWithTTL(context.Background(), "k", time.Second); err == nil {
		t.Fatalf("expected error from uninitialized client")
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.RateLimitKey("chat:234801"); got != "pharmabot:rate_limit:chat:234801" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := client.LockKey("cron-worker"); got != "pharmabot:lock:cron-worker" {
		t.Fatalf("unexpected lock key %s", got)
	}
	if got := client.OnceKey("weekly_report", ""); got != "pharmabot:once:weekly_report" {
		t.Fatalf("once key should skip empty parts, got %s", got)
	}
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
