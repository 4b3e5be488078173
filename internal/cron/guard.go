package cron

import (
	"context"
	"sync"
	"time"
)

// periodGuard claims a (scope, period) pair at most once. pkg/redis.Client
// implements it across workers.
type periodGuard interface {
	Once(ctx context.Context, scope, period string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, scope, period string) error
}

// MemoryGuard is the single-process periodGuard used without redis. Claims do
// not survive a restart.
type MemoryGuard struct {
	mu      sync.Mutex
	claimed map[string]time.Time
	now     func() time.Time
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{claimed: map[string]time.Time{}, now: time.Now}
}

func (g *MemoryGuard) Once(_ context.Context, scope, period string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := scope + ":" + period
	now := g.now()
	if expires, ok := g.claimed[key]; ok && now.Before(expires) {
		return false, nil
	}
	g.claimed[key] = now.Add(ttl)
	return true, nil
}

func (g *MemoryGuard) Forget(_ context.Context, scope, period string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claimed, scope+":"+period)
	return nil
}
