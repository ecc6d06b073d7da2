package gateway

import (
	"context"
	"sync"
	"time"
)

// RateLimiter 控制客户端向风控服务发请求的速率。
// Wait 在取得令牌或 ctx 结束时返回。
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// TokenBucketLimiter 令牌桶限流，令牌按 rate/s 补充，上限 burst。
type TokenBucketLimiter struct {
	rate   float64
	burst  float64
	tokens float64
	last   time.Time
	now    func() time.Time
	mu     sync.Mutex
}

func NewTokenBucketLimiter(rate float64, burst int) *TokenBucketLimiter {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	l := &TokenBucketLimiter{
		rate:   rate,
		burst:  float64(burst),
		tokens: float64(burst),
		now:    time.Now,
	}
	l.last = l.now()
	return l
}

// reserve 预占一个令牌，返回需要等待的时长。令牌可以透支，
// 后续调用会按透支量顺延。
func (l *TokenBucketLimiter) reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.tokens += now.Sub(l.last).Seconds() * l.rate
	l.last = now
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
	l.tokens--
	if l.tokens >= 0 {
		return 0
	}
	return time.Duration(-l.tokens / l.rate * float64(time.Second))
}

// cancel 归还 reserve 预占但未使用的令牌。
func (l *TokenBucketLimiter) cancel() {
	l.mu.Lock()
	l.tokens++
	l.mu.Unlock()
}

func (l *TokenBucketLimiter) Wait(ctx context.Context) error {
	delay := l.reserve()
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		l.cancel()
		return ctx.Err()
	}
}
