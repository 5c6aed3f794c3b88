package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mezonai/starledger/logx"
	"github.com/mezonai/starledger/utils"
)

type RateLimiterConfig struct {
	MaxRequests     int
	WindowSize      time.Duration
	CleanupInterval time.Duration
}

func DefaultConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		MaxRequests:     10,
		WindowSize:      time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

type RateLimiterData struct {
	mu           sync.Mutex
	currentCount int
	windowStart  time.Time
	lastSeen     time.Time
}

// RateLimiter is a fixed window counter per key. A MaxRequests of zero disables it.
type RateLimiter struct {
	config      *RateLimiterConfig
	requests    map[string]*RateLimiterData
	mu          sync.Mutex
	clock       utils.Clock
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

func NewRateLimiter(config *RateLimiterConfig) *RateLimiter {
	return NewRateLimiterWithClock(config, utils.SystemClock)
}

func NewRateLimiterWithClock(config *RateLimiterConfig, clock utils.Clock) *RateLimiter {
	if config == nil {
		config = DefaultConfig()
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		config:      config,
		requests:    make(map[string]*RateLimiterData),
		clock:       clock,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupExpiredEntries()

	return rl
}

// AllowWithContext checks if a request from the given key is allowed
func (rl *RateLimiter) AllowWithContext(ctx context.Context, key string) bool {
	if rl.config.MaxRequests <= 0 {
		return true
	}
	if ctx.Err() != nil {
		return false
	}
	now := rl.clock()

	rl.mu.Lock()
	data, exists := rl.requests[key]
	if !exists {
		data = &RateLimiterData{windowStart: now}
		rl.requests[key] = data
	}
	rl.mu.Unlock()

	data.mu.Lock()
	defer data.mu.Unlock()

	data.lastSeen = now
	if now.Sub(data.windowStart) >= rl.config.WindowSize {
		data.currentCount = 0
		data.windowStart = now
	}

	if data.currentCount >= rl.config.MaxRequests {
		return false
	}

	data.currentCount++
	return true
}

// Len returns the number of keys currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.requests)
}

func (rl *RateLimiter) cleanupExpiredEntries() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	cutoff := rl.clock().Add(-rl.config.WindowSize)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, data := range rl.requests {
		data.mu.Lock()
		expired := data.lastSeen.Before(cutoff)
		data.mu.Unlock()
		if expired {
			delete(rl.requests, key)
			removed++
		}
	}
	if removed > 0 {
		logx.Debug("SECURITY", fmt.Sprintf("Rate limiter cleanup | removed=%d | remaining=%d", removed, len(rl.requests)))
	}
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// GlobalRateLimiter limits star submissions both per client IP and per wallet address.
type GlobalRateLimiter struct {
	ipLimiter     *RateLimiter
	walletLimiter *RateLimiter
}

type GlobalRateLimiterConfig struct {
	IPConfig     *RateLimiterConfig
	WalletConfig *RateLimiterConfig
}

func DefaultGlobalConfig() *GlobalRateLimiterConfig {
	return &GlobalRateLimiterConfig{
		IPConfig: &RateLimiterConfig{
			MaxRequests:     100,
			WindowSize:      time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
		WalletConfig: DefaultConfig(),
	}
}

func NewGlobalRateLimiter(config *GlobalRateLimiterConfig) *GlobalRateLimiter {
	if config == nil {
		config = DefaultGlobalConfig()
	}

	return &GlobalRateLimiter{
		ipLimiter:     NewRateLimiter(config.IPConfig),
		walletLimiter: NewRateLimiter(config.WalletConfig),
	}
}

// AllowIPWithContext is a no-op for an empty ip, which in-process callers have.
func (grl *GlobalRateLimiter) AllowIPWithContext(ctx context.Context, ip string) bool {
	if ip == "" {
		return true
	}
	if !grl.ipLimiter.AllowWithContext(ctx, ip) {
		logx.Warn("SECURITY", "Rate limit exceeded for IP:", ip)
		return false
	}
	return true
}

func (grl *GlobalRateLimiter) AllowWalletWithContext(ctx context.Context, wallet string) bool {
	if !grl.walletLimiter.AllowWithContext(ctx, wallet) {
		logx.Warn("SECURITY", "Rate limit exceeded for wallet:", wallet)
		return false
	}
	return true
}

func (grl *GlobalRateLimiter) Stop() {
	grl.ipLimiter.Stop()
	grl.walletLimiter.Stop()
}
