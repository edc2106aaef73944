package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	attemptLimit  = 10
	attemptWindow = 5 * time.Minute
)

// LoginLimiter throttles login attempts per account name using a fixed
// Redis window. Key format: login_attempts:<name>
type LoginLimiter struct {
	client *redis.Client
}

// NewLoginLimiter creates a LoginLimiter wrapping the given Redis client.
func NewLoginLimiter(client *redis.Client) *LoginLimiter {
	return &LoginLimiter{client: client}
}

// Allow reports whether another login attempt for name fits in the current
// window. Counting starts the window on the first attempt.
func (l *LoginLimiter) Allow(ctx context.Context, name string) (bool, error) {
	key := l.key(name)

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("count login attempt: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, attemptWindow).Err(); err != nil {
			return false, fmt.Errorf("set attempt window: %w", err)
		}
	}
	return n <= attemptLimit, nil
}

// Reset clears the attempt counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, name string) error {
	return l.client.Del(ctx, l.key(name)).Err()
}

func (l *LoginLimiter) key(name string) string {
	return fmt.Sprintf("login_attempts:%s", name)
}
