package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	MaxLoginFailures = 5
	LoginWindow      = 15 * time.Minute
)

// InitRedis opens a client and checks it with PING.
func InitRedis(ctx context.Context, address, username, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     address,
		Username: username,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// LoginThrottle counts failed logins per email in a fixed window. With a nil
// client every method is a no-op.
type LoginThrottle struct {
	rdb    redis.Cmdable
	max    int64
	window time.Duration
}

func NewLoginThrottle(rdb redis.Cmdable) *LoginThrottle {
	return &LoginThrottle{rdb: rdb, max: MaxLoginFailures, window: LoginWindow}
}

func loginKey(email string) string {
	return "memo:login:fail:" + strings.ToLower(email)
}

// Blocked reports whether email has used up its failed attempts.
func (t *LoginThrottle) Blocked(ctx context.Context, email string) (bool, error) {
	if t == nil || t.rdb == nil {
		return false, nil
	}
	n, err := t.rdb.Get(ctx, loginKey(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= t.max, nil
}

// Failed records one failed attempt. The window starts at the first failure.
func (t *LoginThrottle) Failed(ctx context.Context, email string) {
	if t == nil || t.rdb == nil {
		return
	}
	key := loginKey(email)
	n, err := t.rdb.Incr(ctx, key).Result()
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to record login failure")
		return
	}
	if n == 1 {
		if err := t.rdb.Expire(ctx, key, t.window).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to set login window")
		}
	}
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) {
	if t == nil || t.rdb == nil {
		return
	}
	if err := t.rdb.Del(ctx, loginKey(email)).Err(); err != nil {
		log.Warn().Err(err).Str("email", email).Msg("failed to reset login failures")
	}
}
