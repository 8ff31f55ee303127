package throttle

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle is a fixed-window attempt counter kept in Redis.
type Throttle struct {
	RDB    *redis.Client
	Limit  int
	Window time.Duration
	Prefix string
}

func New(addr, pass string, db, limit int, window time.Duration) *Throttle {
	return &Throttle{
		RDB:    redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		Limit:  limit,
		Window: window,
		Prefix: "deeptrust:throttle:",
	}
}

func (t *Throttle) Ping(ctx context.Context) error { return t.RDB.Ping(ctx).Err() }

func (t *Throttle) Close() error { return t.RDB.Close() }

// incrWindow bumps the counter and sets the window TTL in one step. A key
// found without a TTL gets one, so a counter can never outlive its window.
var incrWindow = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// Allow counts one attempt for key and reports whether it is within the limit.
// The window starts at the first attempt.
func (t *Throttle) Allow(ctx context.Context, key string) (bool, error) {
	n, err := incrWindow.Run(ctx, t.RDB, []string{t.Prefix + key}, t.Window.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n <= int64(t.Limit), nil
}
