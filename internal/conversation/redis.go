package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-assistant/internal/apperr"
)

const (
	statePrefix = "conv:state:"
	lockPrefix  = "conv:lock:"
)

// --------------------------------------------------
// State repository
// --------------------------------------------------

// RedisRepository stores each State as JSON with a sliding TTL, so
// abandoned dialogs expire on their own.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func (r *RedisRepository) Load(ctx context.Context, phone string) (State, error) {
	data, err := r.client.Get(ctx, statePrefix+phone).Result()
	if errors.Is(err, redis.Nil) {
		return NewState(phone), nil
	}
	if err != nil {
		return State{}, apperr.Persistence("load_conversation", err)
	}

	var st State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return State{}, apperr.Persistence("decode_conversation", err)
	}
	return st, nil
}

func (r *RedisRepository) Save(ctx context.Context, st State) error {
	st.UpdatedAt = time.Now()

	b, err := json.Marshal(st)
	if err != nil {
		return apperr.Persistence("encode_conversation", err)
	}
	if err := r.client.Set(ctx, statePrefix+st.Phone, b, r.ttl).Err(); err != nil {
		return apperr.Persistence("save_conversation", err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, phone string) error {
	if err := r.client.Del(ctx, statePrefix+phone).Err(); err != nil {
		return apperr.Persistence("delete_conversation", err)
	}
	return nil
}

// --------------------------------------------------
// Distributed per-phone lock
// --------------------------------------------------

var ErrLockNotAcquired = errors.New("conversation lock not acquired")

// RedisLocker serialises a phone across processes with SET NX and a
// random token. Unlike a fail-fast slot lock, callers wait (polling) up to
// wait for the holder to finish, since duplicate deliveries are expected.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
}

func NewRedisLocker(client *redis.Client, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
		poll:   50 * time.Millisecond,
	}
}

func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lockKey := lockPrefix + key
	token := uuid.NewString()

	if err := l.acquire(ctx, lockKey, token); err != nil {
		return err
	}

	defer func() {
		// release must run even when ctx is already done
		_ = l.release(context.Background(), lockKey, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil && waitCtx.Err() == nil {
			return fmt.Errorf("acquire conversation lock: %w", err)
		}
		if ok {
			return nil
		}

		select {
		case <-waitCtx.Done():
			return ErrLockNotAcquired
		case <-ticker.C:
		}
	}
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *RedisLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release conversation lock: %w", err)
	}
	return nil
}
