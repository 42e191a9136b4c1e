package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultSessionTTL = 30 * time.Minute

type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOptions configures the Redis-backed session store.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces session keys; defaults to "session".
	Prefix string
	// TTL bounds how long an abandoned conversation is kept.
	TTL time.Duration
}

// NewRedisStore connects to Redis and returns a Store whose sessions survive
// process restarts. Abandoned conversations expire after the configured TTL.
func NewRedisStore(ctx context.Context, opts RedisOptions) (Store, error) {
	if opts.Prefix == "" {
		opts.Prefix = "session"
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultSessionTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session store: redis ping: %w", err)
	}

	return &redisStore{client: client, prefix: opts.Prefix, ttl: opts.TTL}, nil
}

func (r *redisStore) key(userID int64) string {
	return r.prefix + ":" + strconv.FormatInt(userID, 10)
}

func (r *redisStore) Get(ctx context.Context, userID int64) (Session, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{Step: StepIdle}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("session store: get: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		// Corrupt payload: treat as no session rather than wedging the user.
		return Session{Step: StepIdle}, nil
	}
	return s, nil
}

func (r *redisStore) Put(ctx context.Context, userID int64, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session store: marshal: %w", err)
	}
	if err := r.client.Set(ctx, r.key(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("session store: set: %w", err)
	}
	return nil
}

func (r *redisStore) Clear(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("session store: del: %w", err)
	}
	return nil
}
