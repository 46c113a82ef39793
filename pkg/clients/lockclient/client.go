// Package lockclient provides short-lived exclusive writer locks on Redis.
package lockclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned when another writer holds the lock
var ErrLocked = errors.New("another writer holds the lock")

const keyPrefix = "ward:lock:"

// releaseScript deletes the key only if it still holds the caller's token
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// redisClient is the part of the go-redis client the locks use
type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Client hands out writer locks
type Client struct {
	rdb redisClient
	ttl time.Duration
	// closer is set when the client owns the connection
	closer *redis.Client
}

// Connect opens a Redis connection and checks it with PING
func Connect(ctx context.Context, addr, password string, database int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	c := New(rdb, ttl)
	c.closer = rdb
	return c, nil
}

// New wraps an existing client. ttl bounds how long a crashed writer can block others.
func New(rdb redisClient, ttl time.Duration) *Client {
	return &Client{rdb: rdb, ttl: ttl}
}

// Close closes the connection if Connect opened it
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// Lock is a held writer lock
type Lock struct {
	client *Client
	key    string
	token  string
}

// Acquire takes the lock on name without waiting. ErrLocked means someone else holds it.
func (c *Client) Acquire(ctx context.Context, name string) (*Lock, error) {
	key := keyPrefix + name
	token := uuid.NewString()

	ok, err := c.rdb.SetNX(ctx, key, token, c.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, name)
	}

	return &Lock{client: c, key: key, token: token}, nil
}

// Release frees the lock if it is still ours. Releasing an expired lock is not an error.
func (l *Lock) Release(ctx context.Context) error {
	if err := l.client.rdb.Eval(ctx, releaseScript, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.key, err)
	}
	return nil
}

// Hold acquires name and returns the function that releases it
func (c *Client) Hold(ctx context.Context, name string) (func(context.Context) error, error) {
	lock, err := c.Acquire(ctx, name)
	if err != nil {
		return nil, err
	}
	return lock.Release, nil
}
