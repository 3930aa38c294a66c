package redisclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	idempotencyPrefix = "idempotency:"
	revokedPrefix     = "revoked:"
)

// Client wraps Redis for checkout idempotency and the token revocation list
type Client struct {
	rdb redis.UniversalClient
}

// NewClient connects to Redis and verifies the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewFromRedis wraps an existing connection
func NewFromRedis(rdb redis.UniversalClient) *Client {
	return &Client{rdb: rdb}
}

// Ping reports whether Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// idempotencyKey namespaces a client key by the user that sent it
func idempotencyKey(userID int64, key string) string {
	return fmt.Sprintf("%s%d:%s", idempotencyPrefix, userID, key)
}

// GetOrderID looks up the order userID created under an idempotency key
func (c *Client) GetOrderID(ctx context.Context, userID int64, key string) (int64, bool, error) {
	val, err := c.rdb.Get(ctx, idempotencyKey(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read idempotency key: %w", err)
	}

	orderID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt idempotency entry %q: %w", val, err)
	}
	return orderID, true, nil
}

// SetOrderID remembers the order userID created under an idempotency key
func (c *Client) SetOrderID(ctx context.Context, userID int64, key string, orderID int64, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, idempotencyKey(userID, key), orderID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}

// RevokeToken blacklists a token id for ttl
func (c *Client) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, revokedPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether a token id is blacklisted
func (c *Client) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.rdb.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}
