package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const bumpChannel = "ledger.bump"

// Cache wraps Redis based caching with per-organization versioning. Every
// posting or cancellation bumps the organization's version, which shifts all
// derived keys and lets stale aggregates expire by TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func versionKey(orgID int64) string {
	return fmt.Sprintf("ledger:version:%d", orgID)
}

// Version returns the organization's cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context, orgID int64) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey(orgID)).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, versionKey(orgID), 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, versionKey(orgID), ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes a cache key with the organization's current version.
func (c *Cache) BuildKey(ctx context.Context, orgID int64, parts ...string) (string, error) {
	joined := strings.Join(append([]string{"ledger", strconv.FormatInt(orgID, 10)}, parts...), ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx, orgID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates the organization's cached aggregates by incrementing its
// version and publishing an event for other replicas.
func (c *Cache) Bump(ctx context.Context, orgID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, versionKey(orgID)).Result()
	if err != nil {
		return err
	}
	payload := fmt.Sprintf("%d:%d", orgID, ver)
	return c.client.Publish(ctx, bumpChannel, payload).Err()
}

// ListenForInvalidation subscribes to version bump notifications so replicas
// converge on the highest seen version.
func (c *Cache) ListenForInvalidation(ctx context.Context, channel string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if channel == "" {
		channel = bumpChannel
	}
	pubsub := c.client.Subscribe(ctx, channel)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				orgID, ver, err := parseBump(msg.Payload)
				if err != nil {
					continue
				}
				_ = c.client.Set(ctx, versionKey(orgID), ver, 0).Err()
			}
		}
	}()
	return nil
}

func parseBump(payload string) (orgID, ver int64, err error) {
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("ledger: malformed bump payload %q", payload)
	}
	orgID, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	ver, err = strconv.ParseInt(parts[1], 10, 64)
	return orgID, ver, err
}

func keyGeneralLedger(from, to string) []string {
	return []string{"gl", from, to}
}

func keyTrialBalance(from, to string) []string {
	return []string{"tb", from, to}
}
