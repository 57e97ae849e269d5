package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"memberd/internal/member/models"
	id "memberd/pkg/domain"
)

const (
	availabilityKeyPrefix = "member:login:"
	availabilityTaken     = "1"
	availabilityFree      = "0"
)

// Cached decorates a MemberStore with a Redis-backed login-id availability
// cache. Registration UIs poll ExistsByLoginID aggressively; answering from
// Redis keeps that chatter off the primary store. Reads of member records
// always go to the primary store — no password material is ever cached.
//
// Cache failures degrade to the primary store and are logged, never
// surfaced: availability answers must not depend on Redis being up.
type Cached struct {
	MemberStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCached(primary MemberStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cached {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cached{
		MemberStore: primary,
		client:      client,
		ttl:         ttl,
		logger:      logger,
	}
}

func availabilityKey(loginID models.LoginID) string {
	return availabilityKeyPrefix + strings.ToLower(loginID.String())
}

func (c *Cached) ExistsByLoginID(ctx context.Context, loginID models.LoginID) (bool, error) {
	key := availabilityKey(loginID)

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached == availabilityTaken, nil
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "availability cache read failed", "error", err)
	}

	exists, err := c.MemberStore.ExistsByLoginID(ctx, loginID)
	if err != nil {
		return false, err
	}

	value := availabilityFree
	if exists {
		value = availabilityTaken
	}
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "availability cache write failed", "error", err)
	}
	return exists, nil
}

// Create writes through to the primary store and marks the login id taken so
// a registration immediately invalidates any cached "free" answer.
func (c *Cached) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	saved, err := c.MemberStore.Create(ctx, member)
	if err != nil {
		return nil, err
	}
	key := availabilityKey(saved.LoginID)
	if cacheErr := c.client.Set(ctx, key, availabilityTaken, c.ttl).Err(); cacheErr != nil {
		c.logger.WarnContext(ctx, "availability cache write failed", "error", cacheErr)
	}
	return saved, nil
}

// UpdateDigest passes through untouched; digests are never cached.
func (c *Cached) UpdateDigest(ctx context.Context, memberID id.MemberID, digest models.PasswordDigest) error {
	return c.MemberStore.UpdateDigest(ctx, memberID, digest)
}

// Flush drops all availability keys. Test hook.
func (c *Cached) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, availabilityKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("flush availability cache: %w", err)
		}
	}
	return iter.Err()
}
