package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/mealshare/backend/internal/logging"
	"github.com/pageza/mealshare/backend/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const ownerHintPrefix = "recipe_owner:"

// OwnerHints caches recipeID -> ownerID in Redis. A hint only reorders the
// resolver's probes; it is never trusted without reading the partition.
// A nil *OwnerHints, or one without a client, does nothing.
type OwnerHints struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewOwnerHints creates a hint cache. client may be nil.
func NewOwnerHints(client *redis.Client, ttl time.Duration) *OwnerHints {
	return &OwnerHints{redis: client, ttl: ttl}
}

func (h *OwnerHints) enabled() bool {
	return h != nil && h.redis != nil
}

// Lookup returns the remembered owner of recipeID
func (h *OwnerHints) Lookup(ctx context.Context, recipeID uuid.UUID) (uuid.UUID, bool) {
	if !h.enabled() {
		return uuid.Nil, false
	}
	val, err := h.redis.Get(ctx, ownerHintPrefix+recipeID.String()).Result()
	if errors.Is(err, redis.Nil) {
		metrics.OwnerHintLookups.WithLabelValues("miss").Inc()
		return uuid.Nil, false
	}
	if err != nil {
		metrics.OwnerHintLookups.WithLabelValues("error").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("recipe_id", recipeID.String()).Msg("owner hint lookup failed")
		return uuid.Nil, false
	}
	ownerID, err := uuid.Parse(val)
	if err != nil {
		metrics.OwnerHintLookups.WithLabelValues("error").Inc()
		h.Forget(ctx, recipeID)
		return uuid.Nil, false
	}
	return ownerID, true
}

// Remember records ownerID as the owner of recipeID
func (h *OwnerHints) Remember(ctx context.Context, recipeID, ownerID uuid.UUID) {
	if !h.enabled() {
		return
	}
	if err := h.redis.Set(ctx, ownerHintPrefix+recipeID.String(), ownerID.String(), h.ttl).Err(); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("recipe_id", recipeID.String()).Msg("failed to store owner hint")
	}
}

// Forget drops the hint for recipeID
func (h *OwnerHints) Forget(ctx context.Context, recipeID uuid.UUID) {
	if !h.enabled() {
		return
	}
	if err := h.redis.Del(ctx, ownerHintPrefix+recipeID.String()).Err(); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("recipe_id", recipeID.String()).Msg("failed to drop owner hint")
	}
}
