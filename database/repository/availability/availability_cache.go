package availabilityRepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"marketplace/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "availability:"

// CachedAvailabilityRepo is a cache-aside decorator backed by Redis. Cache
// failures are logged and fall through to the wrapped repository.
type CachedAvailabilityRepo struct {
	next   AvailabilityRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedAvailabilityRepo(next AvailabilityRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedAvailabilityRepo {
	return &CachedAvailabilityRepo{next: next, client: client, ttl: ttl, logger: logger}
}

func (r *CachedAvailabilityRepo) Get(ctx context.Context, providerID string) (*models.AvailabilityRecord, error) {
	key := cacheKeyPrefix + providerID

	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rec models.AvailabilityRecord
		if jsonErr := json.Unmarshal(data, &rec); jsonErr == nil {
			return &rec, nil
		}
		r.logger.Warn("dropping undecodable availability cache entry", zap.String("providerID", providerID))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("availability cache read failed", zap.String("providerID", providerID), zap.Error(err))
	}

	rec, err := r.next.Get(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(rec); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.logger.Warn("availability cache write failed", zap.String("providerID", providerID), zap.Error(err))
		}
	}
	return rec, nil
}

func (r *CachedAvailabilityRepo) Save(ctx context.Context, rec *models.AvailabilityRecord) error {
	if err := r.next.Save(ctx, rec); err != nil {
		return err
	}
	if err := r.client.Del(ctx, cacheKeyPrefix+rec.ProviderID).Err(); err != nil {
		r.logger.Warn("availability cache invalidation failed", zap.String("providerID", rec.ProviderID), zap.Error(err))
	}
	return nil
}
