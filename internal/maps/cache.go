// README: Redis-backed geocode cache decorator.
package maps

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ridebook/internal/types"
)

const geocodeKeyPrefix = "geocode:"

// CachedGeocoder serves repeated addresses from redis. Only successful
// lookups are stored; redis failures degrade to a direct lookup.
type CachedGeocoder struct {
	next   Geocoder
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedGeocoder(next Geocoder, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedGeocoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGeocoder{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (types.GeoPoint, error) {
	key := geocodeKey(address)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p types.GeoPoint
		if jsonErr := json.Unmarshal(raw, &p); jsonErr == nil && p.Valid() {
			return p, nil
		}
		c.logger.Warn("discarding corrupt geocode cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("geocode cache read failed", zap.String("key", key), zap.Error(err))
	}

	p, err := c.next.Geocode(ctx, address)
	if err != nil {
		return types.GeoPoint{}, err
	}

	if b, err := json.Marshal(p); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			c.logger.Warn("geocode cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return p, nil
}

// geocodeKey folds case and whitespace so "Colombo  Fort" and "colombo fort"
// share an entry.
func geocodeKey(address string) string {
	return geocodeKeyPrefix + strings.ToLower(strings.Join(strings.Fields(address), " "))
}
