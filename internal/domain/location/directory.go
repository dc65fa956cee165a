// internal/domain/location/directory.go
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Place is one administrative unit as returned by the location lookup
// endpoints: a province, a district or a ward.
type Place struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Directory resolves the three-level province/district/ward hierarchy.
// Districts and wards are parameterized by their parent's id.
type Directory interface {
	Provinces(ctx context.Context) ([]Place, error)
	Districts(ctx context.Context, provinceID uint) ([]Place, error)
	Wards(ctx context.Context, districtID uint) ([]Place, error)
}

// Find returns the place with the given id from a list, or false.
func Find(places []Place, id uint) (Place, bool) {
	for _, p := range places {
		if p.ID == id {
			return p, true
		}
	}
	return Place{}, false
}

// CachedDirectory decorates a Directory with a Redis cache. The hierarchy is
// effectively static, so lists are kept for the configured TTL. Cache
// failures fall through to the underlying directory.
type CachedDirectory struct {
	next   Directory
	client *redis.Client
	ttl    time.Duration
}

// NewCachedDirectory creates a caching wrapper around a directory.
func NewCachedDirectory(next Directory, client *redis.Client, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{next: next, client: client, ttl: ttl}
}

func (d *CachedDirectory) Provinces(ctx context.Context) ([]Place, error) {
	return d.cached(ctx, "locations:provinces", func() ([]Place, error) {
		return d.next.Provinces(ctx)
	})
}

func (d *CachedDirectory) Districts(ctx context.Context, provinceID uint) ([]Place, error) {
	key := fmt.Sprintf("locations:districts:%d", provinceID)
	return d.cached(ctx, key, func() ([]Place, error) {
		return d.next.Districts(ctx, provinceID)
	})
}

func (d *CachedDirectory) Wards(ctx context.Context, districtID uint) ([]Place, error) {
	key := fmt.Sprintf("locations:wards:%d", districtID)
	return d.cached(ctx, key, func() ([]Place, error) {
		return d.next.Wards(ctx, districtID)
	})
}

func (d *CachedDirectory) cached(ctx context.Context, key string, load func() ([]Place, error)) ([]Place, error) {
	if data, err := d.client.Get(ctx, key).Result(); err == nil {
		var places []Place
		if err := json.Unmarshal([]byte(data), &places); err == nil {
			return places, nil
		}
	}

	places, err := load()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(places); err == nil {
		// Best effort; a cache write failure must not fail the lookup.
		d.client.Set(ctx, key, data, d.ttl)
	}

	return places, nil
}
