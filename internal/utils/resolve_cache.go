package utils

import (
	"time"

	"pictureCatalog/internal/models"
)

// ResolveCache provides short-lived caching for name/alias resolution, so a
// burst of lookups for the same trigger word hits the database once.
type ResolveCache struct {
	cache *Cache
}

// NewResolveCache creates a new resolution cache
func NewResolveCache(ttl time.Duration) *ResolveCache {
	return &ResolveCache{
		cache: NewCache(ttl),
	}
}

// Get retrieves a cached resolution result. The second return value is false
// on a cache miss; a cached "no match" is a present entry holding ok=false.
func (rc *ResolveCache) Get(text string) (models.Person, bool, bool) {
	value, exists := rc.cache.Get("resolve:" + text)
	if !exists {
		return models.Person{}, false, false
	}

	hit, ok := value.(resolveHit)
	if !ok {
		return models.Person{}, false, false
	}
	return hit.person, hit.found, true
}

// Set caches a resolution result, including negative ones
func (rc *ResolveCache) Set(text string, person models.Person, found bool) {
	rc.cache.Set("resolve:"+text, resolveHit{person: person, found: found})
}

// InvalidatePerson drops cached hits for a person's name. Alias entries are
// left to TTL expiration; the cache has no reverse index over alias sets.
func (rc *ResolveCache) InvalidatePerson(name string) {
	rc.cache.Delete("resolve:" + name)
}

// Clear removes all cached resolutions
func (rc *ResolveCache) Clear() {
	rc.cache.Clear()
}

type resolveHit struct {
	person models.Person
	found  bool
}
