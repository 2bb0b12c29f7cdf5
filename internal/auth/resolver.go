package auth

import (
	"context"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/db/store"
)

// UserFinder loads a user with roles and their permissions.
type UserFinder interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
}

// PermissionResolver returns a user and its effective permission set.
type PermissionResolver interface {
	Resolve(ctx context.Context, userID uint) (*models.User, PermissionSet, error)
}

// Resolver walks user, roles and permissions on every call.
type Resolver struct {
	users UserFinder
}

// NewResolver creates a Resolver reading from users.
func NewResolver(users UserFinder) *Resolver {
	return &Resolver{users: users}
}

// Resolve loads the user and collects its permission codes.
// A missing user yields ErrUserNotFound. Status is left to the caller.
func (r *Resolver) Resolve(ctx context.Context, userID uint) (*models.User, PermissionSet, error) {
	u, err := r.users.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrUserNotFound
	}

	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	return u, CollectPermissions(u), nil
}

// ResolvePermissions returns only the permission set of the user.
func (r *Resolver) ResolvePermissions(ctx context.Context, userID uint) (PermissionSet, error) {
	_, perms, err := r.Resolve(ctx, userID)

	return perms, err
}

// GenerationSource reports the number of committed store mutations.
type GenerationSource interface {
	Generation() uint64
}

type cacheEntry struct {
	generation uint64
	user       *models.User
	perms      PermissionSet
}

// CachedResolver caches resolved users per id. An entry is only served while
// the store generation it was resolved at is still current, so any committed
// mutation invalidates every entry synchronously.
type CachedResolver struct {
	next        PermissionResolver
	generations GenerationSource
	cache       *lru.LRU[uint, cacheEntry]
}

// NewCachedResolver wraps next with a bounded, expiring cache.
func NewCachedResolver(next PermissionResolver, generations GenerationSource, size int, ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		next:        next,
		generations: generations,
		cache:       lru.NewLRU[uint, cacheEntry](size, nil, ttl),
	}
}

// Resolve serves a current cache entry or resolves and stores a new one.
// Returned values are shared and must not be modified.
func (c *CachedResolver) Resolve(ctx context.Context, userID uint) (*models.User, PermissionSet, error) {
	// read before resolving so a concurrent commit leaves the entry stale
	gen := c.generations.Generation()

	if e, ok := c.cache.Get(userID); ok && e.generation == gen {
		return e.user, e.perms, nil
	}

	u, perms, err := c.next.Resolve(ctx, userID)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	c.cache.Add(userID, cacheEntry{generation: gen, user: u, perms: perms})

	return u, perms, nil
}

// Len returns the number of cached entries.
func (c *CachedResolver) Len() int {
	return c.cache.Len()
}
