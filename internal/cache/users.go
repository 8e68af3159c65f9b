package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/geocoder89/usershub/internal/observability"
)

// Store is the store contract the decorator wraps.
type Store interface {
	List(ctx context.Context, filter user.ListFilter) ([]user.User, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Create(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Users caches single-user reads. Writes go straight to the store and evict the entry.
//
// gen is bumped by every eviction. A read that missed only fills the cache when no eviction
// happened while it was at the store, so a reader holding a pre-write copy cannot put it back.
type Users struct {
	Store
	backend Backend
	prom    *observability.Prom
	log     *slog.Logger

	mu  sync.Mutex
	gen uint64
}

func NewUsers(next Store, backend Backend, prom *observability.Prom, log *slog.Logger) *Users {
	if log == nil {
		log = slog.Default()
	}
	return &Users{Store: next, backend: backend, prom: prom, log: log}
}

func userKey(id string) string {
	return "users:" + id
}

func (c *Users) GetByID(ctx context.Context, id string) (user.User, error) {
	key := userKey(id)

	raw, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.log.WarnContext(ctx, "cache get failed", "key", key, "err", err)
	}
	if ok {
		var u user.User
		if err := json.Unmarshal(raw, &u); err == nil {
			c.prom.ObserveCache(true)
			return u, nil
		}
	}

	c.prom.ObserveCache(false)

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	u, err := c.Store.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if raw, err := json.Marshal(u); err == nil {
		c.fill(ctx, key, raw, gen)
	}

	return u, nil
}

func (c *Users) fill(ctx context.Context, key string, raw []byte, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return
	}
	if err := c.backend.Set(ctx, key, raw); err != nil {
		c.log.WarnContext(ctx, "cache set failed", "key", key, "err", err)
	}
}

func (c *Users) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error) {
	u, err := c.Store.Update(ctx, id, req)
	if err == nil {
		c.evict(ctx, id)
	}
	return u, err
}

func (c *Users) Delete(ctx context.Context, id string) error {
	err := c.Store.Delete(ctx, id)
	if err == nil {
		c.evict(ctx, id)
	}
	return err
}

func (c *Users) evict(ctx context.Context, id string) {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()

	if err := c.backend.Delete(ctx, userKey(id)); err != nil {
		c.log.WarnContext(ctx, "cache evict failed", "key", userKey(id), "err", err)
	}
}
