// Package catalog отдаёт списки услуг и ресурсов через кэш (cache-aside)
// и сбрасывает кэш после каждой записи.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"adagency/internal/app/ds"

	"github.com/sirupsen/logrus"
)

const (
	KeyServicesAll        = "catalog:services:all"
	KeyServicesAvailable  = "catalog:services:available"
	KeyResourcesAll       = "catalog:resources:all"
	KeyResourcesAvailable = "catalog:resources:available"
)

// Cache хранилище ключ-значение с TTL
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	SetEX(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Store источник истины для каталога
type Store interface {
	ListServices(ctx context.Context, availableOnly bool) ([]ds.Service, error)
	GetServiceByID(ctx context.Context, id uint) (*ds.Service, error)
	CreateService(ctx context.Context, service *ds.Service, resourceIDs []uint) error
	UpdateService(ctx context.Context, id uint, fields map[string]interface{}) error
	SetServiceImage(ctx context.Context, id uint, imageURL *string) error
	SetServiceResources(ctx context.Context, serviceID uint, resourceIDs []uint) error
	DeleteService(ctx context.Context, id uint) error

	ListResources(ctx context.Context, availableOnly bool) ([]ds.Resource, error)
	GetResourceByID(ctx context.Context, id uint) (*ds.Resource, error)
	CreateResource(ctx context.Context, resource *ds.Resource) error
	UpdateResource(ctx context.Context, id uint, fields map[string]interface{}) error
	DeleteResource(ctx context.Context, id uint) error
}

type TTL struct {
	Services  time.Duration
	Resources time.Duration
}

// DefaultTTL время жизни списков по умолчанию
var DefaultTTL = TTL{Services: time.Hour, Resources: 30 * time.Minute}

type Catalog struct {
	store Store
	cache Cache
	ttl   TTL
}

func New(store Store, cache Cache, ttl TTL) *Catalog {
	if ttl.Services <= 0 {
		ttl.Services = DefaultTTL.Services
	}
	if ttl.Resources <= 0 {
		ttl.Resources = DefaultTTL.Resources
	}
	return &Catalog{store: store, cache: cache, ttl: ttl}
}

func servicesKey(availableOnly bool) string {
	if availableOnly {
		return KeyServicesAvailable
	}
	return KeyServicesAll
}

func resourcesKey(availableOnly bool) string {
	if availableOnly {
		return KeyResourcesAvailable
	}
	return KeyResourcesAll
}

// readThrough общий путь чтения: кэш, затем load с заполнением кэша.
// Пустой результат не кэшируется. Сбой кэша на чтении не фатален.
func readThrough[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func() ([]T, error)) ([]T, error) {
	raw, ok, err := c.Get(ctx, key)
	switch {
	case err != nil:
		logrus.WithError(err).WithField("key", key).Warn("cache get failed, reading from database")
	case ok:
		var items []T
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
		logrus.WithField("key", key).Warn("corrupt cache payload, reading from database")
	}

	items, err := load()
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.SetEX(ctx, key, payload, ttl); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache set failed")
	}
	return items, nil
}

func (c *Catalog) ListServices(ctx context.Context, availableOnly bool) ([]ds.Service, error) {
	return readThrough(ctx, c.cache, servicesKey(availableOnly), c.ttl.Services, func() ([]ds.Service, error) {
		return c.store.ListServices(ctx, availableOnly)
	})
}

func (c *Catalog) ListResources(ctx context.Context, availableOnly bool) ([]ds.Resource, error) {
	return readThrough(ctx, c.cache, resourcesKey(availableOnly), c.ttl.Resources, func() ([]ds.Resource, error) {
		return c.store.ListResources(ctx, availableOnly)
	})
}

// GetService читает одну услугу мимо кэша
func (c *Catalog) GetService(ctx context.Context, id uint) (*ds.Service, error) {
	return c.store.GetServiceByID(ctx, id)
}

func (c *Catalog) GetResource(ctx context.Context, id uint) (*ds.Resource, error) {
	return c.store.GetResourceByID(ctx, id)
}

func (c *Catalog) invalidateServices(ctx context.Context) error {
	if err := c.cache.Del(ctx, KeyServicesAll, KeyServicesAvailable); err != nil {
		return fmt.Errorf("invalidate services cache: %w", err)
	}
	return nil
}

func (c *Catalog) invalidateResources(ctx context.Context) error {
	if err := c.cache.Del(ctx, KeyResourcesAll, KeyResourcesAvailable); err != nil {
		return fmt.Errorf("invalidate resources cache: %w", err)
	}
	return nil
}

func (c *Catalog) CreateService(ctx context.Context, service *ds.Service, resourceIDs []uint) error {
	if err := c.store.CreateService(ctx, service, resourceIDs); err != nil {
		return err
	}
	return c.invalidateServices(ctx)
}

func (c *Catalog) UpdateService(ctx context.Context, id uint, fields map[string]interface{}) error {
	if err := c.store.UpdateService(ctx, id, fields); err != nil {
		return err
	}
	return c.invalidateServices(ctx)
}

func (c *Catalog) SetServiceImage(ctx context.Context, id uint, imageURL *string) error {
	if err := c.store.SetServiceImage(ctx, id, imageURL); err != nil {
		return err
	}
	return c.invalidateServices(ctx)
}

func (c *Catalog) SetServiceResources(ctx context.Context, serviceID uint, resourceIDs []uint) error {
	if err := c.store.SetServiceResources(ctx, serviceID, resourceIDs); err != nil {
		return err
	}
	return c.invalidateServices(ctx)
}

func (c *Catalog) DeleteService(ctx context.Context, id uint) error {
	if err := c.store.DeleteService(ctx, id); err != nil {
		return err
	}
	return c.invalidateServices(ctx)
}

func (c *Catalog) CreateResource(ctx context.Context, resource *ds.Resource) error {
	if err := c.store.CreateResource(ctx, resource); err != nil {
		return err
	}
	return c.invalidateResources(ctx)
}

func (c *Catalog) UpdateResource(ctx context.Context, id uint, fields map[string]interface{}) error {
	if err := c.store.UpdateResource(ctx, id, fields); err != nil {
		return err
	}
	return c.invalidateResources(ctx)
}

// DeleteResource сбрасывает и списки услуг: удалённый ресурс исчезает
// из их разрешённых наборов
func (c *Catalog) DeleteResource(ctx context.Context, id uint) error {
	if err := c.store.DeleteResource(ctx, id); err != nil {
		return err
	}
	if err := c.invalidateResources(ctx); err != nil {
		return err
	}
	return c.invalidateServices(ctx)
}
