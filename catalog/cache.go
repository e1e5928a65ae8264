// Package catalog holds the in-memory snapshot of the product list used for
// stock checks during cart mutations.
package catalog

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"go-storefront/models"
)

// ErrUnavailable is returned by Load when the product source fails; the cache
// is emptied so every subsequent lookup reports an unknown product.
var ErrUnavailable = errors.New("catalog: product source unavailable")

// Source is the bulk product fetch the cache loads from.
type Source interface {
	Products(ctx context.Context) ([]models.Product, error)
}

// Cache is a read-mostly snapshot of the catalog. Product ids are
// canonicalized to their base-10 string form on ingestion, so lookups never
// depend on representation coercion. Stock levels reflect only the last full
// load; the cache is never patched in place.
type Cache struct {
	source Source
	log    zerolog.Logger

	mu       sync.RWMutex
	products map[string]models.Product
	order    []string
}

// New returns an empty cache over the given source.
func New(source Source, log zerolog.Logger) *Cache {
	return &Cache{
		source:   source,
		log:      log,
		products: map[string]models.Product{},
	}
}

// Key converts a public numeric product id to its canonical string form.
func Key(id int) string {
	return strconv.Itoa(id)
}

// Load replaces the whole snapshot with a fresh fetch. On failure the cache
// becomes empty and ErrUnavailable is returned; there are no partial loads.
func (c *Cache) Load(ctx context.Context) error {
	products, err := c.source.Products(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("catalog load failed, cache emptied")
		c.mu.Lock()
		c.products = map[string]models.Product{}
		c.order = nil
		c.mu.Unlock()
		return ErrUnavailable
	}

	byID := make(map[string]models.Product, len(products))
	order := make([]string, 0, len(products))
	for _, p := range products {
		key := Key(p.ID)
		if _, dup := byID[key]; !dup {
			order = append(order, key)
		}
		byID[key] = p
	}

	c.mu.Lock()
	c.products = byID
	c.order = order
	c.mu.Unlock()

	c.log.Debug().Int("products", len(byID)).Msg("catalog loaded")
	return nil
}

// Get looks up a product by canonical string id.
func (c *Cache) Get(id string) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	return p, ok
}

// Len reports the number of products in the snapshot.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// All returns the snapshot in load order.
func (c *Cache) All() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Product, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.products[key])
	}
	return out
}
