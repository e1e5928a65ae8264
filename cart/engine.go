// Package cart implements the cart engine: ordered line items with quantities
// bounded by catalog stock, persisted after every mutation.
package cart

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"go-storefront/catalog"
	"go-storefront/models"
)

var (
	// ErrProductNotFound means the referenced product is unknown to the
	// catalog snapshot. No mutation is performed.
	ErrProductNotFound = errors.New("cart: product not found")

	// ErrStockExhausted means the cart already holds all available stock for
	// the product. No mutation is performed.
	ErrStockExhausted = errors.New("cart: stock exhausted")
)

// Store persists cart snapshots. Failures are best-effort: the engine logs
// them and the in-memory mutation stands.
type Store interface {
	Save(ctx context.Context, cart *models.Cart) error
}

// Result reports the outcome of a quantity mutation. Limited is set when the
// requested quantity was clamped down to the available stock; Quantity is the
// quantity actually applied (0 when the line was removed).
type Result struct {
	Quantity int
	Limited  bool
	Stock    int
}

// Engine validates cart mutations against the catalog snapshot, persists
// after each successful mutation, and then notifies observers. Cart state is
// passed in explicitly; the engine itself holds no cart.
type Engine struct {
	catalog  *catalog.Cache
	store    Store
	log      zerolog.Logger
	onChange []func(*models.Cart)
}

// NewEngine wires an engine over a catalog snapshot and a cart store.
func NewEngine(cache *catalog.Cache, store Store, log zerolog.Logger) *Engine {
	return &Engine{catalog: cache, store: store, log: log}
}

// OnChange registers an observer invoked after every successful mutation,
// once the new state has been persisted.
func (e *Engine) OnChange(fn func(*models.Cart)) {
	e.onChange = append(e.onChange, fn)
}

// AddItem puts one unit of the product into the cart: a new line at the end
// of the sequence, or +1 on the existing line. Adding beyond the available
// stock is rejected with ErrStockExhausted.
func (e *Engine) AddItem(ctx context.Context, c *models.Cart, productID string) error {
	product, ok := e.catalog.Get(productID)
	if !ok {
		return ErrProductNotFound
	}

	if c.Quantity(productID) >= product.Stock {
		return ErrStockExhausted
	}

	if item := c.Find(productID); item != nil {
		item.Quantity++
	} else {
		c.Items = append(c.Items, models.CartItem{
			ProductID: productID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  1,
		})
	}

	e.commit(ctx, c)
	return nil
}

// RemoveItem deletes the line for the product. A missing line is a no-op, not
// an error, so removal is idempotent.
func (e *Engine) RemoveItem(ctx context.Context, c *models.Cart, productID string) {
	kept := c.Items[:0]
	removed := false
	for _, item := range c.Items {
		if item.ProductID == productID {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return
	}
	c.Items = kept
	e.commit(ctx, c)
}

// SetQuantity applies an absolute quantity to an existing line. Values <= 0
// remove the line; values above the available stock are clamped down with
// Limited set so callers can surface the limit. A cart line whose product has
// vanished from the catalog yields ErrProductNotFound.
func (e *Engine) SetQuantity(ctx context.Context, c *models.Cart, productID string, quantity int) (Result, error) {
	item := c.Find(productID)
	if item == nil {
		return Result{}, nil
	}

	if quantity <= 0 {
		e.RemoveItem(ctx, c, productID)
		return Result{Quantity: 0}, nil
	}

	product, ok := e.catalog.Get(productID)
	if !ok {
		return Result{}, ErrProductNotFound
	}

	res := Result{Quantity: quantity, Stock: product.Stock}
	if quantity > product.Stock {
		res.Quantity = product.Stock
		res.Limited = true
	}

	if res.Quantity <= 0 {
		// Product went out of stock since it was added.
		e.RemoveItem(ctx, c, productID)
		res.Quantity = 0
		return res, nil
	}

	item.Quantity = res.Quantity
	e.commit(ctx, c)
	return res, nil
}

// Increment raises the line's quantity by one, subject to the stock clamp.
func (e *Engine) Increment(ctx context.Context, c *models.Cart, productID string) (Result, error) {
	item := c.Find(productID)
	if item == nil {
		return Result{}, nil
	}
	return e.SetQuantity(ctx, c, productID, item.Quantity+1)
}

// Decrement lowers the line's quantity by one, removing the line at zero.
func (e *Engine) Decrement(ctx context.Context, c *models.Cart, productID string) (Result, error) {
	item := c.Find(productID)
	if item == nil {
		return Result{}, nil
	}
	return e.SetQuantity(ctx, c, productID, item.Quantity-1)
}

// Clear empties the cart and persists the empty state.
func (e *Engine) Clear(ctx context.Context, c *models.Cart) {
	if len(c.Items) == 0 {
		return
	}
	c.Items = c.Items[:0]
	e.commit(ctx, c)
}

// commit persists the mutated cart and notifies observers, in that order, so
// an observer reading storage sees the post-mutation state. A failed save is
// logged and otherwise ignored.
func (e *Engine) commit(ctx context.Context, c *models.Cart) {
	if err := e.store.Save(ctx, c); err != nil {
		e.log.Error().Err(err).Str("user_id", c.UserID.Hex()).Msg("cart save failed")
	}
	for _, fn := range e.onChange {
		fn(c)
	}
}
