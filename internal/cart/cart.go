package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dulzuras/storefront/internal/catalog"
)

var (
	ErrStockExceeded   = errors.New("requested quantity exceeds available stock")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Item is a cart line. Price is frozen at add time; later catalog edits do
// not touch lines already in the cart.
type Item struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	ImageURL  string `json:"imageUrl"`
	Price     int64  `json:"price"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
	Stock     *int   `json:"stock,omitempty"`
	ItemKey   string `json:"itemKey"`
}

// MakeItemKey arma la identidad compuesta de una línea: producto + tamaño.
func MakeItemKey(productID, size string) string {
	if size == "" {
		return productID
	}
	return productID + "-" + size
}

// Cart holds an ordered line-item sequence bound to a storage key. It is an
// explicit handle, not a global: construct one per session with Load.
type Cart struct {
	storage Storage
	key     string
	items   []Item
}

// Load hydrates a cart from storage. A missing, unreadable or malformed
// stored value yields an empty cart, never an error.
func Load(ctx context.Context, storage Storage, key string) *Cart {
	c := &Cart{storage: storage, key: key}

	raw, err := storage.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("cart_key", key).Msg("cart: storage read failed, starting empty")
		return c
	}
	if raw == "" {
		return c
	}
	if err := json.Unmarshal([]byte(raw), &c.items); err != nil {
		log.Warn().Err(err).Str("cart_key", key).Msg("cart: malformed stored cart, starting empty")
		c.items = nil
	}
	return c
}

// Add merges qty units of a product (with optional size) into the cart.
// The returned bool is the "open the cart panel" signal: true on every
// accepted add, false when the operation was rejected.
func (c *Cart) Add(ctx context.Context, p catalog.Product, qty int, size string) (bool, error) {
	if qty < 1 {
		return false, ErrInvalidQuantity
	}

	price, err := p.UnitPrice(size)
	if err != nil {
		return false, fmt.Errorf("cart: cannot add %q: %w", p.Name, err)
	}

	key := MakeItemKey(p.ID, size)
	for i := range c.items {
		if c.items[i].ItemKey != key {
			continue
		}
		newQty := c.items[i].Quantity + qty
		if !p.HasStockFor(newQty) {
			return false, ErrStockExceeded
		}
		c.items[i].Quantity = newQty
		c.persist(ctx)
		return true, nil
	}

	if !p.HasStockFor(qty) {
		return false, ErrStockExceeded
	}

	var stock *int
	if p.Stock != nil {
		s := *p.Stock
		stock = &s
	}
	c.items = append(c.items, Item{
		ProductID: p.ID,
		Name:      p.Name,
		ImageURL:  p.ImageURL,
		Price:     price,
		Size:      size,
		Quantity:  qty,
		Stock:     stock,
		ItemKey:   key,
	})
	c.persist(ctx)
	return true, nil
}

// UpdateQuantity applies a signed delta to the line identified by itemKey.
// Quantities never drop below 1; removal is its own operation. An unknown
// key is a no-op.
func (c *Cart) UpdateQuantity(ctx context.Context, itemKey string, delta int) error {
	for i := range c.items {
		if c.items[i].ItemKey != itemKey {
			continue
		}
		newQty := c.items[i].Quantity + delta
		if newQty < 1 {
			return nil
		}
		if c.items[i].Stock != nil && newQty > *c.items[i].Stock {
			return ErrStockExceeded
		}
		c.items[i].Quantity = newQty
		c.persist(ctx)
		return nil
	}
	return nil
}

// Remove drops the line with the given itemKey. Removing an absent key is a
// no-op.
func (c *Cart) Remove(ctx context.Context, itemKey string) {
	for i := range c.items {
		if c.items[i].ItemKey == itemKey {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.persist(ctx)
			return
		}
	}
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear(ctx context.Context) {
	c.items = nil
	c.persist(ctx)
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []Item {
	items := make([]Item, len(c.items))
	copy(items, c.items)
	return items
}

// Total recomputes Σ(price × quantity) on every call.
func (c *Cart) Total() int64 {
	var total int64
	for _, it := range c.items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

// Count recomputes Σ(quantity) on every call.
func (c *Cart) Count() int {
	var count int
	for _, it := range c.items {
		count += it.Quantity
	}
	return count
}

// persist serializes the full item sequence after a mutation. A storage
// failure leaves the in-memory cart intact and is only logged: the cart
// degrades to unsaved, it does not crash the session.
func (c *Cart) persist(ctx context.Context) {
	raw, err := json.Marshal(c.items)
	if err != nil {
		log.Error().Err(err).Str("cart_key", c.key).Msg("cart: failed to serialize items")
		return
	}
	if err := c.storage.Set(ctx, c.key, string(raw)); err != nil {
		log.Warn().Err(err).Str("cart_key", c.key).Msg("cart: storage write failed, cart unsaved")
	}
}
