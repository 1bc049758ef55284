// Package cart is the per-session shopping cart. State lives in a storage.KV
// and is rewritten after every mutation.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MikeMC777/nolimits-storefront/internal/storage"
)

var (
	ErrItemNotFound   = errors.New("cart item not found")
	ErrInvalidProduct = errors.New("invalid product id")
)

// Item is one cart line.
type Item struct {
	ProductID int64           `json:"idProducto"`
	Nombre    string          `json:"nombre"`
	Precio    decimal.Decimal `json:"precio"`
	Cantidad  int             `json:"cantidad"`
}

// Subtotal is precio × cantidad.
func (it Item) Subtotal() decimal.Decimal {
	return it.Precio.Mul(decimal.NewFromInt(int64(it.Cantidad)))
}

// Cart is not safe for concurrent use; callers serialize per session.
type Cart struct {
	store storage.KV
	log   *zap.Logger
	items []Item
}

// Load hydrates the cart from store. A missing or unreadable cart yields an
// empty one.
func Load(ctx context.Context, store storage.KV, log *zap.Logger) *Cart {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Cart{store: store, log: log, items: []Item{}}
	raw, err := store.Load(ctx, storage.KeyCart)
	if errors.Is(err, storage.ErrNotFound) {
		return c
	}
	if err != nil {
		log.Warn("cart: load failed, starting empty", zap.Error(err))
		return c
	}
	items, err := decodeItems(raw)
	if err != nil {
		log.Warn("cart: corrupt data, starting empty", zap.Error(err))
		return c
	}
	c.items = items
	return c
}

// decodeItems accepts what older clients wrote: numbers as strings, missing
// or zero quantities (read as 1) and the same product on several lines
// (merged).
func decodeItems(raw []byte) ([]Item, error) {
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	out := []Item{}
	index := map[int64]int{}
	for _, r := range rows {
		id := toInt(r["idProducto"])
		if id == 0 {
			continue
		}
		qty := int(toInt(r["cantidad"]))
		if qty <= 0 {
			qty = 1
		}
		if i, ok := index[id]; ok {
			out[i].Cantidad += qty
			continue
		}
		nombre, _ := r["nombre"].(string)
		index[id] = len(out)
		out = append(out, Item{ProductID: id, Nombre: nombre, Precio: toDecimal(r["precio"]), Cantidad: qty})
	}
	return out, nil
}

func toInt(v any) int64 {
	switch x := v.(type) {
	case float64:
		return int64(x)
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n
	}
	return 0
}

func toDecimal(v any) decimal.Decimal {
	switch x := v.(type) {
	case float64:
		return decimal.NewFromFloat(x)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err == nil {
			return d
		}
	}
	return decimal.Zero
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	return append([]Item{}, c.items...)
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Units is the number of articles, counting quantities.
func (c *Cart) Units() int {
	n := 0
	for _, it := range c.items {
		n += it.Cantidad
	}
	return n
}

func (c *Cart) find(id int64) int {
	for i, it := range c.items {
		if it.ProductID == id {
			return i
		}
	}
	return -1
}

// Add puts one unit of a product in the cart; a product already there gets
// its quantity increased.
func (c *Cart) Add(ctx context.Context, id int64, nombre string, precio decimal.Decimal) error {
	if id == 0 {
		return ErrInvalidProduct
	}
	if i := c.find(id); i >= 0 {
		c.items[i].Cantidad++
	} else {
		c.items = append(c.items, Item{ProductID: id, Nombre: nombre, Precio: precio, Cantidad: 1})
	}
	return c.persist(ctx)
}

func (c *Cart) Increment(ctx context.Context, id int64) error {
	i := c.find(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	c.items[i].Cantidad++
	return c.persist(ctx)
}

// Decrement removes one unit; the line goes away when none is left.
func (c *Cart) Decrement(ctx context.Context, id int64) error {
	i := c.find(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	if c.items[i].Cantidad <= 1 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	} else {
		c.items[i].Cantidad--
	}
	return c.persist(ctx)
}

func (c *Cart) Remove(ctx context.Context, id int64) error {
	i := c.find(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return c.persist(ctx)
}

func (c *Cart) Clear(ctx context.Context) error {
	c.items = []Item{}
	return c.persist(ctx)
}

func (c *Cart) persist(ctx context.Context) error {
	b, err := json.Marshal(c.items)
	if err != nil {
		return err
	}
	if err := c.store.Save(ctx, storage.KeyCart, b); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	if err := c.store.Save(ctx, storage.KeyCartTotal, []byte(c.Total().String())); err != nil {
		return fmt.Errorf("save cart total: %w", err)
	}
	return nil
}

// PageView is one page of the cart panel.
type PageView struct {
	Items      []Item `json:"items"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
}

// DefaultPageSize is how many lines the cart panel shows at once.
const DefaultPageSize = 5

// Page returns lines for a 1-based page. Out of range pages are clamped; an
// empty cart has one empty page.
func (c *Cart) Page(page, size int) PageView {
	if size < 1 {
		size = DefaultPageSize
	}
	pages := (len(c.items) + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := start + size
	if end > len(c.items) {
		end = len(c.items)
	}
	return PageView{Items: append([]Item{}, c.items[start:end]...), Page: page, TotalPages: pages}
}
