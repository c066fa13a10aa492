package cart

import (
	"sort"
	"sync"

	"github.com/storefront-labs/storefront-backend/internal/product"
)

// Catalog is the read side of the product catalog the cart needs for
// enriching lines with names and prices.
type Catalog interface {
	GetByID(id int) (product.Product, error)
}

// Repository provides access to cart contents. Quantities merge on add;
// adds with a non-positive resulting quantity remove the line.
type Repository interface {
	AddItem(key Key, productID, qty int) ([]Item, error)
	Items(key Key) ([]Item, error)
	Clear(key Key) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu      sync.RWMutex
	carts   map[Key]map[int]int
	catalog Catalog
}

func NewInMemoryRepository(catalog Catalog) *InMemoryRepository {
	return &InMemoryRepository{
		carts:   make(map[Key]map[int]int),
		catalog: catalog,
	}
}

func (r *InMemoryRepository) AddItem(key Key, productID, qty int) ([]Item, error) {
	if !key.valid() {
		return nil, ErrInvalidKey
	}

	r.mu.Lock()
	lines, ok := r.carts[key]
	if !ok {
		lines = make(map[int]int)
		r.carts[key] = lines
	}
	lines[productID] += qty
	if lines[productID] <= 0 {
		delete(lines, productID)
	}
	r.mu.Unlock()

	return r.Items(key)
}

func (r *InMemoryRepository) Items(key Key) ([]Item, error) {
	if !key.valid() {
		return nil, ErrInvalidKey
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.itemsLocked(key)
}

func (r *InMemoryRepository) itemsLocked(key Key) ([]Item, error) {
	lines := r.carts[key]
	out := make([]Item, 0, len(lines))
	for pid, qty := range lines {
		p, err := r.catalog.GetByID(pid)
		if err != nil {
			continue
		}
		out = append(out, Item{
			ProductID: pid,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  qty,
			Subtotal:  p.Price * int64(qty),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *InMemoryRepository) Clear(key Key) error {
	if !key.valid() {
		return ErrInvalidKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, key)
	return nil
}

// RawItems returns the (productID, quantity) pairs for a cart. The checkout
// store reads these under its own lock when converting a cart to an order.
func (r *InMemoryRepository) RawItems(key Key) map[int]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int]int, len(r.carts[key]))
	for pid, qty := range r.carts[key] {
		out[pid] = qty
	}
	return out
}

// RemoveItems drops the given products from a cart, leaving other lines
// untouched.
func (r *InMemoryRepository) RemoveItems(key Key, productIDs []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := r.carts[key]
	for _, pid := range productIDs {
		delete(lines, pid)
	}
}
