package checkout

import (
	"context"
	"sort"
	"sync"

	"github.com/storefront-labs/storefront-backend/internal/cart"
	"github.com/storefront-labs/storefront-backend/internal/order"
	"github.com/storefront-labs/storefront-backend/internal/product"
)

// Store converts a cart into a pending order atomically: stock is reserved,
// the order is written with price snapshots, and the converted lines leave
// the cart, all or nothing.
type Store interface {
	CreateOrderFromCart(ctx context.Context, key cart.Key, o order.Order) (order.Order, error)
}

// InMemoryStore performs the conversion over the in-memory repositories. A
// single mutex stands in for the database transaction, so concurrent
// checkouts over the same stock serialize the same way.
type InMemoryStore struct {
	mu       sync.Mutex
	carts    *cart.InMemoryRepository
	products *product.InMemoryRepository
	orders   *order.Service
}

func NewInMemoryStore(carts *cart.InMemoryRepository, products *product.InMemoryRepository, orders *order.Service) *InMemoryStore {
	return &InMemoryStore{carts: carts, products: products, orders: orders}
}

func (s *InMemoryStore) CreateOrderFromCart(ctx context.Context, key cart.Key, o order.Order) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts.RawItems(key)
	if len(lines) == 0 {
		return order.Order{}, ErrEmptyCart
	}

	ids := make([]int, 0, len(lines))
	for pid := range lines {
		ids = append(ids, pid)
	}
	sort.Ints(ids)

	// Validate every line before touching stock so a late failure cannot
	// leave a partial reservation behind.
	items := make([]order.Item, 0, len(ids))
	for _, pid := range ids {
		qty := lines[pid]
		p, err := s.products.GetByID(pid)
		if err != nil {
			return order.Order{}, err
		}
		if !p.Available {
			return order.Order{}, &InsufficientStockError{ProductID: pid, Requested: qty, Available: 0}
		}
		if p.Stock < qty {
			return order.Order{}, &InsufficientStockError{ProductID: pid, Requested: qty, Available: p.Stock}
		}
		items = append(items, order.Item{
			ProductID:   pid,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    qty,
		})
	}

	o.Items = items
	created, err := s.orders.Create(o)
	if err != nil {
		return order.Order{}, err
	}

	for _, pid := range ids {
		if err := s.products.DecrementStock(pid, lines[pid]); err != nil {
			return order.Order{}, err
		}
	}
	s.carts.RemoveItems(key, ids)
	return created, nil
}
