package product

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound = errors.New("product not found")
	// ErrProductInUse is returned when deleting a product that order
	// history still references. Those rows are financial records, so the
	// delete is rejected rather than cascaded.
	ErrProductInUse = errors.New("product is referenced by existing orders")
	// ErrInsufficientStock is the catalog-level stock failure; the checkout
	// package wraps it with the offending product.
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Repository interface {
	ListAvailable(categoryID int) []Product
	ListBySeller(sellerID int) []Product
	GetByID(id int) (Product, error)
	Create(p Product) (Product, error)
	Update(id int, p Product) (Product, error)
	Delete(id int) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests
// and seeding local data.
type InMemoryRepository struct {
	mu         sync.RWMutex
	storage    []Product
	nextID     int
	referenced map[int]bool
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		storage:    make([]Product, 0, len(seed)),
		nextID:     1,
		referenced: make(map[int]bool),
	}

	maxID := 0
	for _, p := range seed {
		r.storage = append(r.storage, p)
		if p.ID > maxID {
			maxID = p.ID
		}
	}

	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) ListAvailable(categoryID int) []Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0)
	for _, p := range r.storage {
		if !p.Available {
			continue
		}
		if categoryID != 0 && p.CategoryID != categoryID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *InMemoryRepository) ListBySeller(sellerID int) []Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0)
	for _, p := range r.storage {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out
}

func (r *InMemoryRepository) GetByID(id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Create(p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
	}
	r.storage = append(r.storage, p)
	return p, nil
}

func (r *InMemoryRepository) Update(id int, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			p.ID = id
			r.storage[i] = p
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.referenced[id] {
		return ErrProductInUse
	}
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// DecrementStock reserves qty units, failing without mutation when stock is
// short. The checkout store calls this under its own transaction lock.
func (r *InMemoryRepository) DecrementStock(id, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			if r.storage[i].Stock < qty {
				return ErrInsufficientStock
			}
			r.storage[i].Stock -= qty
			return nil
		}
	}
	return ErrNotFound
}

// MarkReferenced records that order history references the product, which
// blocks deletion. The Postgres implementation derives this from order_items.
func (r *InMemoryRepository) MarkReferenced(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.referenced[id] = true
}
