package order

import (
	"sort"
	"sync"
	"time"
)

type Repository interface {
	Create(o Order) (Order, error)
	GetByID(id int) (Order, error)
	ListByUser(userID int) ([]Order, error)
	// MarkPaid applies the pending->paid transition as a compare-and-set on
	// the current status. It reports whether the transition happened this
	// call: an already-paid (or shipped) order is a no-op duplicate, a
	// canceled order is ErrInvalidTransition.
	MarkPaid(id int, paymentRef string) (bool, error)
	// UpdateStatus applies from->to atomically, failing with
	// ErrInvalidTransition when the order is not in the expected state.
	UpdateStatus(id int, from, to Status) error
	AttachPaymentRef(id int, ref string) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[int]Order
	nextID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		orders: make(map[int]Order),
		nextID: 1,
	}
}

func (r *InMemoryRepository) Create(o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.ID == 0 {
		o.ID = r.nextID
		r.nextID++
	} else if o.ID >= r.nextID {
		r.nextID = o.ID + 1
	}

	// items are copied so callers cannot mutate stored history
	items := make([]Item, len(o.Items))
	copy(items, o.Items)
	o.Items = items

	r.orders[o.ID] = o
	return o, nil
}

func (r *InMemoryRepository) GetByID(id int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (r *InMemoryRepository) ListByUser(userID int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) MarkPaid(id int, paymentRef string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return false, ErrNotFound
	}

	switch o.Status {
	case StatusPending:
		o.Status = StatusPaid
		o.PaymentRef = paymentRef
		o.UpdatedAt = now()
		r.orders[id] = o
		return true, nil
	case StatusPaid, StatusShipped:
		// duplicate delivery, already settled
		return false, nil
	default:
		return false, ErrInvalidTransition
	}
}

func (r *InMemoryRepository) UpdateStatus(id int, from, to Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	if o.Status != from {
		return ErrInvalidTransition
	}

	o.Status = to
	o.UpdatedAt = now()
	r.orders[id] = o
	return nil
}

func (r *InMemoryRepository) AttachPaymentRef(id int, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentRef = ref
	o.UpdatedAt = now()
	r.orders[id] = o
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
