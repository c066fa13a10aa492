package order

import "errors"

// Status is the order lifecycle state. Transitions only move forward:
// pending -> paid -> shipped, or pending -> canceled.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusShipped  Status = "shipped"
	StatusCanceled Status = "canceled"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order must have at least one item")
	ErrInvalidQuantity   = errors.New("order item quantity must be positive")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

var validTransitions = map[Status][]Status{
	StatusPending:  {StatusPaid, StatusCanceled},
	StatusPaid:     {StatusShipped},
	StatusShipped:  {},
	StatusCanceled: {},
}

// CanTransition reports whether moving from one status to another is a
// sanctioned edge of the state machine.
func CanTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Order is a durable record of a committed purchase. Shipping fields are a
// snapshot taken at creation time and never follow later profile edits.
type Order struct {
	ID         int    `json:"orderId"`
	UserID     int    `json:"userId,omitempty"`
	Status     Status `json:"status"`
	PaymentRef string `json:"paymentRef,omitempty"`
	Currency   string `json:"currency"`

	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Phone    string `json:"phone"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`

	Items []Item `json:"items"`
}

// Item is an order line. UnitPrice is copied from the catalog at order time
// and never re-read, so later price changes cannot touch order history.
type Item struct {
	ProductID   int    `json:"productId"`
	ProductName string `json:"productName"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
}

// Cost is the line total.
func (it Item) Cost() int64 {
	return it.UnitPrice * int64(it.Quantity)
}

// TotalCost sums the line totals in minor currency units.
func TotalCost(o Order) int64 {
	var total int64
	for _, it := range o.Items {
		total += it.Cost()
	}
	return total
}
