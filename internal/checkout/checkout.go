package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidShipping = errors.New("shipping details are incomplete")
	// ErrNotPayable is returned when a payment session is requested for an
	// order that is no longer awaiting payment.
	ErrNotPayable = errors.New("order is not awaiting payment")
)

// InsufficientStockError aborts the whole checkout; no order or stock
// mutation survives it.
type InsufficientStockError struct {
	ProductID int
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// ShippingDetails is captured as an immutable snapshot on the order,
// independent of later profile edits.
type ShippingDetails struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Phone    string `json:"phone"`
}

func (d ShippingDetails) validate() error {
	if d.FullName == "" || d.Email == "" || d.Address == "" || d.City == "" {
		return ErrInvalidShipping
	}
	return nil
}
