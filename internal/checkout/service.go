package checkout

import (
	"context"
	"log"

	"github.com/storefront-labs/storefront-backend/internal/cart"
	"github.com/storefront-labs/storefront-backend/internal/order"
	"github.com/storefront-labs/storefront-backend/internal/payment"
)

// Service orchestrates checkout: the store reserves stock and writes the
// pending order, then a payment session is opened with the gateway. Session
// creation is best effort; the reserved order survives a gateway outage and
// payment can be retried.
type Service struct {
	store      Store
	orders     *order.Service
	gateway    payment.Gateway
	successURL string
	cancelURL  string
	currency   string
}

func NewService(store Store, orders *order.Service, gateway payment.Gateway, successURL, cancelURL, currency string) *Service {
	return &Service{
		store:      store,
		orders:     orders,
		gateway:    gateway,
		successURL: successURL,
		cancelURL:  cancelURL,
		currency:   currency,
	}
}

// Checkout converts the cart into a pending order and returns the payment
// redirect URL. An empty URL with a nil error means the order was placed but
// the payment session could not be opened yet.
func (s *Service) Checkout(ctx context.Context, key cart.Key, shipping ShippingDetails) (order.Order, string, error) {
	if err := shipping.validate(); err != nil {
		return order.Order{}, "", err
	}

	o := order.Order{
		UserID:   key.UserID,
		Currency: s.currency,
		FullName: shipping.FullName,
		Email:    shipping.Email,
		Address:  shipping.Address,
		City:     shipping.City,
		Phone:    shipping.Phone,
	}

	created, err := s.store.CreateOrderFromCart(ctx, key, o)
	if err != nil {
		return order.Order{}, "", err
	}

	redirectURL, err := s.createSession(ctx, created)
	if err != nil {
		log.Printf("checkout: payment session for order %d failed: %v", created.ID, err)
		return created, "", nil
	}
	return created, redirectURL, nil
}

// RetryPaymentSession opens a fresh payment session for a pending order,
// for buyers whose first session expired or never came back from the
// gateway. Stock stays reserved throughout.
func (s *Service) RetryPaymentSession(ctx context.Context, orderID, userID int) (string, error) {
	o, err := s.orders.GetByID(orderID)
	if err != nil {
		return "", err
	}
	if o.UserID != userID {
		// hide existence of other users' orders
		return "", order.ErrNotFound
	}
	if o.Status != order.StatusPending {
		return "", ErrNotPayable
	}
	return s.createSession(ctx, o)
}

func (s *Service) createSession(ctx context.Context, o order.Order) (string, error) {
	items := make([]payment.SessionItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, payment.SessionItem{
			Name:       it.ProductName,
			UnitAmount: it.UnitPrice,
			Quantity:   it.Quantity,
		})
	}

	session, err := s.gateway.CreateSession(ctx, payment.SessionRequest{
		OrderID:    o.ID,
		Currency:   o.Currency,
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
		Items:      items,
	})
	if err != nil {
		return "", err
	}

	if err := s.orders.AttachPaymentRef(o.ID, session.ID); err != nil {
		log.Printf("checkout: attach payment ref %s to order %d: %v", session.ID, o.ID, err)
	}
	return session.RedirectURL, nil
}
