package order

import "time"

// Service owns the order ledger: creation in the pending state and the
// sanctioned status transitions. No other path writes order status.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new order in the pending state with its line items.
func (s *Service) Create(o Order) (Order, error) {
	if len(o.Items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	for _, it := range o.Items {
		if it.Quantity <= 0 {
			return Order{}, ErrInvalidQuantity
		}
	}

	o.Status = StatusPending
	if o.CreatedAt == "" {
		o.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if o.UpdatedAt == "" {
		o.UpdatedAt = o.CreatedAt
	}
	return s.repo.Create(o)
}

// MarkPaid transitions pending->paid and records the payment reference.
// It is idempotent: a second call for an already-paid order reports
// transitioned=false and triggers nothing further.
func (s *Service) MarkPaid(id int, paymentRef string) (bool, error) {
	return s.repo.MarkPaid(id, paymentRef)
}

// MarkShipped is used by fulfillment tooling once a paid order leaves the
// warehouse.
func (s *Service) MarkShipped(id int) error {
	return s.repo.UpdateStatus(id, StatusPaid, StatusShipped)
}

// Cancel voids a pending order. Paid orders cannot be canceled here.
func (s *Service) Cancel(id int) error {
	return s.repo.UpdateStatus(id, StatusPending, StatusCanceled)
}

func (s *Service) GetByID(id int) (Order, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListByUser(userID int) ([]Order, error) {
	return s.repo.ListByUser(userID)
}

// AttachPaymentRef stores the gateway session reference on a pending order.
// Best effort: checkout retries session creation without touching stock.
func (s *Service) AttachPaymentRef(id int, ref string) error {
	return s.repo.AttachPaymentRef(id, ref)
}
