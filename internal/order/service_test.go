package order

import (
	"sync"
	"testing"
)

func newOrder() Order {
	return Order{
		UserID:   1,
		Currency: "USD",
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Address:  "1 Main St",
		City:     "Springfield",
		Phone:    "555-0101",
		Items: []Item{
			{ProductID: 1, ProductName: "Mug", UnitPrice: 1000, Quantity: 2},
			{ProductID: 2, ProductName: "Bowl", UnitPrice: 500, Quantity: 1},
		},
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	o := newOrder()
	o.Items = nil
	if _, err := svc.Create(o); err != ErrEmptyOrder {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}

	o = newOrder()
	o.Items[0].Quantity = 0
	if _, err := svc.Create(o); err != ErrInvalidQuantity {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}

	o = newOrder()
	o.Status = StatusPaid // callers cannot pick their own initial status
	created, err := svc.Create(o)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != StatusPending {
		t.Fatalf("expected pending, got %s", created.Status)
	}
	if created.ID == 0 {
		t.Fatalf("expected an assigned id")
	}
}

func TestTotalCost(t *testing.T) {
	o := newOrder()
	if got := TotalCost(o); got != 2500 {
		t.Fatalf("expected total 2500, got %d", got)
	}
}

func TestPriceSnapshotFrozen(t *testing.T) {
	svc := NewService(NewInMemoryRepository())
	created, err := svc.Create(newOrder())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// a later catalog price change has no handle on the stored items
	loaded, err := svc.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	loaded.Items[0].UnitPrice = 9999

	again, _ := svc.GetByID(created.ID)
	if got := TotalCost(again); got != 2500 {
		t.Fatalf("stored order total changed: %d", got)
	}
}

func TestMarkPaidIdempotent(t *testing.T) {
	svc := NewService(NewInMemoryRepository())
	created, _ := svc.Create(newOrder())

	transitioned, err := svc.MarkPaid(created.ID, "pi_123")
	if err != nil || !transitioned {
		t.Fatalf("first MarkPaid: transitioned=%v err=%v", transitioned, err)
	}

	// duplicate delivery with a different reference is a silent no-op
	transitioned, err = svc.MarkPaid(created.ID, "pi_456")
	if err != nil {
		t.Fatalf("duplicate MarkPaid: %v", err)
	}
	if transitioned {
		t.Fatalf("duplicate MarkPaid must not transition again")
	}

	o, _ := svc.GetByID(created.ID)
	if o.Status != StatusPaid {
		t.Fatalf("expected paid, got %s", o.Status)
	}
	if o.PaymentRef != "pi_123" {
		t.Fatalf("payment ref overwritten by duplicate: %s", o.PaymentRef)
	}
}

func TestMarkPaidErrors(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	if _, err := svc.MarkPaid(99, "pi_1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	created, _ := svc.Create(newOrder())
	if err := svc.Cancel(created.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.MarkPaid(created.ID, "pi_1"); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition for canceled order, got %v", err)
	}
}

func TestStateMachineEdges(t *testing.T) {
	svc := NewService(NewInMemoryRepository())
	created, _ := svc.Create(newOrder())

	// shipping before payment is rejected
	if err := svc.MarkShipped(created.ID); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if _, err := svc.MarkPaid(created.ID, "pi_1"); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	// paid orders cannot be canceled
	if err := svc.Cancel(created.ID); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if err := svc.MarkShipped(created.ID); err != nil {
		t.Fatalf("mark shipped: %v", err)
	}

	// shipped is terminal; a late webhook duplicate is still a no-op
	transitioned, err := svc.MarkPaid(created.ID, "pi_2")
	if err != nil || transitioned {
		t.Fatalf("late duplicate after shipping: transitioned=%v err=%v", transitioned, err)
	}
}

func TestConcurrentMarkPaidSingleTransition(t *testing.T) {
	svc := NewService(NewInMemoryRepository())
	created, _ := svc.Create(newOrder())

	const n = 16
	results := make(chan bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			transitioned, err := svc.MarkPaid(created.ID, "pi_1")
			if err != nil {
				t.Errorf("MarkPaid: %v", err)
				return
			}
			results <- transitioned
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for transitioned := range results {
		if transitioned {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one effective transition, got %d", wins)
	}
}

func TestCanTransitionTable(t *testing.T) {
	allowed := [][2]Status{
		{StatusPending, StatusPaid},
		{StatusPending, StatusCanceled},
		{StatusPaid, StatusShipped},
	}
	for _, edge := range allowed {
		if !CanTransition(edge[0], edge[1]) {
			t.Errorf("%s -> %s should be allowed", edge[0], edge[1])
		}
	}

	denied := [][2]Status{
		{StatusPaid, StatusPending},
		{StatusPaid, StatusCanceled},
		{StatusShipped, StatusCanceled},
		{StatusCanceled, StatusPaid},
		{StatusPending, StatusShipped},
	}
	for _, edge := range denied {
		if CanTransition(edge[0], edge[1]) {
			t.Errorf("%s -> %s must be rejected", edge[0], edge[1])
		}
	}
}
