package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m3rciful/shopbot/core/telegram/state"
	"github.com/m3rciful/shopbot/internal/domain"
)

type fakeProducts struct {
	byID map[string]domain.Product
}

func (f *fakeProducts) Load(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProducts) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeProducts) Append(ctx context.Context, p domain.Product) (domain.Product, error) {
	f.byID[p.ID] = p
	return p, nil
}

type fakeOrders struct {
	appended  []domain.Order
	appendErr error
}

func (f *fakeOrders) Load(ctx context.Context) ([]domain.Order, error) {
	return f.appended, nil
}

func (f *fakeOrders) Append(ctx context.Context, o domain.Order) (domain.Order, error) {
	if f.appendErr != nil {
		return domain.Order{}, f.appendErr
	}
	o.ID = "1"
	f.appended = append(f.appended, o)
	return o, nil
}

func newFlow(t *testing.T) (*Service, *fakeOrders, state.Manager) {
	t.Helper()
	products := &fakeProducts{byID: map[string]domain.Product{
		"1": {ID: "1", Name: "Widget", Description: "A fine widget", ImageURL: "http://img/1.png"},
	}}
	orders := &fakeOrders{}
	sessions := state.NewMemoryManager(time.Minute)
	return New(products, orders, sessions), orders, sessions
}

func username(s string) *string { return &s }

func TestFullOrderFlow(t *testing.T) {
	flow, orders, sessions := newFlow(t)
	ctx := context.Background()
	const userID int64 = 100

	p, err := flow.Select(ctx, userID, "1")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if p.Name != "Widget" {
		t.Fatalf("Select product = %+v", p)
	}
	if got := sessions.GetState(userID); got != StateShown {
		t.Fatalf("state after select = %q", got)
	}

	if _, err := flow.Proceed(ctx, userID, "1"); err != nil {
		t.Fatalf("Proceed: %v", err)
	}
	if got := sessions.GetState(userID); got != StatePending {
		t.Fatalf("state after proceed = %q", got)
	}

	order, err := flow.Confirm(ctx, Customer{ID: userID, Username: username("alice")}, "1")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if order.ProductID != "1" || order.ProductName != "Widget" || order.UserID != userID {
		t.Fatalf("order = %+v", order)
	}
	if len(orders.appended) != 1 {
		t.Fatalf("appended %d orders, want 1", len(orders.appended))
	}
	if sessions.InProgress(userID) {
		t.Fatal("session should be idle after confirmation")
	}
}

func TestSelectUnknownProduct(t *testing.T) {
	flow, orders, sessions := newFlow(t)

	_, err := flow.Select(context.Background(), 100, "99")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("error = %v, want ErrProductNotFound", err)
	}
	if len(orders.appended) != 0 {
		t.Fatal("no order must be written for an unknown product")
	}
	if sessions.InProgress(100) {
		t.Fatal("user must stay idle")
	}
}

func TestProceedAfterProductRemoved(t *testing.T) {
	products := &fakeProducts{byID: map[string]domain.Product{
		"1": {ID: "1", Name: "Widget"},
	}}
	orders := &fakeOrders{}
	sessions := state.NewMemoryManager(time.Minute)
	flow := New(products, orders, sessions)
	ctx := context.Background()

	if _, err := flow.Select(ctx, 100, "1"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	delete(products.byID, "1")

	_, err := flow.Proceed(ctx, 100, "1")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("error = %v, want ErrProductNotFound", err)
	}
	if sessions.InProgress(100) {
		t.Fatal("user must return to idle when the product disappears")
	}
	if _, err := flow.Confirm(ctx, Customer{ID: 100}, "1"); !errors.Is(err, domain.ErrStaleAction) {
		t.Fatalf("confirm after reset = %v, want ErrStaleAction", err)
	}
}

func TestConfirmWithoutPendingIsStale(t *testing.T) {
	flow, orders, _ := newFlow(t)
	ctx := context.Background()

	// Never proceeded: a bare confirm is stale.
	if _, err := flow.Confirm(ctx, Customer{ID: 100}, "1"); !errors.Is(err, domain.ErrStaleAction) {
		t.Fatalf("error = %v, want ErrStaleAction", err)
	}
	if len(orders.appended) != 0 {
		t.Fatal("stale confirm must not write an order")
	}
}

func TestDoubleConfirmProducesOneOrder(t *testing.T) {
	flow, orders, _ := newFlow(t)
	ctx := context.Background()
	cust := Customer{ID: 100, Username: username("alice")}

	if _, err := flow.Select(ctx, 100, "1"); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.Proceed(ctx, 100, "1"); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.Confirm(ctx, cust, "1"); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if _, err := flow.Confirm(ctx, cust, "1"); !errors.Is(err, domain.ErrStaleAction) {
		t.Fatalf("second confirm = %v, want ErrStaleAction", err)
	}
	if len(orders.appended) != 1 {
		t.Fatalf("appended %d orders, want exactly 1", len(orders.appended))
	}
}

func TestConfirmAppendFailure(t *testing.T) {
	flow, orders, sessions := newFlow(t)
	orders.appendErr = domain.ErrBackendUnavailable
	ctx := context.Background()

	if _, err := flow.Select(ctx, 100, "1"); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.Proceed(ctx, 100, "1"); err != nil {
		t.Fatal(err)
	}
	_, err := flow.Confirm(ctx, Customer{ID: 100}, "1")
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("error = %v, want ErrBackendUnavailable", err)
	}
	if len(orders.appended) != 0 {
		t.Fatal("failed append must leave no order")
	}
	if sessions.InProgress(100) {
		t.Fatal("failed confirm must reset the session")
	}
}

func TestOrderSnapshotsProductName(t *testing.T) {
	products := &fakeProducts{byID: map[string]domain.Product{
		"1": {ID: "1", Name: "Widget"},
	}}
	orders := &fakeOrders{}
	sessions := state.NewMemoryManager(time.Minute)
	flow := New(products, orders, sessions)
	ctx := context.Background()

	if _, err := flow.Select(ctx, 100, "1"); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.Proceed(ctx, 100, "1"); err != nil {
		t.Fatal(err)
	}
	order, err := flow.Confirm(ctx, Customer{ID: 100}, "1")
	if err != nil {
		t.Fatal(err)
	}

	// Rename after confirmation; the recorded snapshot must not move.
	products.byID["1"] = domain.Product{ID: "1", Name: "Gadget"}
	if order.ProductName != "Widget" {
		t.Fatalf("order snapshot = %q, want Widget", order.ProductName)
	}
	if orders.appended[0].ProductName != "Widget" {
		t.Fatalf("stored snapshot = %q, want Widget", orders.appended[0].ProductName)
	}
}
