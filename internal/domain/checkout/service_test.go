// internal/domain/checkout/service_test.go
package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/domain/location"
	"github.com/your-org/storefront-gateway/internal/domain/pricing"
)

type fakeDirectory struct{}

func (fakeDirectory) Provinces(context.Context) ([]location.Place, error) {
	return []location.Place{{ID: 1, Name: "Hanoi"}, {ID: 2, Name: "Ho Chi Minh City"}}, nil
}

func (fakeDirectory) Districts(_ context.Context, provinceID uint) ([]location.Place, error) {
	return []location.Place{{ID: provinceID * 10, Name: "District"}}, nil
}

func (fakeDirectory) Wards(_ context.Context, districtID uint) ([]location.Place, error) {
	return []location.Place{{ID: districtID * 10, Name: "Ward"}}, nil
}

type fakeGateway struct {
	outcome  *OrderOutcome
	err      error
	payloads []*OrderPayload
}

func (g *fakeGateway) PlaceOrder(_ context.Context, payload *OrderPayload) (*OrderOutcome, error) {
	g.payloads = append(g.payloads, payload)
	if g.err != nil {
		return nil, g.err
	}
	return g.outcome, nil
}

type fixture struct {
	svc     *Service
	carts   *cart.Service
	gateway *fakeGateway
	locker  *MemoryLocker
	ref     cart.OwnerRef
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	carts := cart.NewServiceWithStores(cart.NewMemoryStore(), cart.NewMemoryStore())
	gateway := &fakeGateway{outcome: &OrderOutcome{Status: true}}
	locker := NewMemoryLocker()
	svc := NewService(carts, NewMemoryWizardStore(), fakeDirectory{}, gateway, locker, log)

	return &fixture{
		svc:     svc,
		carts:   carts,
		gateway: gateway,
		locker:  locker,
		ref:     cart.OwnerRef{SessionID: "sess-1"},
	}
}

func (f *fixture) addLine(t *testing.T, productID uint, size, color string, qty int, price string) {
	t.Helper()
	_, err := f.carts.AddLine(context.Background(), f.ref, cart.Line{
		ProductID: productID,
		Name:      "Shirt",
		UnitPrice: pricing.MustParse(price),
		Size:      size,
		Color:     color,
		Quantity:  qty,
	})
	if err != nil {
		t.Fatalf("AddLine() error = %v", err)
	}
}

// walks the wizard to step 2 with a chosen payment method.
func (f *fixture) reachPayment(t *testing.T, method PaymentMethod) {
	t.Helper()
	ctx := context.Background()

	if _, err := f.svc.Begin(ctx, f.ref); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if _, err := f.svc.SelectProvince(ctx, f.ref, 1); err != nil {
		t.Fatalf("SelectProvince() error = %v", err)
	}
	if _, err := f.svc.SelectDistrict(ctx, f.ref, 10); err != nil {
		t.Fatalf("SelectDistrict() error = %v", err)
	}
	if _, err := f.svc.SelectWard(ctx, f.ref, 100); err != nil {
		t.Fatalf("SelectWard() error = %v", err)
	}
	if _, err := f.svc.SubmitShipping(ctx, f.ref, validFields()); err != nil {
		t.Fatalf("SubmitShipping() error = %v", err)
	}
	if _, err := f.svc.ChoosePayment(ctx, f.ref, method); err != nil {
		t.Fatalf("ChoosePayment() error = %v", err)
	}
}

func TestBeginEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Begin(context.Background(), f.ref)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("Begin() error = %v, want ErrEmptyCart", err)
	}
}

func TestBeginResumesExistingWizard(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 1, "M", "red", 1, "100000")
	ctx := context.Background()

	if _, err := f.svc.SelectProvince(ctx, f.ref, 0); !errors.Is(err, ErrNoActiveCheckout) {
		t.Fatalf("SelectProvince() before Begin error = %v, want ErrNoActiveCheckout", err)
	}

	if _, err := f.svc.Begin(ctx, f.ref); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if _, err := f.svc.SelectProvince(ctx, f.ref, 1); err != nil {
		t.Fatalf("SelectProvince() error = %v", err)
	}

	state, err := f.svc.Begin(ctx, f.ref)
	if err != nil {
		t.Fatalf("second Begin() error = %v", err)
	}
	if state.Selection.ProvinceID != 1 {
		t.Errorf("province selection lost across Begin(): %+v", state.Selection)
	}
}

func TestSubmitBuildsOrderPayload(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 1, "M", "red", 2, "150000")
	f.addLine(t, 1, "L", "red", 1, "150000")
	f.addLine(t, 2, "", "", 3, "99000.50")
	f.reachPayment(t, PaymentCOD)

	result, err := f.svc.Submit(context.Background(), f.ref)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !result.Confirmed {
		t.Error("Submit() not confirmed for cod")
	}

	if len(f.gateway.payloads) != 1 {
		t.Fatalf("gateway received %d payloads, want 1", len(f.gateway.payloads))
	}
	got := f.gateway.payloads[0]

	want := &OrderPayload{
		Name:          "Nguyen Van A",
		Email:         "a@example.com",
		Phone:         "0901234567",
		Address:       "12 Ly Thuong Kiet, Ward, District, Hanoi",
		PaymentMethod: "cod",
		Details: []OrderDetail{
			{ProductID: 1, Price: pricing.MustParse("150000"), Qty: 2, Size: "M", Color: "red"},
			{ProductID: 1, Price: pricing.MustParse("150000"), Qty: 1, Size: "L", Color: "red"},
			{ProductID: 2, Price: pricing.MustParse("99000.50"), Qty: 3},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order payload mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitCODClearsCartImmediately(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 1, "M", "red", 1, "100000")
	f.reachPayment(t, PaymentCOD)
	ctx := context.Background()

	if _, err := f.svc.Submit(ctx, f.ref); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	qty, err := f.carts.TotalQuantity(ctx, f.ref)
	if err != nil {
		t.Fatalf("TotalQuantity() error = %v", err)
	}
	if qty != 0 {
		t.Errorf("cart quantity after cod order = %d, want 0", qty)
	}
	if _, err := f.svc.Begin(ctx, f.ref); !errors.Is(err, ErrEmptyCart) {
		t.Errorf("Begin() after cod order error = %v, want ErrEmptyCart", err)
	}
}

func TestSubmitVNPayKeepsCartUntilGatewayReturn(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 1, "M", "red", 2, "100000")
	f.reachPayment(t, PaymentVNPay)
	f.gateway.outcome = &OrderOutcome{Status: true, PaymentURL: "https://pay.example.com/tx/1"}
	ctx := context.Background()

	result, err := f.svc.Submit(ctx, f.ref)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.Confirmed {
		t.Error("vnpay submission reported confirmed before gateway return")
	}
	if result.RedirectURL != "https://pay.example.com/tx/1" {
		t.Errorf("redirect URL = %q", result.RedirectURL)
	}

	// Cart stays intact while the payment runs on the gateway.
	qty, _ := f.carts.TotalQuantity(ctx, f.ref)
	if qty != 2 {
		t.Fatalf("cart quantity during gateway payment = %d, want 2", qty)
	}

	// A failed gateway return changes nothing.
	cleared, err := f.svc.ConfirmGatewayReturn(ctx, f.ref, "24")
	if err != nil || cleared {
		t.Fatalf("ConfirmGatewayReturn(24) = (%v, %v), want (false, nil)", cleared, err)
	}
	if qty, _ = f.carts.TotalQuantity(ctx, f.ref); qty != 2 {
		t.Errorf("cart cleared on failed gateway return")
	}

	cleared, err = f.svc.ConfirmGatewayReturn(ctx, f.ref, GatewaySuccessCode)
	if err != nil || !cleared {
		t.Fatalf("ConfirmGatewayReturn(00) = (%v, %v), want (true, nil)", cleared, err)
	}
	if qty, _ = f.carts.TotalQuantity(ctx, f.ref); qty != 0 {
		t.Errorf("cart not cleared on successful gateway return, quantity = %d", qty)
	}
}

func TestSubmitRejectionLeavesStateIntact(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 1, "M", "red", 1, "100000")
	f.reachPayment(t, PaymentCOD)
	f.gateway.outcome = &OrderOutcome{Status: false, Message: "product out of stock"}
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.ref)
	var rerr *RejectionError
	if !errors.As(err, &rerr) {
		t.Fatalf("Submit() error = %v, want *RejectionError", err)
	}
	if rerr.Message != "product out of stock" {
		t.Errorf("rejection message = %q, want the server's message verbatim", rerr.Message)
	}

	// Step 2 and the cart survive so the user can retry.
	state, err := f.svc.Begin(ctx, f.ref)
	if err != nil {
		t.Fatalf("Begin() after rejection error = %v", err)
	}
	if state.Step != StepPayment {
		t.Errorf("step after rejection = %d, want payment", state.Step)
	}
	if qty, _ := f.carts.TotalQuantity(ctx, f.ref); qty != 1 {
		t.Errorf("cart changed by rejected submission, quantity = %d", qty)
	}
}

func TestSubmitConnectivityErrorPassedThrough(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 1, "M", "red", 1, "100000")
	f.reachPayment(t, PaymentCOD)
	f.gateway.err = &ConnectivityError{Err: errors.New("connection refused")}

	_, err := f.svc.Submit(context.Background(), f.ref)
	var cerr *ConnectivityError
	if !errors.As(err, &cerr) {
		t.Fatalf("Submit() error = %v, want *ConnectivityError", err)
	}
}

func TestSubmitSingleFlight(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 1, "M", "red", 1, "100000")
	f.reachPayment(t, PaymentCOD)
	ctx := context.Background()

	// Simulate a submission already holding the lock.
	if ok, _ := f.locker.TryLock(ctx, f.ref.SessionID); !ok {
		t.Fatal("could not take the lock")
	}
	if _, err := f.svc.Submit(ctx, f.ref); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("Submit() while locked error = %v, want ErrSubmitInFlight", err)
	}

	// Once the first submission settles, the next one goes through.
	f.locker.Unlock(ctx, f.ref.SessionID)
	if _, err := f.svc.Submit(ctx, f.ref); err != nil {
		t.Fatalf("Submit() after unlock error = %v", err)
	}
}

func TestSubmitGating(t *testing.T) {
	f := newFixture(t)
	f.addLine(t, 1, "M", "red", 1, "100000")
	ctx := context.Background()

	if _, err := f.svc.Begin(ctx, f.ref); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if _, err := f.svc.Submit(ctx, f.ref); !errors.Is(err, ErrNotOnPaymentStep) {
		t.Errorf("Submit() on step 1 error = %v, want ErrNotOnPaymentStep", err)
	}

	f.reachPayment(t, PaymentCOD)
	if _, err := f.svc.Back(ctx, f.ref); err != nil {
		t.Fatalf("Back() error = %v", err)
	}
	if _, err := f.svc.Submit(ctx, f.ref); !errors.Is(err, ErrNotOnPaymentStep) {
		t.Errorf("Submit() after Back() error = %v, want ErrNotOnPaymentStep", err)
	}
}
