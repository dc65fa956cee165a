// internal/domain/checkout/service.go
package checkout

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/domain/location"
	"github.com/your-org/storefront-gateway/internal/domain/pricing"
)

// OrderPayload is the order-creation request sent to the commerce API.
type OrderPayload struct {
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	Note          string        `json:"note"`
	PaymentMethod string        `json:"payment_method"`
	Details       []OrderDetail `json:"details"`
}

// OrderDetail is one flattened cart line in the order payload. Size and
// color travel with the line so the selected variant reaches the backend.
type OrderDetail struct {
	ProductID uint          `json:"product_id"`
	Price     pricing.Price `json:"price"`
	Qty       int           `json:"qty"`
	Size      string        `json:"size,omitempty"`
	Color     string        `json:"color,omitempty"`
}

// OrderOutcome is the commerce API's answer to an order creation.
type OrderOutcome struct {
	Status     bool   `json:"status"`
	PaymentURL string `json:"payment_url,omitempty"`
	Message    string `json:"message,omitempty"`
}

// OrderGateway places orders with the commerce API. Implementations must
// return a *ConnectivityError when no response was received.
type OrderGateway interface {
	PlaceOrder(ctx context.Context, payload *OrderPayload) (*OrderOutcome, error)
}

// State is the wizard view returned to the storefront after every step
// operation.
type State struct {
	Step      Step             `json:"step"`
	Fields    ShippingFields   `json:"fields"`
	Payment   PaymentMethod    `json:"payment,omitempty"`
	Provinces []location.Place `json:"provinces"`
	Districts []location.Place `json:"districts"`
	Wards     []location.Place `json:"wards"`
	Selection Selection        `json:"selection"`
	Totals    cart.Totals      `json:"totals"`
}

// Selection mirrors the current ids of the cascading selects.
type Selection struct {
	ProvinceID uint `json:"province_id"`
	DistrictID uint `json:"district_id"`
	WardID     uint `json:"ward_id"`
}

// SubmitResult describes how a successful submission ended.
type SubmitResult struct {
	Confirmed   bool   `json:"confirmed"`              // order done, cart cleared
	RedirectURL string `json:"redirect_url,omitempty"` // continue on the payment gateway
	Message     string `json:"message,omitempty"`
}

// GatewaySuccessCode is the response code the payment gateway sends back on
// a completed payment.
const GatewaySuccessCode = "00"

// Service orchestrates the checkout wizard and the terminal order
// submission.
type Service struct {
	carts   *cart.Service
	wizards WizardStore
	places  location.Directory
	orders  OrderGateway
	locker  Locker
	log     *logrus.Logger
}

// NewService creates a checkout service.
func NewService(carts *cart.Service, wizards WizardStore, places location.Directory, orders OrderGateway, locker Locker, log *logrus.Logger) *Service {
	return &Service{
		carts:   carts,
		wizards: wizards,
		places:  places,
		orders:  orders,
		locker:  locker,
		log:     log,
	}
}

// Begin enters (or resumes) the checkout flow. An empty cart makes checkout
// unreachable: ErrEmptyCart is returned and the caller redirects to the
// cart page without materializing any wizard state. The province list is
// loaded once, when the wizard is first created.
func (s *Service) Begin(ctx context.Context, ref cart.OwnerRef) (*State, error) {
	c, err := s.carts.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	w, err := s.wizards.Load(ctx, ref.SessionID)
	if err == ErrNoActiveCheckout {
		provinces, perr := s.places.Provinces(ctx)
		if perr != nil {
			return nil, perr
		}
		w = NewWizard(ref.SessionID, provinces)
		if err := s.wizards.Save(ctx, w); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return s.state(w, c), nil
}

// SubmitShipping stores the step-1 fields and attempts the transition to
// step 2. Validation failures keep the wizard on step 1 and are returned as
// a *ValidationError.
func (s *Service) SubmitShipping(ctx context.Context, ref cart.OwnerRef, fields ShippingFields) (*State, error) {
	w, c, err := s.load(ctx, ref)
	if err != nil {
		return nil, err
	}

	w.SetFields(fields)
	advanceErr := w.AdvanceToPayment()

	// Entered values are kept even when validation fails, so the user never
	// retypes them.
	if err := s.wizards.Save(ctx, w); err != nil {
		return nil, err
	}
	if advanceErr != nil {
		return nil, advanceErr
	}

	return s.state(w, c), nil
}

// SelectProvince records the selection, loads the province's districts and
// applies them under the selection's sequence tag. A load superseded by a
// newer selection is discarded.
func (s *Service) SelectProvince(ctx context.Context, ref cart.OwnerRef, provinceID uint) (*State, error) {
	w, c, err := s.load(ctx, ref)
	if err != nil {
		return nil, err
	}

	p, ok := location.Find(w.Provinces, provinceID)
	if !ok {
		return nil, ErrUnknownPlace
	}

	seq := w.SelectProvince(p)
	districts, err := s.places.Districts(ctx, provinceID)
	if err != nil {
		return nil, err
	}
	if !w.ApplyDistricts(seq, districts) {
		s.log.WithField("province_id", provinceID).Debug("discarded superseded district load")
	}

	if err := s.wizards.Save(ctx, w); err != nil {
		return nil, err
	}
	return s.state(w, c), nil
}

// SelectDistrict records the selection and loads the district's wards.
func (s *Service) SelectDistrict(ctx context.Context, ref cart.OwnerRef, districtID uint) (*State, error) {
	w, c, err := s.load(ctx, ref)
	if err != nil {
		return nil, err
	}

	seq, err := w.SelectDistrict(districtID)
	if err != nil {
		return nil, err
	}
	wards, err := s.places.Wards(ctx, districtID)
	if err != nil {
		return nil, err
	}
	if !w.ApplyWards(seq, wards) {
		s.log.WithField("district_id", districtID).Debug("discarded superseded ward load")
	}

	if err := s.wizards.Save(ctx, w); err != nil {
		return nil, err
	}
	return s.state(w, c), nil
}

// SelectWard records the final level of the location cascade.
func (s *Service) SelectWard(ctx context.Context, ref cart.OwnerRef, wardID uint) (*State, error) {
	w, c, err := s.load(ctx, ref)
	if err != nil {
		return nil, err
	}

	if err := w.SelectWard(wardID); err != nil {
		return nil, err
	}
	if err := s.wizards.Save(ctx, w); err != nil {
		return nil, err
	}
	return s.state(w, c), nil
}

// ChoosePayment records the payment method on step 2.
func (s *Service) ChoosePayment(ctx context.Context, ref cart.OwnerRef, method PaymentMethod) (*State, error) {
	w, c, err := s.load(ctx, ref)
	if err != nil {
		return nil, err
	}

	if err := w.ChoosePayment(method); err != nil {
		return nil, err
	}
	if err := s.wizards.Save(ctx, w); err != nil {
		return nil, err
	}
	return s.state(w, c), nil
}

// Back moves from step 2 to step 1 preserving all entered values.
func (s *Service) Back(ctx context.Context, ref cart.OwnerRef) (*State, error) {
	w, c, err := s.load(ctx, ref)
	if err != nil {
		return nil, err
	}

	w.Back()
	if err := s.wizards.Save(ctx, w); err != nil {
		return nil, err
	}
	return s.state(w, c), nil
}

// Submit performs the terminal order submission from step 2.
//
// On success with VNPay and a returned payment URL, the cart is deliberately
// NOT cleared: payment continues on the gateway and the cart is only cleared
// when the gateway redirects back with a success code (ConfirmGatewayReturn).
// Any other successful submission clears the cart immediately. Failures
// leave step 2 and the cart untouched so the user can retry.
func (s *Service) Submit(ctx context.Context, ref cart.OwnerRef) (*SubmitResult, error) {
	w, c, err := s.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if w.Step != StepPayment {
		return nil, ErrNotOnPaymentStep
	}
	if w.Payment == "" {
		return nil, ErrPaymentNotChosen
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	acquired, err := s.locker.TryLock(ctx, ref.SessionID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrSubmitInFlight
	}
	defer s.locker.Unlock(ctx, ref.SessionID)

	payload := s.buildPayload(w, c)
	outcome, err := s.orders.PlaceOrder(ctx, payload)
	if err != nil {
		return nil, err
	}
	if !outcome.Status {
		return nil, &RejectionError{Message: outcome.Message}
	}

	if w.Payment == PaymentVNPay && outcome.PaymentURL != "" {
		s.log.WithFields(logrus.Fields{
			"session_id": ref.SessionID,
			"lines":      len(c.Lines),
		}).Info("order placed, redirecting to payment gateway")
		return &SubmitResult{RedirectURL: outcome.PaymentURL, Message: outcome.Message}, nil
	}

	if err := s.finish(ctx, ref); err != nil {
		// The order exists upstream; failing to clear locally must not fail
		// the confirmation.
		s.log.WithError(err).Warn("failed to clear cart after order confirmation")
	}

	s.log.WithFields(logrus.Fields{
		"session_id":     ref.SessionID,
		"payment_method": w.Payment,
		"lines":          len(c.Lines),
	}).Info("order confirmed")

	return &SubmitResult{Confirmed: true, Message: outcome.Message}, nil
}

// ConfirmGatewayReturn handles the payment gateway's browser return. Only
// the gateway's success code clears the cart; any other code leaves it
// intact for another attempt.
func (s *Service) ConfirmGatewayReturn(ctx context.Context, ref cart.OwnerRef, responseCode string) (bool, error) {
	if responseCode != GatewaySuccessCode {
		return false, nil
	}
	if err := s.finish(ctx, ref); err != nil {
		return false, err
	}

	s.log.WithField("session_id", ref.SessionID).Info("gateway payment confirmed")
	return true, nil
}

func (s *Service) buildPayload(w *Wizard, c *cart.Cart) *OrderPayload {
	details := make([]OrderDetail, len(c.Lines))
	for i, line := range c.Lines {
		details[i] = OrderDetail{
			ProductID: line.ProductID,
			Price:     line.UnitPrice,
			Qty:       line.Quantity,
			Size:      line.Size,
			Color:     line.Color,
		}
	}

	return &OrderPayload{
		Name:          w.Fields.FullName,
		Email:         w.Fields.Email,
		Phone:         w.Fields.Phone,
		Address:       w.FullAddress(),
		Note:          w.Fields.Note,
		PaymentMethod: string(w.Payment),
		Details:       details,
	}
}

func (s *Service) finish(ctx context.Context, ref cart.OwnerRef) error {
	if err := s.carts.Clear(ctx, ref); err != nil {
		return err
	}
	return s.wizards.Drop(ctx, ref.SessionID)
}

func (s *Service) load(ctx context.Context, ref cart.OwnerRef) (*Wizard, *cart.Cart, error) {
	w, err := s.wizards.Load(ctx, ref.SessionID)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.carts.Get(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	return w, c, nil
}

func (s *Service) state(w *Wizard, c *cart.Cart) *State {
	return &State{
		Step:      w.Step,
		Fields:    w.Fields,
		Payment:   w.Payment,
		Provinces: w.Provinces,
		Districts: w.Districts,
		Wards:     w.Wards,
		Selection: Selection{
			ProvinceID: w.ProvinceID,
			DistrictID: w.DistrictID,
			WardID:     w.WardID,
		},
		Totals: c.CalculateTotals(),
	}
}
