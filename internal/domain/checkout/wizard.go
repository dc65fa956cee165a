// internal/domain/checkout/wizard.go
package checkout

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/your-org/storefront-gateway/internal/domain/location"
)

// Step identifies the checkout wizard step.
type Step int

const (
	StepShipping Step = 1 // contact + address + cascading location selects
	StepPayment  Step = 2 // payment method choice, terminal before submission
)

// PaymentMethod is one of the supported payment options.
type PaymentMethod string

const (
	PaymentCOD   PaymentMethod = "cod"
	PaymentVNPay PaymentMethod = "vnpay"
	PaymentMoMo  PaymentMethod = "momo"
)

// Valid reports whether the method is one of the supported options.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentVNPay || m == PaymentMoMo
}

// ShippingFields are the free-text fields of step 1. The location selects
// live on the wizard itself because they carry cascade state.
type ShippingFields struct {
	FullName    string `json:"full_name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,min=8,max=15"`
	AddressLine string `json:"address_line" validate:"required,max=255"`
	Note        string `json:"note" validate:"max=500"`
}

var validate = validator.New()

// Wizard is the per-session checkout state. It survives across requests in
// the wizard store and is dropped together with the cart once an order is
// confirmed.
type Wizard struct {
	SessionID string         `json:"session_id"`
	Step      Step           `json:"step"`
	Fields    ShippingFields `json:"fields"`
	Payment   PaymentMethod  `json:"payment"`

	// Location cascade. Selecting a parent bumps Seq; option lists are
	// applied only when tagged with the current Seq, so a load that was in
	// flight when the parent changed again is discarded.
	Seq          uint64           `json:"seq"`
	ProvinceID   uint             `json:"province_id"`
	ProvinceName string           `json:"province_name"`
	DistrictID   uint             `json:"district_id"`
	DistrictName string           `json:"district_name"`
	WardID       uint             `json:"ward_id"`
	WardName     string           `json:"ward_name"`
	Provinces    []location.Place `json:"provinces"`
	Districts    []location.Place `json:"districts"`
	Wards        []location.Place `json:"wards"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewWizard starts a checkout at step 1 with the province list loaded once.
func NewWizard(sessionID string, provinces []location.Place) *Wizard {
	now := time.Now().UTC()
	return &Wizard{
		SessionID: sessionID,
		Step:      StepShipping,
		Provinces: provinces,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetFields stores the free-text shipping fields without validating; the
// user may save partial input and come back.
func (w *Wizard) SetFields(fields ShippingFields) {
	w.Fields = fields
	w.touch()
}

// SelectProvince records a province selection. The district and ward
// selections and their option lists are reset: a stale child selection must
// never survive a parent change. Returns the sequence tag the caller must
// present when applying the loaded district list.
func (w *Wizard) SelectProvince(p location.Place) uint64 {
	w.ProvinceID = p.ID
	w.ProvinceName = p.Name
	w.DistrictID = 0
	w.DistrictName = ""
	w.WardID = 0
	w.WardName = ""
	w.Districts = nil
	w.Wards = nil
	w.Seq++
	w.touch()
	return w.Seq
}

// ApplyDistricts installs a loaded district list. The list is discarded when
// its sequence tag is stale, i.e. the province changed again while the load
// was in flight; the last selected province wins.
func (w *Wizard) ApplyDistricts(seq uint64, districts []location.Place) bool {
	if seq != w.Seq {
		return false
	}
	w.Districts = districts
	w.touch()
	return true
}

// SelectDistrict records a district selection and resets the ward. Fails
// when no province is selected (the district select is disabled) or the
// district does not belong to the loaded list.
func (w *Wizard) SelectDistrict(id uint) (uint64, error) {
	if w.ProvinceID == 0 {
		return 0, ErrParentNotSelected
	}
	d, ok := location.Find(w.Districts, id)
	if !ok {
		return 0, ErrUnknownPlace
	}

	w.DistrictID = d.ID
	w.DistrictName = d.Name
	w.WardID = 0
	w.WardName = ""
	w.Wards = nil
	w.Seq++
	w.touch()
	return w.Seq, nil
}

// ApplyWards installs a loaded ward list, discarding stale loads.
func (w *Wizard) ApplyWards(seq uint64, wards []location.Place) bool {
	if seq != w.Seq {
		return false
	}
	w.Wards = wards
	w.touch()
	return true
}

// SelectWard records a ward selection. Fails when no district is selected
// or the ward is not in the loaded list.
func (w *Wizard) SelectWard(id uint) error {
	if w.DistrictID == 0 {
		return ErrParentNotSelected
	}
	ward, ok := location.Find(w.Wards, id)
	if !ok {
		return ErrUnknownPlace
	}

	w.WardID = ward.ID
	w.WardName = ward.Name
	w.touch()
	return nil
}

// AdvanceToPayment validates the step-1 subset (contact fields plus the full
// address chain) and moves to step 2. A validation failure keeps the wizard
// on step 1 and reports per-field errors; no network call is involved.
func (w *Wizard) AdvanceToPayment() error {
	fields := map[string]string{}

	if err := validate.Struct(w.Fields); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields[fieldName(fe)] = fieldMessage(fe)
			}
		} else {
			return err
		}
	}

	if w.ProvinceID == 0 {
		fields["province_id"] = "province is required"
	}
	if w.DistrictID == 0 {
		fields["district_id"] = "district is required"
	}
	if w.WardID == 0 {
		fields["ward_id"] = "ward is required"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	w.Step = StepPayment
	w.touch()
	return nil
}

// ChoosePayment records the payment method. Only meaningful on step 2.
func (w *Wizard) ChoosePayment(method PaymentMethod) error {
	if w.Step != StepPayment {
		return ErrNotOnPaymentStep
	}
	if !method.Valid() {
		return ErrUnknownPaymentMethod
	}
	w.Payment = method
	w.touch()
	return nil
}

// Back returns to step 1. Every previously entered value is preserved.
func (w *Wizard) Back() {
	w.Step = StepShipping
	w.touch()
}

// FullAddress concatenates the address line with the resolved ward,
// district and province names into the single address string the order API
// expects.
func (w *Wizard) FullAddress() string {
	addr := w.Fields.AddressLine
	for _, part := range []string{w.WardName, w.DistrictName, w.ProvinceName} {
		if part != "" {
			addr += ", " + part
		}
	}
	return addr
}

func (w *Wizard) touch() {
	w.UpdatedAt = time.Now().UTC()
}

func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "FullName":
		return "full_name"
	case "Email":
		return "email"
	case "Phone":
		return "phone"
	case "AddressLine":
		return "address_line"
	case "Note":
		return "note"
	default:
		return fe.Field()
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "too short"
	case "max":
		return "too long"
	default:
		return "invalid value"
	}
}
