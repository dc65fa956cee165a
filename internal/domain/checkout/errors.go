// internal/domain/checkout/errors.go
package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyCart is returned when the checkout flow is entered with zero
	// cart lines; the caller redirects back to the cart page.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrNoActiveCheckout is returned for wizard operations before Begin.
	ErrNoActiveCheckout = errors.New("no active checkout session")

	// ErrSubmitInFlight is returned when a submission for this session is
	// already running; the submit control stays disabled until it settles.
	ErrSubmitInFlight = errors.New("order submission already in progress")

	// ErrNotOnPaymentStep guards the terminal actions of step 2.
	ErrNotOnPaymentStep = errors.New("checkout is not on the payment step")

	// ErrParentNotSelected is returned when a child location select is used
	// while its parent has no selection (the select is disabled).
	ErrParentNotSelected = errors.New("parent location not selected")

	// ErrUnknownPlace is returned when a selected id is not in the loaded
	// option list.
	ErrUnknownPlace = errors.New("unknown location id")

	// ErrUnknownPaymentMethod rejects methods outside cod/vnpay/momo.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")

	// ErrPaymentNotChosen blocks submission before a method is picked.
	ErrPaymentNotChosen = errors.New("payment method not chosen")
)

// ValidationError carries per-field messages for step-1 validation. It never
// reaches the network; the user corrects the fields and retries.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RejectionError is a business-rule rejection from the order API. The
// server-provided message is surfaced to the user verbatim.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

// ConnectivityError wraps a transport failure talking to the order API; no
// response was received, so a generic message is shown.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("could not reach the order service: %v", e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}
