package checkout

import (
	"errors"
	"strings"
	"time"

	cartdom "agrifarm/internal/domain/cart"
)

// Step is the checkout position. The flow is linear
// (delivery -> payment -> confirmation); the only backward transition is
// payment -> delivery.
type Step string

const (
	StepDelivery     Step = "delivery"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

var (
	ErrInvalidSession  = errors.New("checkout: invalid session")
	ErrEmptyCart       = errors.New("checkout: cart is empty")
	ErrWrongStep       = errors.New("checkout: operation not allowed in current step")
	ErrOrderIDRequired = errors.New("checkout: order id required for confirmation")
)

// Session is one buyer's in-flight checkout. It holds the totals snapshot
// taken when checkout started, the delivery info entered so far, and the
// payment selection. The session never talks to persistence itself; the
// application layer drives it.
type Session struct {
	BuyerID string `json:"buyerId"`
	Step    Step   `json:"step"`

	// TotalsSnapshot is the ledger's totals at checkout start,
	// for display; the order is priced from the live ledger at payment
	// submission.
	TotalsSnapshot cartdom.Totals `json:"totals"`

	Delivery  DeliveryInfo     `json:"delivery"`
	Selection PaymentSelection `json:"payment"`

	// OrderID is set when the session reaches confirmation.
	OrderID string `json:"orderId,omitempty"`

	StartedAt time.Time `json:"startedAt"`
}

// NewSession starts a checkout at the delivery step. prefill typically
// comes from the buyer's profile (name, phone, commune); every field
// stays editable. An empty cart cannot enter checkout.
func NewSession(buyerID string, totals cartdom.Totals, prefill DeliveryInfo, now time.Time) (*Session, error) {
	bid := strings.TrimSpace(buyerID)
	if bid == "" {
		return nil, ErrInvalidSession
	}
	if totals.Subtotal <= 0 {
		return nil, ErrEmptyCart
	}

	return &Session{
		BuyerID:        bid,
		Step:           StepDelivery,
		TotalsSnapshot: totals,
		Delivery:       prefill.Normalize(),
		StartedAt:      now,
	}, nil
}

// SubmitDelivery validates info and advances delivery -> payment. No
// transition happens on partial input; the session keeps its previous
// delivery fields on failure.
func (s *Session) SubmitDelivery(info DeliveryInfo, now time.Time) error {
	if s == nil {
		return ErrInvalidSession
	}
	if s.Step != StepDelivery {
		return ErrWrongStep
	}
	if err := info.Validate(now); err != nil {
		return err
	}
	s.Delivery = info.Normalize()
	s.Step = StepPayment
	return nil
}

// BackToDelivery returns from payment to delivery, preserving every
// previously entered field.
func (s *Session) BackToDelivery() error {
	if s == nil {
		return ErrInvalidSession
	}
	if s.Step != StepPayment {
		return ErrWrongStep
	}
	s.Step = StepDelivery
	return nil
}

// SelectPayment records the payment method while on the payment step.
func (s *Session) SelectPayment(sel PaymentSelection) error {
	if s == nil {
		return ErrInvalidSession
	}
	if s.Step != StepPayment {
		return ErrWrongStep
	}
	if err := sel.Validate(); err != nil {
		return err
	}
	s.Selection = sel.Normalize()
	return nil
}

// Confirm advances payment -> confirmation, carrying the order id for the
// confirmation view. Only the application layer calls this, after the
// order exists durably and payment initiation succeeded.
func (s *Session) Confirm(orderID string) error {
	if s == nil {
		return ErrInvalidSession
	}
	if s.Step != StepPayment {
		return ErrWrongStep
	}
	oid := strings.TrimSpace(orderID)
	if oid == "" {
		return ErrOrderIDRequired
	}
	s.OrderID = oid
	s.Step = StepConfirmation
	return nil
}

// Done reports whether the session reached confirmation.
func (s *Session) Done() bool {
	return s != nil && s.Step == StepConfirmation
}
