package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	cartdom "agrifarm/internal/domain/cart"
	checkoutdom "agrifarm/internal/domain/checkout"
	orderdom "agrifarm/internal/domain/order"
	paymentdom "agrifarm/internal/domain/payment"
	profiledom "agrifarm/internal/domain/profile"
)

var (
	ErrCheckoutInvalidArgument = errors.New("checkout_usecase: invalid argument")
	ErrCheckoutInFlight        = errors.New("checkout_usecase: a checkout is already in flight")
	ErrCheckoutNoSession       = errors.New("checkout_usecase: no checkout session")
	ErrCheckoutBusy            = errors.New("checkout_usecase: operation already in progress")
)

// CheckoutUsecase drives the delivery -> payment -> confirmation flow.
//
// It holds at most one session per buyer; starting a new checkout while
// one is in flight is rejected. Session state is in-memory only:
// navigating away (Abandon) discards it, while any order already created
// stays pending/processing in durable storage for the out-of-band
// reconciliation job.
type CheckoutUsecase struct {
	cartUC    *CartUsecase
	orders    orderdom.Repository
	paymentUC *PaymentUsecase
	profiles  profiledom.Repository // may be nil (no prefill)
	clock     Clock

	// newID mints order ids; replaceable in tests.
	newID func() string

	mu       sync.Mutex
	sessions map[string]*checkoutdom.Session
	busy     map[string]bool // buyers with a submit in flight
}

func NewCheckoutUsecase(cartUC *CartUsecase, orders orderdom.Repository, paymentUC *PaymentUsecase, profiles profiledom.Repository) *CheckoutUsecase {
	return &CheckoutUsecase{
		cartUC:    cartUC,
		orders:    orders,
		paymentUC: paymentUC,
		profiles:  profiles,
		clock:     systemClock{},
		newID:     randomOrderID,
		sessions:  map[string]*checkoutdom.Session{},
		busy:      map[string]bool{},
	}
}

// NewCheckoutUsecaseWithClock is useful for tests.
func NewCheckoutUsecaseWithClock(cartUC *CartUsecase, orders orderdom.Repository, paymentUC *PaymentUsecase, profiles profiledom.Repository, clock Clock) *CheckoutUsecase {
	uc := NewCheckoutUsecase(cartUC, orders, paymentUC, profiles)
	if clock != nil {
		uc.clock = clock
	}
	return uc
}

// Start opens a checkout session at the delivery step, prefilled from the
// buyer's profile where available. Rejected while a previous session for
// the same buyer is still in flight.
func (uc *CheckoutUsecase) Start(ctx context.Context, buyerID string) (*checkoutdom.Session, error) {
	bid := strings.TrimSpace(buyerID)
	if bid == "" {
		return nil, ErrCheckoutInvalidArgument
	}

	uc.mu.Lock()
	if s, ok := uc.sessions[bid]; ok && !s.Done() {
		uc.mu.Unlock()
		return nil, ErrCheckoutInFlight
	}
	uc.mu.Unlock()

	c, err := uc.cartUC.Load(ctx, bid)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, checkoutdom.ErrEmptyCart
	}

	prefill := checkoutdom.DeliveryInfo{}
	if uc.profiles != nil {
		if p, err := uc.profiles.GetByID(ctx, bid); err == nil {
			prefill.FullName = p.FullName
			prefill.Phone = p.Phone
			prefill.Commune = p.Commune
		} else if !errors.Is(err, profiledom.ErrNotFound) {
			log.Printf("[checkout_uc] WARN: profile prefill failed buyerId=%s err=%v", bid, err)
		}
	}

	s, err := checkoutdom.NewSession(bid, c.Totals, prefill, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	uc.sessions[bid] = s
	uc.mu.Unlock()

	return s, nil
}

// Session returns the buyer's current session, if any.
func (uc *CheckoutUsecase) Session(buyerID string) (*checkoutdom.Session, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, ok := uc.sessions[strings.TrimSpace(buyerID)]
	if !ok {
		return nil, ErrCheckoutNoSession
	}
	return s, nil
}

// SubmitDelivery validates the delivery form and advances to payment.
// Validation failures never advance the step.
func (uc *CheckoutUsecase) SubmitDelivery(ctx context.Context, buyerID string, info checkoutdom.DeliveryInfo) (*checkoutdom.Session, error) {
	s, err := uc.Session(buyerID)
	if err != nil {
		return nil, err
	}
	if err := s.SubmitDelivery(info, uc.clock.Now()); err != nil {
		return nil, err
	}
	return s, nil
}

// BackToDelivery steps payment -> delivery, keeping entered fields.
func (uc *CheckoutUsecase) BackToDelivery(buyerID string) (*checkoutdom.Session, error) {
	s, err := uc.Session(buyerID)
	if err != nil {
		return nil, err
	}
	if err := s.BackToDelivery(); err != nil {
		return nil, err
	}
	return s, nil
}

// SubmitPaymentResult carries what the confirmation view needs.
type SubmitPaymentResult struct {
	OrderID    string                `json:"orderId"`
	Initiation paymentdom.Initiation `json:"payment"`
}

// SubmitPayment runs the payment step:
//
//  1. snapshot the live ledger and create the order (pending) with its
//     immutable line batch, atomically, BEFORE any gateway call;
//  2. hand the order id and final amount to the payment orchestrator;
//  3. on success clear the cart and advance to confirmation;
//  4. on failure keep the cart and stay in payment — the order remains
//     pending/processing in durable storage for later reconciliation.
//
// Re-submission while a submit is in flight is rejected.
func (uc *CheckoutUsecase) SubmitPayment(ctx context.Context, buyerID string, sel checkoutdom.PaymentSelection) (SubmitPaymentResult, error) {
	bid := strings.TrimSpace(buyerID)

	s, err := uc.Session(bid)
	if err != nil {
		return SubmitPaymentResult{}, err
	}

	uc.mu.Lock()
	if uc.busy[bid] {
		uc.mu.Unlock()
		return SubmitPaymentResult{}, ErrCheckoutBusy
	}
	uc.busy[bid] = true
	uc.mu.Unlock()
	defer func() {
		uc.mu.Lock()
		delete(uc.busy, bid)
		uc.mu.Unlock()
	}()

	if err := s.SelectPayment(sel); err != nil {
		return SubmitPaymentResult{}, err
	}
	sel = s.Selection

	c, err := uc.cartUC.Load(ctx, bid)
	if err != nil {
		return SubmitPaymentResult{}, err
	}
	if c.IsEmpty() {
		return SubmitPaymentResult{}, checkoutdom.ErrEmptyCart
	}

	o, lines, err := uc.buildOrder(c, s, sel)
	if err != nil {
		return SubmitPaymentResult{}, err
	}

	// ordering invariant: the order exists durably before the gateway is
	// invoked, never the reverse
	created, err := uc.orders.CreateWithItems(ctx, o, lines)
	if err != nil {
		log.Printf("[checkout_uc] order create failed buyerId=%s err=%v", bid, err)
		return SubmitPaymentResult{}, fmt.Errorf("checkout: order create: %w", err)
	}

	init, err := uc.paymentUC.Initiate(ctx, created.ID, created.FinalAmount, sel.Method, sel.Phone)
	if err != nil {
		// cart is NOT cleared; session stays in payment for retry
		log.Printf("[checkout_uc] payment initiation failed orderId=%s err=%v", created.ID, err)
		return SubmitPaymentResult{}, err
	}

	if _, err := uc.cartUC.Clear(ctx, bid); err != nil {
		// payment is under way; a stale cart is recoverable, log only
		log.Printf("[checkout_uc] WARN: cart clear failed after initiation buyerId=%s orderId=%s err=%v", bid, created.ID, err)
	}

	if err := s.Confirm(created.ID); err != nil {
		return SubmitPaymentResult{}, err
	}

	log.Printf("[checkout_uc] OK: order created and payment initiated buyerId=%s orderId=%s txn=%s", bid, created.ID, init.TransactionID)

	return SubmitPaymentResult{OrderID: created.ID, Initiation: init}, nil
}

// Abandon discards the in-memory session (navigating away mid-checkout).
// Orders already created are intentionally left untouched.
func (uc *CheckoutUsecase) Abandon(buyerID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.sessions, strings.TrimSpace(buyerID))
}

func (uc *CheckoutUsecase) buildOrder(c *cartdom.Cart, s *checkoutdom.Session, sel checkoutdom.PaymentSelection) (orderdom.Order, []orderdom.Item, error) {
	id := uc.newID()
	d := s.Delivery

	o, err := orderdom.New(
		id,
		s.BuyerID,
		c.FirstFarmerID(),
		c.Totals.Subtotal,
		c.Totals.Commission,
		c.Totals.DeliveryFee,
		c.Totals.FinalTotal,
		d.CombinedAddress(),
		d.Commune,
		d.Phone,
		d.DeliveryDate,
		d.Instructions,
		sel.Method,
		uc.clock.Now(),
	)
	if err != nil {
		return orderdom.Order{}, nil, err
	}

	lines := make([]orderdom.Item, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, orderdom.Item{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	items, err := orderdom.NewItems(id, lines)
	if err != nil {
		return orderdom.Order{}, nil, err
	}
	return o, items, nil
}

func randomOrderID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
