package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	orderdom "agrifarm/internal/domain/order"
	paymentdom "agrifarm/internal/domain/payment"
)

var (
	ErrPaymentOrderIDEmpty       = errors.New("payment_usecase: orderId is empty")
	ErrPaymentAmountInvalid      = errors.New("payment_usecase: amount is invalid")
	ErrPaymentTransactionIDEmpty = errors.New("payment_usecase: transactionId is empty")
)

// CompletionNotifier is the outbound hook invoked when reconciliation
// moves an order into completed (farmer notification, stock adjustment).
// Implementations are best-effort; the orchestrator logs and continues on
// failure.
type CompletionNotifier interface {
	OrderCompleted(ctx context.Context, o orderdom.Order) error
}

// PaymentUsecase orchestrates the gateway:
//   - Initiate: create transaction, start the method-specific flow, link
//     the transaction reference onto the order (pending -> processing).
//   - Reconcile: re-verify a callback against the gateway and write the
//     mapped status onto the matching order.
type PaymentUsecase struct {
	orders   orderdom.Repository
	gateway  paymentdom.Gateway
	notifier CompletionNotifier // may be nil
	clock    Clock
}

func NewPaymentUsecase(orders orderdom.Repository, gateway paymentdom.Gateway, notifier CompletionNotifier) *PaymentUsecase {
	return &PaymentUsecase{
		orders:   orders,
		gateway:  gateway,
		notifier: notifier,
		clock:    systemClock{},
	}
}

// NewPaymentUsecaseWithClock is useful for tests.
func NewPaymentUsecaseWithClock(orders orderdom.Repository, gateway paymentdom.Gateway, notifier CompletionNotifier, clock Clock) *PaymentUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &PaymentUsecase{orders: orders, gateway: gateway, notifier: notifier, clock: clock}
}

// Initiate dispatches the method-specific gateway flow for an existing
// pending order. The order MUST already exist durably (the ordering
// invariant); on success it carries the transaction reference and status
// processing before this returns.
func (uc *PaymentUsecase) Initiate(
	ctx context.Context,
	orderID string,
	amount int64,
	method orderdom.PaymentMethod,
	phone string,
) (paymentdom.Initiation, error) {
	oid := strings.TrimSpace(orderID)
	if oid == "" {
		return paymentdom.Initiation{}, ErrPaymentOrderIDEmpty
	}
	if amount <= 0 {
		return paymentdom.Initiation{}, ErrPaymentAmountInvalid
	}

	switch method {
	case orderdom.MethodMobileMoney, orderdom.MethodCard:
	default:
		// wallet is an unimplemented placeholder; reject before any
		// gateway call
		return paymentdom.Initiation{}, paymentdom.ErrUnsupportedMethod
	}

	description := fmt.Sprintf("Commande AgriFarm #%s", oid)

	tx, err := uc.gateway.CreateTransaction(ctx, amount, description, phone)
	if err != nil {
		log.Printf("[payment_uc] gateway create failed orderId=%s err=%v", oid, err)
		return paymentdom.Initiation{}, fmt.Errorf("%w: create transaction: %v", paymentdom.ErrGateway, err)
	}

	init := paymentdom.Initiation{
		TransactionID: tx.ID,
		Status:        orderdom.PaymentPending,
	}

	switch method {
	case orderdom.MethodMobileMoney:
		if err := uc.gateway.SendPush(ctx, tx.ID); err != nil {
			log.Printf("[payment_uc] push failed orderId=%s txn=%s err=%v", oid, tx.ID, err)
			return paymentdom.Initiation{}, fmt.Errorf("%w: send push: %v", paymentdom.ErrGateway, err)
		}
	case orderdom.MethodCard:
		url, err := uc.gateway.HostedPaymentURL(ctx, tx.ID)
		if err != nil {
			log.Printf("[payment_uc] hosted page failed orderId=%s txn=%s err=%v", oid, tx.ID, err)
			return paymentdom.Initiation{}, fmt.Errorf("%w: hosted payment page: %v", paymentdom.ErrGateway, err)
		}
		init.PaymentURL = url
	}

	// Link the transaction onto the order before the initiation is
	// considered complete. If this fails the gateway transaction exists
	// unlinked: a reconciliation gap, detectable as an order stuck in
	// pending past the audit timeout.
	o, err := uc.orders.GetByID(ctx, oid)
	if err != nil {
		log.Printf("[payment_uc] RECONCILIATION GAP: order load failed after gateway create orderId=%s txn=%s err=%v", oid, tx.ID, err)
		return paymentdom.Initiation{}, err
	}
	if err := o.AttachTransaction(tx.ID, uc.clock.Now()); err != nil {
		log.Printf("[payment_uc] attach transaction rejected orderId=%s txn=%s err=%v", oid, tx.ID, err)
		return paymentdom.Initiation{}, err
	}
	if _, err := uc.orders.Save(ctx, o); err != nil {
		log.Printf("[payment_uc] RECONCILIATION GAP: transaction link not persisted orderId=%s txn=%s err=%v", oid, tx.ID, err)
		return paymentdom.Initiation{}, err
	}

	log.Printf("[payment_uc] initiated orderId=%s txn=%s method=%s amount=%d", oid, tx.ID, method, amount)
	return init, nil
}

// Reconcile handles an inbound gateway callback. The callback payload's
// status is never trusted: the transaction is re-verified at the gateway,
// its status mapped deterministically, and the result written onto the
// order matched by transaction reference. Idempotent: replaying the same
// callback leaves the order unchanged and fires no duplicate side effects.
func (uc *PaymentUsecase) Reconcile(ctx context.Context, transactionID string) (orderdom.PaymentStatus, error) {
	tid := strings.TrimSpace(transactionID)
	if tid == "" {
		return "", ErrPaymentTransactionIDEmpty
	}

	tx, err := uc.gateway.Retrieve(ctx, tid)
	if err != nil {
		return "", fmt.Errorf("%w: retrieve transaction: %v", paymentdom.ErrGateway, err)
	}

	mapped := paymentdom.MapGatewayStatus(tx.Status)

	o, err := uc.orders.GetByTransactionID(ctx, tid)
	if err != nil {
		return "", err
	}

	prev := o.PaymentStatus
	if err := o.ApplyPaymentStatus(mapped, uc.clock.Now()); err != nil {
		if errors.Is(err, orderdom.ErrInvalidTransition) {
			// terminal order, late or out-of-order callback: keep state
			log.Printf("[payment_uc] reconcile ignored txn=%s order=%s status=%s mapped=%s", tid, o.ID, prev, mapped)
			return prev, nil
		}
		return "", err
	}

	if o.PaymentStatus != prev {
		if _, err := uc.orders.Save(ctx, o); err != nil {
			return "", err
		}
		log.Printf("[payment_uc] reconciled txn=%s order=%s %s -> %s (gateway=%q)", tid, o.ID, prev, o.PaymentStatus, tx.Status)
	}

	if prev != orderdom.PaymentCompleted && o.PaymentStatus == orderdom.PaymentCompleted {
		uc.notifyCompleted(ctx, o)
	}

	return o.PaymentStatus, nil
}

func (uc *PaymentUsecase) notifyCompleted(ctx context.Context, o orderdom.Order) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.OrderCompleted(ctx, o); err != nil {
		log.Printf("[payment_uc] WARN: completion hook failed order=%s err=%v", o.ID, err)
	}
}
