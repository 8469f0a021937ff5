package payment

import (
	"context"
	"errors"

	orderdom "agrifarm/internal/domain/order"
)

var (
	ErrUnsupportedMethod = errors.New("payment: unsupported payment method")
	ErrGateway           = errors.New("payment: gateway failure")
)

// Transaction is the gateway's view of a payment attempt. Status carries
// the gateway's own vocabulary; MapGatewayStatus translates it.
type Transaction struct {
	ID          string
	Status      string
	Amount      int64
	Currency    string
	Description string
}

// Gateway is the outbound port to the payment provider (FedaPay).
// Amounts are integer currency units, already rounded by the caller.
type Gateway interface {
	// CreateTransaction registers a transaction with the provider. The
	// implementation supplies the currency and the callback URL the
	// provider posts status changes to. customerPhone may be empty (card
	// flow).
	CreateTransaction(ctx context.Context, amount int64, description, customerPhone string) (Transaction, error)

	// SendPush triggers the mobile money payment prompt for transactionID.
	SendPush(ctx context.Context, transactionID string) error

	// HostedPaymentURL returns the provider-hosted payment page for a card
	// transaction, completed by the buyer out-of-band.
	HostedPaymentURL(ctx context.Context, transactionID string) (string, error)

	// Retrieve fetches the transaction's current state from the provider.
	Retrieve(ctx context.Context, transactionID string) (Transaction, error)
}

// Initiation is the orchestrator's result: the transaction reference that
// gets written onto the order, the mapped initial status, and (card only)
// the hosted payment page URL.
type Initiation struct {
	TransactionID string                 `json:"transactionId"`
	Status        orderdom.PaymentStatus `json:"status"`
	PaymentURL    string                 `json:"paymentUrl,omitempty"`
}

// MapGatewayStatus maps the provider's status vocabulary onto the internal
// four-state enum. The mapping is total: unrecognized codes land on
// pending, never on completed.
func MapGatewayStatus(raw string) orderdom.PaymentStatus {
	switch raw {
	case "approved":
		return orderdom.PaymentCompleted
	case "declined", "canceled":
		return orderdom.PaymentFailed
	case "processing":
		return orderdom.PaymentProcessing
	case "pending":
		return orderdom.PaymentPending
	default:
		return orderdom.PaymentPending
	}
}
