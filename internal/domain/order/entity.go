package order

import (
	"errors"
	"strings"
	"time"
)

// ========================================
// Payment vocabulary
// ========================================

// PaymentStatus is the internal four-state payment lifecycle.
// pending -> processing -> completed | failed
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
)

func IsValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentProcessing, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transition.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentCompleted || s == PaymentFailed
}

// PaymentMethod mirrors the checkout selection stored on the order.
type PaymentMethod string

const (
	MethodMobileMoney PaymentMethod = "mobile_money"
	MethodCard        PaymentMethod = "card"
	MethodWallet      PaymentMethod = "wallet"
)

// ========================================
// Entity
// ========================================

// Item is one immutable order line. Unit price is denormalized at purchase
// time so later product price changes never alter historical orders.
type Item struct {
	OrderID    string `json:"orderId" firestore:"orderId"`
	ProductID  string `json:"productId" firestore:"productId"`
	Quantity   int    `json:"quantity" firestore:"quantity"`
	UnitPrice  int64  `json:"unitPrice" firestore:"unitPrice"`
	TotalPrice int64  `json:"totalPrice" firestore:"totalPrice"`
}

// Order is the durable order record. Created exactly once per checkout
// attempt, before any gateway call. Mutated only by AttachTransaction
// (payment initiation) and ApplyPaymentStatus (callback reconciliation);
// never deleted by this core.
type Order struct {
	ID       string `json:"id" firestore:"id"`
	BuyerID  string `json:"buyerId" firestore:"buyerId"`
	FarmerID string `json:"farmerId" firestore:"farmerId"` // first cart item's farmer (single-farmer MVP)

	TotalAmount      int64 `json:"totalAmount" firestore:"totalAmount"`
	CommissionAmount int64 `json:"commissionAmount" firestore:"commissionAmount"`
	DeliveryFee      int64 `json:"deliveryFee" firestore:"deliveryFee"`
	FinalAmount      int64 `json:"finalAmount" firestore:"finalAmount"`

	DeliveryAddress      string `json:"deliveryAddress" firestore:"deliveryAddress"` // "address, quarter"
	DeliveryCommune      string `json:"deliveryCommune" firestore:"deliveryCommune"`
	DeliveryPhone        string `json:"deliveryPhone" firestore:"deliveryPhone"`
	DeliveryDate         string `json:"deliveryDate" firestore:"deliveryDate"` // YYYY-MM-DD
	DeliveryInstructions string `json:"deliveryInstructions,omitempty" firestore:"deliveryInstructions"`

	PaymentMethod        PaymentMethod `json:"paymentMethod" firestore:"paymentMethod"`
	PaymentStatus        PaymentStatus `json:"paymentStatus" firestore:"paymentStatus"`
	GatewayTransactionID string        `json:"gatewayTransactionId,omitempty" firestore:"gatewayTransactionId"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// ========================================
// Errors
// ========================================

var (
	ErrInvalidID            = errors.New("order: invalid id")
	ErrInvalidBuyerID       = errors.New("order: invalid buyerId")
	ErrInvalidFarmerID      = errors.New("order: invalid farmerId")
	ErrInvalidAmounts       = errors.New("order: invalid amounts")
	ErrInvalidDelivery      = errors.New("order: invalid delivery fields")
	ErrInvalidPaymentMethod = errors.New("order: invalid payment method")
	ErrInvalidStatus        = errors.New("order: invalid payment status")
	ErrInvalidItems         = errors.New("order: invalid items")
	ErrInvalidTransition    = errors.New("order: illegal status transition")
	ErrInvalidTransactionID = errors.New("order: invalid transaction id")
)

// ========================================
// Constructor
// ========================================

// New builds a pending order. Amounts are taken from the cart snapshot;
// the identity finalAmount == total + commission + deliveryFee is enforced
// here rather than recomputed so the snapshot is the source of truth.
func New(
	id, buyerID, farmerID string,
	totalAmount, commissionAmount, deliveryFee, finalAmount int64,
	deliveryAddress, deliveryCommune, deliveryPhone, deliveryDate, deliveryInstructions string,
	method PaymentMethod,
	createdAt time.Time,
) (Order, error) {
	o := Order{
		ID:       strings.TrimSpace(id),
		BuyerID:  strings.TrimSpace(buyerID),
		FarmerID: strings.TrimSpace(farmerID),

		TotalAmount:      totalAmount,
		CommissionAmount: commissionAmount,
		DeliveryFee:      deliveryFee,
		FinalAmount:      finalAmount,

		DeliveryAddress:      strings.TrimSpace(deliveryAddress),
		DeliveryCommune:      strings.TrimSpace(deliveryCommune),
		DeliveryPhone:        strings.TrimSpace(deliveryPhone),
		DeliveryDate:         strings.TrimSpace(deliveryDate),
		DeliveryInstructions: strings.TrimSpace(deliveryInstructions),

		PaymentMethod: method,
		PaymentStatus: PaymentPending,

		CreatedAt: createdAt.UTC(),
		UpdatedAt: createdAt.UTC(),
	}
	if err := o.validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

// NewItems builds the immutable line batch for an order from price/qty
// pairs already validated by the cart ledger.
func NewItems(orderID string, lines []Item) ([]Item, error) {
	oid := strings.TrimSpace(orderID)
	if oid == "" {
		return nil, ErrInvalidID
	}
	if len(lines) == 0 {
		return nil, ErrInvalidItems
	}

	out := make([]Item, 0, len(lines))
	for _, l := range lines {
		l.OrderID = oid
		l.ProductID = strings.TrimSpace(l.ProductID)
		if l.ProductID == "" || l.Quantity <= 0 || l.UnitPrice < 0 {
			return nil, ErrInvalidItems
		}
		l.TotalPrice = l.UnitPrice * int64(l.Quantity)
		out = append(out, l)
	}
	return out, nil
}

// ========================================
// Behavior (mutators)
// ========================================

// AttachTransaction links the gateway transaction and moves the order to
// processing. Legal only from pending (payment initiation happens once).
func (o *Order) AttachTransaction(transactionID string, now time.Time) error {
	tid := strings.TrimSpace(transactionID)
	if tid == "" {
		return ErrInvalidTransactionID
	}
	if o.PaymentStatus != PaymentPending {
		return ErrInvalidTransition
	}
	o.GatewayTransactionID = tid
	o.PaymentStatus = PaymentProcessing
	o.UpdatedAt = now.UTC()
	return nil
}

// ApplyPaymentStatus writes a reconciled status. Same-status writes are
// no-ops (callback retries), terminal states are never downgraded, and a
// pending/processing flip-flop is tolerated because the gateway reports
// both while a push prompt is outstanding.
func (o *Order) ApplyPaymentStatus(next PaymentStatus, now time.Time) error {
	if !IsValidPaymentStatus(next) {
		return ErrInvalidStatus
	}
	if next == o.PaymentStatus {
		return nil
	}
	if o.PaymentStatus.Terminal() {
		return ErrInvalidTransition
	}
	o.PaymentStatus = next
	o.UpdatedAt = now.UTC()
	return nil
}

// ========================================
// Validation
// ========================================

func (o Order) validate() error {
	if o.ID == "" {
		return ErrInvalidID
	}
	if o.BuyerID == "" {
		return ErrInvalidBuyerID
	}
	if o.FarmerID == "" {
		return ErrInvalidFarmerID
	}
	if o.TotalAmount < 0 || o.CommissionAmount < 0 || o.DeliveryFee < 0 || o.FinalAmount < 0 {
		return ErrInvalidAmounts
	}
	if o.FinalAmount != o.TotalAmount+o.CommissionAmount+o.DeliveryFee {
		return ErrInvalidAmounts
	}
	if o.DeliveryAddress == "" || o.DeliveryCommune == "" || o.DeliveryPhone == "" || o.DeliveryDate == "" {
		return ErrInvalidDelivery
	}
	switch o.PaymentMethod {
	case MethodMobileMoney, MethodCard, MethodWallet:
	default:
		return ErrInvalidPaymentMethod
	}
	if !IsValidPaymentStatus(o.PaymentStatus) {
		return ErrInvalidStatus
	}
	if o.CreatedAt.IsZero() {
		return ErrInvalidStatus
	}
	return nil
}
