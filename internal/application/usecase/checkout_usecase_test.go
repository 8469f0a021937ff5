package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "agrifarm/internal/domain/cart"
	checkoutdom "agrifarm/internal/domain/checkout"
	orderdom "agrifarm/internal/domain/order"
	paymentdom "agrifarm/internal/domain/payment"
	profiledom "agrifarm/internal/domain/profile"
)

type checkoutFixture struct {
	local  *memLocalStore
	orders *memOrderRepo
	gw     *fakeGateway
	uc     *CheckoutUsecase
}

func newCheckoutFixture(t *testing.T, profiles profiledom.Repository) *checkoutFixture {
	t.Helper()

	local := newMemLocalStore()
	local.recs["buyer-1"] = cartdom.LocalRecord{
		Items:     []cartdom.Item{testItem("p-1", 5, 500)},
		Timestamp: testNow,
	}

	orders := newMemOrderRepo()
	gw := &fakeGateway{}
	clock := fixedClock{t: testNow}

	cartUC := NewCartUsecaseWithClock(local, nil, clock)
	paymentUC := NewPaymentUsecaseWithClock(orders, gw, nil, clock)
	uc := NewCheckoutUsecaseWithClock(cartUC, orders, paymentUC, profiles, clock)
	uc.newID = func() string { return "ord-1" }

	return &checkoutFixture{local: local, orders: orders, gw: gw, uc: uc}
}

func deliveryForm() checkoutdom.DeliveryInfo {
	return checkoutdom.DeliveryInfo{
		FullName:     "Awa Dossou",
		Phone:        "+22990000000",
		Address:      "Rue 12",
		Quarter:      "Fidjrossè",
		Commune:      "Cotonou",
		DeliveryDate: "2025-06-15",
	}
}

func mobileMoneySelection() checkoutdom.PaymentSelection {
	return checkoutdom.PaymentSelection{Method: orderdom.MethodMobileMoney, Network: "mtn", Phone: "+22990000000"}
}

func (f *checkoutFixture) startAndFillDelivery(t *testing.T) {
	t.Helper()
	_, err := f.uc.Start(context.Background(), "buyer-1")
	require.NoError(t, err)
	_, err = f.uc.SubmitDelivery(context.Background(), "buyer-1", deliveryForm())
	require.NoError(t, err)
}

func TestCheckoutStartSnapshotsTotals(t *testing.T) {
	f := newCheckoutFixture(t, nil)

	s, err := f.uc.Start(context.Background(), "buyer-1")
	require.NoError(t, err)

	assert.Equal(t, checkoutdom.StepDelivery, s.Step)
	assert.Equal(t, int64(3750), s.TotalsSnapshot.FinalTotal)
}

func TestCheckoutStartPrefillsFromProfile(t *testing.T) {
	profiles := &staticProfiles{profiles: map[string]profiledom.Profile{
		"buyer-1": {ID: "buyer-1", Role: profiledom.RoleBuyer, FullName: "Awa Dossou", Phone: "+22990000000", Commune: "Cotonou"},
	}}
	f := newCheckoutFixture(t, profiles)

	s, err := f.uc.Start(context.Background(), "buyer-1")
	require.NoError(t, err)

	assert.Equal(t, "Awa Dossou", s.Delivery.FullName)
	assert.Equal(t, "Cotonou", s.Delivery.Commune)
}

func TestCheckoutStartEmptyCartRejected(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	delete(f.local.recs, "buyer-1")

	_, err := f.uc.Start(context.Background(), "buyer-1")
	assert.ErrorIs(t, err, checkoutdom.ErrEmptyCart)
}

func TestCheckoutStartRejectsSecondSession(t *testing.T) {
	f := newCheckoutFixture(t, nil)

	_, err := f.uc.Start(context.Background(), "buyer-1")
	require.NoError(t, err)

	_, err = f.uc.Start(context.Background(), "buyer-1")
	assert.ErrorIs(t, err, ErrCheckoutInFlight)

	// abandoning frees the slot
	f.uc.Abandon("buyer-1")
	_, err = f.uc.Start(context.Background(), "buyer-1")
	assert.NoError(t, err)
}

func TestCheckoutSessionMissing(t *testing.T) {
	f := newCheckoutFixture(t, nil)

	_, err := f.uc.Session("buyer-1")
	assert.ErrorIs(t, err, ErrCheckoutNoSession)
}

func TestCheckoutSubmitPaymentHappyPath(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	f.startAndFillDelivery(t)

	res, err := f.uc.SubmitPayment(context.Background(), "buyer-1", mobileMoneySelection())
	require.NoError(t, err)

	assert.Equal(t, "ord-1", res.OrderID)
	assert.Equal(t, "txn-1", res.Initiation.TransactionID)

	// the order exists durably with the cart snapshot amounts
	o, err := f.orders.GetByID(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), o.TotalAmount)
	assert.Equal(t, int64(250), o.CommissionAmount)
	assert.Equal(t, int64(3750), o.FinalAmount)
	assert.Equal(t, "f-1", o.FarmerID)
	assert.Equal(t, "Rue 12, Fidjrossè", o.DeliveryAddress)
	assert.Equal(t, orderdom.PaymentProcessing, o.PaymentStatus)

	items, err := f.orders.GetItems(context.Background(), "ord-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2500), items[0].TotalPrice)

	// cart cleared, session confirmed
	rec := f.local.recs["buyer-1"]
	assert.Empty(t, rec.Items)

	s, err := f.uc.Session("buyer-1")
	require.NoError(t, err)
	assert.True(t, s.Done())
	assert.Equal(t, "ord-1", s.OrderID)
}

func TestCheckoutSubmitPaymentOrderCreatedBeforeGateway(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	f.startAndFillDelivery(t)

	// gateway refuses; the order must still have been created first
	f.gw.createErr = errors.New("gateway down")

	_, err := f.uc.SubmitPayment(context.Background(), "buyer-1", mobileMoneySelection())
	assert.ErrorIs(t, err, paymentdom.ErrGateway)

	o, err := f.orders.GetByID(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, orderdom.PaymentPending, o.PaymentStatus)

	// cart kept, session stays in payment for retry
	rec := f.local.recs["buyer-1"]
	assert.NotEmpty(t, rec.Items)

	s, err := f.uc.Session("buyer-1")
	require.NoError(t, err)
	assert.Equal(t, checkoutdom.StepPayment, s.Step)
}

func TestCheckoutSubmitPaymentCreateFailureKeepsCart(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	f.startAndFillDelivery(t)

	f.orders.createErr = errors.New("store down")

	_, err := f.uc.SubmitPayment(context.Background(), "buyer-1", mobileMoneySelection())
	assert.Error(t, err)
	assert.Zero(t, f.gw.creates)

	rec := f.local.recs["buyer-1"]
	assert.NotEmpty(t, rec.Items)
}

func TestCheckoutSubmitPaymentWrongStep(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	_, err := f.uc.Start(context.Background(), "buyer-1")
	require.NoError(t, err)

	// still on delivery
	_, err = f.uc.SubmitPayment(context.Background(), "buyer-1", mobileMoneySelection())
	assert.ErrorIs(t, err, checkoutdom.ErrWrongStep)
}

func TestCheckoutSubmitPaymentInvalidSelection(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	f.startAndFillDelivery(t)

	sel := checkoutdom.PaymentSelection{Method: orderdom.MethodMobileMoney, Network: "orange", Phone: "+22990000000"}
	_, err := f.uc.SubmitPayment(context.Background(), "buyer-1", sel)
	assert.ErrorIs(t, err, checkoutdom.ErrUnknownMobileMoney)
	assert.Zero(t, f.orders.creates)
}

func TestCheckoutBackToDeliveryKeepsFields(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	f.startAndFillDelivery(t)

	s, err := f.uc.BackToDelivery("buyer-1")
	require.NoError(t, err)

	assert.Equal(t, checkoutdom.StepDelivery, s.Step)
	assert.Equal(t, "Awa Dossou", s.Delivery.FullName)
}

func TestCheckoutStartAfterConfirmationAllowed(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	f.startAndFillDelivery(t)

	_, err := f.uc.SubmitPayment(context.Background(), "buyer-1", mobileMoneySelection())
	require.NoError(t, err)

	// completed session does not block the next checkout; the cart is
	// empty though, so a fresh one is needed
	f.local.recs["buyer-1"] = cartdom.LocalRecord{
		Items:     []cartdom.Item{testItem("p-2", 1, 300)},
		Timestamp: testNow,
	}
	f.uc.newID = func() string { return "ord-2" }

	s, err := f.uc.Start(context.Background(), "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, checkoutdom.StepDelivery, s.Step)
}
