package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func tomatoes(qty int) Item {
	return Item{ProductID: "p-tomato", Name: "Tomates", UnitPrice: 500, Unit: "kg", Quantity: qty, FarmerID: "f-1"}
}

func maize(qty int) Item {
	return Item{ProductID: "p-maize", Name: "Maïs", UnitPrice: 300, Unit: "sac", Quantity: qty, FarmerID: "f-2"}
}

func TestNewEmptyCartHasZeroTotals(t *testing.T) {
	c, err := New("buyer-1", nil, testNow)
	require.NoError(t, err)

	assert.True(t, c.IsEmpty())
	assert.Equal(t, Totals{}, c.Totals)
}

func TestNewRejectsEmptyBuyerID(t *testing.T) {
	_, err := New("  ", nil, testNow)
	assert.ErrorIs(t, err, ErrInvalidCart)
}

func TestTotalsWorkedExample(t *testing.T) {
	// 5 kg tomatoes at 500 = 2500; commission 250; delivery 1000; final 3750
	c, err := New("buyer-1", []Item{tomatoes(5)}, testNow)
	require.NoError(t, err)

	assert.Equal(t, Totals{
		Subtotal:    2500,
		Commission:  250,
		DeliveryFee: 1000,
		FinalTotal:  3750,
	}, c.Totals)
}

func TestCommissionRoundsHalfUp(t *testing.T) {
	cases := []struct {
		unitPrice  int64
		commission int64
	}{
		{1, 0},    // 0.1 -> 0
		{5, 1},    // 0.5 -> 1
		{7, 1},    // 0.7 -> 1
		{14, 1},   // 1.4 -> 1
		{15, 2},   // 1.5 -> 2
		{999, 100}, // 99.9 -> 100
	}
	for _, tc := range cases {
		it := tomatoes(1)
		it.UnitPrice = tc.unitPrice
		c, err := New("buyer-1", []Item{it}, testNow)
		require.NoError(t, err)

		assert.Equalf(t, tc.commission, c.Totals.Commission, "subtotal=%d", tc.unitPrice)
		assert.Equal(t, c.Totals.Subtotal+c.Totals.Commission+c.Totals.DeliveryFee, c.Totals.FinalTotal)
	}
}

func TestAddItemMergesSameProduct(t *testing.T) {
	c, err := New("buyer-1", nil, testNow)
	require.NoError(t, err)

	require.NoError(t, c.AddItem(tomatoes(2), testNow))
	require.NoError(t, c.AddItem(tomatoes(3), testNow))

	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, int64(2500), c.Totals.Subtotal)
}

func TestAddItemRejectsInvalid(t *testing.T) {
	c, err := New("buyer-1", nil, testNow)
	require.NoError(t, err)

	bad := tomatoes(0)
	assert.ErrorIs(t, c.AddItem(bad, testNow), ErrInvalidItem)

	bad = tomatoes(1)
	bad.ProductID = ""
	assert.ErrorIs(t, c.AddItem(bad, testNow), ErrInvalidItem)

	bad = tomatoes(1)
	bad.FarmerID = " "
	assert.ErrorIs(t, c.AddItem(bad, testNow), ErrInvalidItem)

	assert.True(t, c.IsEmpty())
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	c, err := New("buyer-1", []Item{tomatoes(2), maize(1)}, testNow)
	require.NoError(t, err)

	require.NoError(t, c.SetQuantity("p-tomato", 0, testNow))

	require.Len(t, c.Items, 1)
	assert.Equal(t, "p-maize", c.Items[0].ProductID)
	assert.Equal(t, int64(300), c.Totals.Subtotal)
}

func TestSetQuantityNegativeRemovesLine(t *testing.T) {
	c, err := New("buyer-1", []Item{tomatoes(2)}, testNow)
	require.NoError(t, err)

	require.NoError(t, c.SetQuantity("p-tomato", -3, testNow))
	assert.True(t, c.IsEmpty())
	assert.Equal(t, Totals{}, c.Totals)
}

func TestSetQuantityUnknownProduct(t *testing.T) {
	c, err := New("buyer-1", []Item{tomatoes(2)}, testNow)
	require.NoError(t, err)

	assert.ErrorIs(t, c.SetQuantity("p-nope", 3, testNow), ErrInvalidItem)
	// removal of an absent product is a no-op, not an error
	assert.NoError(t, c.SetQuantity("p-nope", 0, testNow))
}

func TestRemoveIsAbsenceTolerant(t *testing.T) {
	c, err := New("buyer-1", []Item{tomatoes(2)}, testNow)
	require.NoError(t, err)

	require.NoError(t, c.Remove("p-never-added", testNow))
	require.Len(t, c.Items, 1)

	require.NoError(t, c.Remove("p-tomato", testNow))
	assert.True(t, c.IsEmpty())
}

func TestClearZeroesEverything(t *testing.T) {
	c, err := New("buyer-1", []Item{tomatoes(2), maize(4)}, testNow)
	require.NoError(t, err)

	require.NoError(t, c.Clear(testNow))

	assert.True(t, c.IsEmpty())
	assert.Equal(t, Totals{}, c.Totals)
}

func TestNewMergesDuplicatesAndDropsInvalid(t *testing.T) {
	items := []Item{
		tomatoes(1),
		{ProductID: "", FarmerID: "f-9", Quantity: 1, UnitPrice: 10}, // dropped
		maize(2),
		tomatoes(4), // merged into first line
		{ProductID: "p-zero", FarmerID: "f-9", Quantity: 0, UnitPrice: 10}, // dropped
	}

	c, err := New("buyer-1", items, testNow)
	require.NoError(t, err)

	require.Len(t, c.Items, 2)
	assert.Equal(t, "p-tomato", c.Items[0].ProductID)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, "p-maize", c.Items[1].ProductID)
}

func TestDeliveryFeeOnlyOnNonEmptyCart(t *testing.T) {
	c, err := New("buyer-1", nil, testNow)
	require.NoError(t, err)
	assert.Zero(t, c.Totals.DeliveryFee)

	require.NoError(t, c.AddItem(tomatoes(1), testNow))
	assert.Equal(t, DeliveryFee, c.Totals.DeliveryFee)

	require.NoError(t, c.Remove("p-tomato", testNow))
	assert.Zero(t, c.Totals.DeliveryFee)
}

func TestFirstFarmerIDAndGrouping(t *testing.T) {
	c, err := New("buyer-1", []Item{tomatoes(1), maize(1)}, testNow)
	require.NoError(t, err)

	assert.Equal(t, "f-1", c.FirstFarmerID())

	groups := c.GroupByFarmer()
	require.Len(t, groups, 2)
	assert.Len(t, groups["f-1"], 1)
	assert.Len(t, groups["f-2"], 1)
}

func TestReplaceItems(t *testing.T) {
	c, err := New("buyer-1", []Item{tomatoes(1)}, testNow)
	require.NoError(t, err)

	require.NoError(t, c.ReplaceItems([]Item{maize(3)}, testNow))

	require.Len(t, c.Items, 1)
	assert.Equal(t, "p-maize", c.Items[0].ProductID)
	assert.Equal(t, int64(900), c.Totals.Subtotal)
}
