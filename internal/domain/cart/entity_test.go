package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func mustItem(t *testing.T, drugID string, qty int, price float64) Item {
	t.Helper()
	it, err := NewItem(drugID, qty, "name-"+drugID, "img-"+drugID, price)
	require.NoError(t, err)
	return it
}

func TestNewItem_DerivesLineTotal(t *testing.T) {
	it, err := NewItem("d1", 2, "Aspirin", "http://img", 10.0)
	require.NoError(t, err)
	require.Equal(t, 20.0, it.Total)
	require.Equal(t, "Aspirin", it.DrugName)
}

func TestNewItem_RejectsBadInput(t *testing.T) {
	_, err := NewItem("", 1, "x", "", 1)
	require.ErrorIs(t, err, ErrInvalidCart)

	_, err = NewItem("d1", 0, "x", "", 1)
	require.ErrorIs(t, err, ErrInvalidCart)

	_, err = NewItem("d1", 1, "x", "", -1)
	require.ErrorIs(t, err, ErrInvalidCart)
}

func TestNewCart_EmptyCartHasZeroSubtotal(t *testing.T) {
	c, err := NewCart("", "user-1", nil, testNow)
	require.NoError(t, err)
	require.False(t, c.Purchased)
	require.Empty(t, c.Items)
	require.Equal(t, 0.0, c.SubTotal)
}

func TestNewCart_RequiresUser(t *testing.T) {
	_, err := NewCart("", "", nil, testNow)
	require.ErrorIs(t, err, ErrInvalidCart)
}

func TestAddItem_RecomputesSubtotal(t *testing.T) {
	c, err := NewCart("c1", "user-1", nil, testNow)
	require.NoError(t, err)

	require.NoError(t, c.AddItem(mustItem(t, "d1", 2, 10), testNow))
	require.Equal(t, 20.0, c.SubTotal)

	require.NoError(t, c.AddItem(mustItem(t, "d2", 1, 5), testNow))
	require.Equal(t, 25.0, c.SubTotal)
}

func TestAddItem_DuplicateDrugKeepsSeparateLines(t *testing.T) {
	c, err := NewCart("c1", "user-1", nil, testNow)
	require.NoError(t, err)

	require.NoError(t, c.AddItem(mustItem(t, "d1", 2, 10), testNow))
	require.NoError(t, c.AddItem(mustItem(t, "d1", 1, 10), testNow))

	require.Len(t, c.Items, 2)
	require.Equal(t, 30.0, c.SubTotal)
}

func TestRemoveItem_DropsEveryMatchingLine(t *testing.T) {
	c, err := NewCart("c1", "user-1", nil, testNow)
	require.NoError(t, err)
	require.NoError(t, c.AddItem(mustItem(t, "d1", 2, 10), testNow))
	require.NoError(t, c.AddItem(mustItem(t, "d1", 1, 10), testNow))
	require.NoError(t, c.AddItem(mustItem(t, "d2", 1, 5), testNow))

	removed, err := c.RemoveItem("d1", testNow)
	require.NoError(t, err)
	require.True(t, removed)
	require.Len(t, c.Items, 1)
	require.Equal(t, 5.0, c.SubTotal)
}

func TestRemoveItem_MissingDrugReportsFalse(t *testing.T) {
	c, err := NewCart("c1", "user-1", []Item{mustItem(t, "d1", 1, 3)}, testNow)
	require.NoError(t, err)

	removed, err := c.RemoveItem("d9", testNow)
	require.NoError(t, err)
	require.False(t, removed)
	require.Equal(t, 3.0, c.SubTotal)
}

func TestMarkPurchased_IsOneWay(t *testing.T) {
	c, err := NewCart("c1", "user-1", []Item{mustItem(t, "d1", 1, 3)}, testNow)
	require.NoError(t, err)

	require.NoError(t, c.MarkPurchased(testNow))
	require.True(t, c.Purchased)

	require.ErrorIs(t, c.MarkPurchased(testNow), ErrPurchased)
}

func TestPurchasedCartRejectsMutation(t *testing.T) {
	c, err := NewCart("c1", "user-1", []Item{mustItem(t, "d1", 1, 3)}, testNow)
	require.NoError(t, err)
	require.NoError(t, c.MarkPurchased(testNow))

	require.ErrorIs(t, c.AddItem(mustItem(t, "d2", 1, 2), testNow), ErrPurchased)

	_, err = c.RemoveItem("d1", testNow)
	require.ErrorIs(t, err, ErrPurchased)
}

func TestMarkPurchased_EmptyCartIsAllowed(t *testing.T) {
	// no guard on empty carts; preserved until the business rule is decided
	c, err := NewCart("c1", "user-1", nil, testNow)
	require.NoError(t, err)
	require.NoError(t, c.MarkPurchased(testNow))
	require.True(t, c.Purchased)
	require.Equal(t, 0.0, c.SubTotal)
}
