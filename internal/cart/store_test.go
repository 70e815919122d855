package cart_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/storefront/internal/apierr"
	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/product"
)

func prod(id int64, name, price string, stock int) product.Product {
	return product.Product{
		ID:     id,
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Active: true,
	}
}

func TestStore_AddItem_ClampsToStock(t *testing.T) {
	s := cart.NewStore()
	a := prod(1, "Keyboard", "49.90", 3)

	require.NoError(t, s.AddItem(a, 2))
	require.NoError(t, s.AddItem(a, 5))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, 3, s.Count())
}

func TestStore_AddItem_CountIncrease(t *testing.T) {
	tests := []struct {
		name  string
		stock int
		prior int
		qty   int
		want  int
	}{
		{name: "new_within_stock", stock: 10, prior: 0, qty: 4, want: 4},
		{name: "new_over_stock", stock: 3, prior: 0, qty: 7, want: 3},
		{name: "new_zero_qty", stock: 3, prior: 0, qty: 0, want: 1},
		{name: "existing_within_stock", stock: 10, prior: 2, qty: 3, want: 3},
		{name: "existing_over_stock", stock: 5, prior: 4, qty: 3, want: 1},
		{name: "existing_at_stock", stock: 5, prior: 5, qty: 1, want: 0},
		{name: "existing_huge_qty", stock: 3, prior: 2, qty: math.MaxInt, want: 1},
		{name: "new_huge_qty", stock: 3, prior: 0, qty: math.MaxInt, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := cart.NewStore()
			p := prod(7, "Mouse", "10", tt.stock)
			if tt.prior > 0 {
				require.NoError(t, s.AddItem(p, tt.prior))
			}

			before := s.Count()
			require.NoError(t, s.AddItem(p, tt.qty))

			assert.Equal(t, tt.want, s.Count()-before)
		})
	}
}

func TestStore_AddItem_RefreshesLine(t *testing.T) {
	s := cart.NewStore()
	require.NoError(t, s.AddItem(prod(1, "Keyboard", "49.90", 10), 8))

	// товар подешевел и остатков стало меньше
	require.NoError(t, s.AddItem(prod(1, "Keyboard v2", "39.90", 6), 1))

	want := []cart.Line{{ProductID: 1, Name: "Keyboard v2", Price: decimal.RequireFromString("39.90"), Quantity: 6, Stock: 6}}
	if diff := cmp.Diff(want, s.Lines()); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_AddItem_Rejects(t *testing.T) {
	s := cart.NewStore()

	err := s.AddItem(prod(1, "Monitor", "199", 0), 1)
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))
	assert.Equal(t, "Monitor is out of stock", err.Error())

	err = s.AddItem(prod(2, "Glitch", "-1", 5), 1)
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))

	assert.True(t, s.IsEmpty())
}

func TestStore_UpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		productID int64
		qty       int
		want      int
	}{
		{name: "zero_is_noop", productID: 1, qty: 0, want: 2},
		{name: "negative_is_noop", productID: 1, qty: -3, want: 2},
		{name: "set", productID: 1, qty: 4, want: 4},
		{name: "clamped", productID: 1, qty: 50, want: 5},
		{name: "unknown_product", productID: 99, qty: 3, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := cart.NewStore()
			require.NoError(t, s.AddItem(prod(1, "Mouse", "10", 5), 2))
			before := s.Lines()

			s.UpdateQuantity(tt.productID, tt.qty)

			assert.Equal(t, tt.want, s.Lines()[0].Quantity)
			if tt.want == 2 {
				if diff := cmp.Diff(before, s.Lines()); diff != "" {
					t.Errorf("store changed on no-op (-before +after):\n%s", diff)
				}
			}
		})
	}
}

func TestStore_OrderAndTotals(t *testing.T) {
	s := cart.NewStore()
	require.NoError(t, s.AddItem(prod(3, "Cable", "5.01", 100), 1))
	require.NoError(t, s.AddItem(prod(1, "Keyboard", "19.99", 10), 2))
	require.NoError(t, s.AddItem(prod(2, "Mouse", "7.50", 10), 4))

	s.UpdateQuantity(3, 2)
	s.RemoveItem(2)
	s.RemoveItem(42)

	var ids []int64
	for _, l := range s.Lines() {
		ids = append(ids, l.ProductID)
	}
	assert.Equal(t, []int64{3, 1}, ids)
	assert.Equal(t, 4, s.Count())
	assert.True(t, decimal.RequireFromString("50.00").Equal(s.Subtotal()), "subtotal = %s", s.Subtotal())
}

func TestStore_Clear(t *testing.T) {
	s := cart.NewStore()
	require.NoError(t, s.AddItem(prod(1, "Keyboard", "19.99", 10), 2))
	require.NoError(t, s.AddItem(prod(2, "Mouse", "7.50", 10), 1))

	s.Clear()

	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Count())
	assert.True(t, s.Subtotal().IsZero())
	assert.Empty(t, s.Lines())
}

func TestStore_LinesIsACopy(t *testing.T) {
	s := cart.NewStore()
	require.NoError(t, s.AddItem(prod(1, "Keyboard", "19.99", 10), 2))

	lines := s.Lines()
	lines[0].Quantity = 9

	assert.Equal(t, 2, s.Count())
}
