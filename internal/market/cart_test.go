package market

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCart(t *testing.T) {
	tests := []struct {
		name    string
		items   []CartLine
		wantErr string
	}{
		{
			name:    "empty cart",
			items:   nil,
			wantErr: "cart is empty",
		},
		{
			name:    "missing product id",
			items:   []CartLine{{Qty: 1, TotalCents: 100}},
			wantErr: "missing product_id",
		},
		{
			name: "duplicate product",
			items: []CartLine{
				{ProductID: "p1", Qty: 1, TotalCents: 100},
				{ProductID: "p1", Qty: 2, TotalCents: 200},
			},
			wantErr: "duplicate product",
		},
		{
			name:    "zero qty",
			items:   []CartLine{{ProductID: "p1", Qty: 0, TotalCents: 100}},
			wantErr: "qty must be positive",
		},
		{
			name:    "negative qty",
			items:   []CartLine{{ProductID: "p1", Qty: -3, TotalCents: 100}},
			wantErr: "qty must be positive",
		},
		{
			name:    "negative total",
			items:   []CartLine{{ProductID: "p1", Qty: 1, TotalCents: -1}},
			wantErr: "total_cents must not be negative",
		},
		{
			name: "valid cart",
			items: []CartLine{
				{ProductID: "p1", Qty: 2, TotalCents: 2000},
				{ProductID: "p2", Qty: 1, TotalCents: 500},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCart(tt.items)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestCartTotal(t *testing.T) {
	items := []CartLine{
		{ProductID: "p1", Qty: 2, TotalCents: 2000},
		{ProductID: "p2", Qty: 1, TotalCents: 500},
	}
	assert.Equal(t, int64(2500), CartTotal(items))
	assert.Equal(t, int64(0), CartTotal(nil))
}

func TestNewInvoiceCode(t *testing.T) {
	now := time.Now()
	code := NewInvoiceCode(now)

	assert.True(t, strings.HasPrefix(code, "INV-"), "code=%s", code)
	assert.Contains(t, code, "-", "time component and suffix separated")

	// suffix harus membedakan code yang dibuat di milidetik yang sama
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		c := NewInvoiceCode(now)
		assert.False(t, seen[c], "duplicate code %s", c)
		seen[c] = true
	}
}
