package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettle(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		amount     int64
		wantPaid   int64
		wantExcess int64
	}{
		{name: "overpayment credits excess", total: 100, amount: 150, wantPaid: 100, wantExcess: 50},
		{name: "partial payment", total: 100, amount: 60, wantPaid: 60, wantExcess: 0},
		{name: "exact payment", total: 100, amount: 100, wantPaid: 100, wantExcess: 0},
		{name: "zero total", total: 0, amount: 25, wantPaid: 0, wantExcess: 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Settle(tt.total, tt.amount)
			assert.Equal(t, tt.wantPaid, res.PaidCents)
			assert.Equal(t, tt.wantExcess, res.ExcessCents)
		})
	}
}

func TestInvoiceSettled(t *testing.T) {
	assert.True(t, Invoice{TotalCents: 100, PaidCents: 100}.Settled())
	assert.False(t, Invoice{TotalCents: 100, PaidCents: 60}.Settled())
	assert.True(t, Invoice{}.Settled(), "zero-total invoice is trivially settled")
}
