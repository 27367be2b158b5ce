package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAvailability(t *testing.T) {
	stocks := map[string]int{"p1": 5, "p2": 1, "p3": 0}

	tests := []struct {
		name          string
		items         []CartLine
		wantMissing   []string
		wantShortages []StockShortage
	}{
		{
			name:  "all lines reservable",
			items: []CartLine{{ProductID: "p1", Qty: 2}, {ProductID: "p2", Qty: 1}},
		},
		{
			name:  "exact stock boundary",
			items: []CartLine{{ProductID: "p1", Qty: 5}},
		},
		{
			name:        "single missing id",
			items:       []CartLine{{ProductID: "ghost", Qty: 1}},
			wantMissing: []string{"ghost"},
		},
		{
			name: "multiple missing ids collected",
			items: []CartLine{
				{ProductID: "z-ghost", Qty: 1},
				{ProductID: "p1", Qty: 1},
				{ProductID: "a-ghost", Qty: 2},
			},
			wantMissing: []string{"a-ghost", "z-ghost"},
		},
		{
			name: "single shortage names offender",
			items: []CartLine{
				{ProductID: "p1", Qty: 2},
				{ProductID: "p2", Qty: 3},
			},
			wantShortages: []StockShortage{{ProductID: "p2", Requested: 3, Available: 1}},
		},
		{
			name: "every shortage collected",
			items: []CartLine{
				{ProductID: "p2", Qty: 2},
				{ProductID: "p3", Qty: 1},
			},
			wantShortages: []StockShortage{
				{ProductID: "p2", Requested: 2, Available: 1},
				{ProductID: "p3", Requested: 1, Available: 0},
			},
		},
		{
			name: "missing wins over shortage",
			items: []CartLine{
				{ProductID: "ghost", Qty: 1},
				{ProductID: "p3", Qty: 4},
			},
			wantMissing: []string{"ghost"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAvailability(stocks, tt.items)
			switch {
			case tt.wantMissing != nil:
				var nf *ProductNotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, tt.wantMissing, nf.IDs)
			case tt.wantShortages != nil:
				var is *InsufficientStockError
				require.ErrorAs(t, err, &is)
				assert.Equal(t, tt.wantShortages, is.Details)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
