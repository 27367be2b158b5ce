package market

import (
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", Validatef("bad input"), KindValidation},
		{"product not found", &ProductNotFoundError{IDs: []string{"p1"}}, KindProductNotFound},
		{"insufficient stock", &InsufficientStockError{Details: []StockShortage{{ProductID: "p1"}}}, KindInsufficientStock},
		{"invoice not found", ErrInvoiceNotFound, KindInvoiceNotFound},
		{"transaction not found", ErrTransactionNotFound, KindTxNotFound},
		{"infrastructure", pkgerrors.New("connection refused"), KindInternal},
		{"wrapped sentinel survives", pkgerrors.Wrap(ErrInvoiceNotFound, "load"), KindInvoiceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestErrData(t *testing.T) {
	nf := &ProductNotFoundError{IDs: []string{"p1", "p2"}}
	assert.Equal(t, []string{"p1", "p2"}, ErrData(nf))

	is := &InsufficientStockError{Details: []StockShortage{
		{ProductID: "p1", Requested: 5, Available: 2},
	}}
	assert.Equal(t, is.Details, ErrData(is))

	assert.Nil(t, ErrData(pkgerrors.New("boom")))
}

func TestErrorMessagesNameOffenders(t *testing.T) {
	nf := &ProductNotFoundError{IDs: []string{"p1", "p2"}}
	assert.Contains(t, nf.Error(), "p1")
	assert.Contains(t, nf.Error(), "p2")

	is := &InsufficientStockError{Details: []StockShortage{
		{ProductID: "p9", Requested: 3, Available: 1},
	}}
	assert.Contains(t, is.Error(), "p9")
}
