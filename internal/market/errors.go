package market

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds carried over the wire in failure responses.
const (
	KindValidation        = "VALIDATION"
	KindProductNotFound   = "PRODUCT_NOT_FOUND"
	KindInsufficientStock = "INSUFFICIENT_STOCK"
	KindInvoiceNotFound   = "INVOICE_NOT_FOUND"
	KindTxNotFound        = "TRANSACTION_NOT_FOUND"
	KindSubmitTimeout     = "SUBMIT_TIMEOUT"
	KindQueueFull         = "QUEUE_FULL"
	KindInternal          = "INTERNAL"
)

var (
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// ValidationError rejects malformed input at the boundary, before queuing.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validatef(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ProductNotFoundError names the cart's product ids that did not resolve.
type ProductNotFoundError struct {
	IDs []string
}

func (e *ProductNotFoundError) Error() string {
	return "product not found: " + strings.Join(e.IDs, ",")
}

// StockShortage is one offending line of an InsufficientStockError.
type StockShortage struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// InsufficientStockError carries every line whose qty exceeded stock. A single
// shortage aborts the whole cart.
type InsufficientStockError struct {
	Details []StockShortage
}

func (e *InsufficientStockError) Error() string {
	ids := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		ids = append(ids, d.ProductID)
	}
	return "insufficient stock: " + strings.Join(ids, ",")
}

// Kind maps an error to its wire kind. Unknown errors are infrastructure.
func Kind(err error) string {
	var ve *ValidationError
	var nf *ProductNotFoundError
	var is *InsufficientStockError
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &nf):
		return KindProductNotFound
	case errors.As(err, &is):
		return KindInsufficientStock
	case errors.Is(err, ErrInvoiceNotFound):
		return KindInvoiceNotFound
	case errors.Is(err, ErrTransactionNotFound):
		return KindTxNotFound
	default:
		return KindInternal
	}
}

// ErrData extracts the structured payload for a failure response: the
// offending item list for domain errors, nil otherwise.
func ErrData(err error) any {
	var nf *ProductNotFoundError
	var is *InsufficientStockError
	switch {
	case errors.As(err, &nf):
		return nf.IDs
	case errors.As(err, &is):
		return is.Details
	default:
		return nil
	}
}
