package market

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ValidateCart rejects malformed carts before they reach the pipeline.
func ValidateCart(items []CartLine) error {
	if len(items) == 0 {
		return Validatef("cart is empty")
	}
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		if it.ProductID == "" {
			return Validatef("item %d: missing product_id", i)
		}
		if seen[it.ProductID] {
			return Validatef("item %d: duplicate product %s", i, it.ProductID)
		}
		seen[it.ProductID] = true
		if it.Qty <= 0 {
			return Validatef("item %d: qty must be positive", i)
		}
		if it.TotalCents < 0 {
			return Validatef("item %d: total_cents must not be negative", i)
		}
	}
	return nil
}

// CartTotal sums the client-supplied line totals.
func CartTotal(items []CartLine) int64 {
	var total int64
	for _, it := range items {
		total += it.TotalCents
	}
	return total
}

// NewInvoiceCode: INV-<unix ms>-<uuid prefix>. Suffix disambiguates codes
// minted within the same millisecond.
func NewInvoiceCode(now time.Time) string {
	return fmt.Sprintf("INV-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
