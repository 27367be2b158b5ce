package market

import "time"

type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Stock      int       `json:"stock"`
	OwnerID    string    `json:"owner_id"`
	PhotoURL   string    `json:"photo_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Invoice struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	TotalCents int64     `json:"total_cents"`
	PaidCents  int64     `json:"paid_cents"`
	BuyerID    string    `json:"buyer_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Settled: invoice lunas, tidak ada sisa tagihan.
func (i Invoice) Settled() bool { return i.PaidCents == i.TotalCents }

// TransactionLine is one product/qty record belonging to an invoice. The
// seller flips Processed exactly once when the order is handled.
type TransactionLine struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Qty       int       `json:"qty"`
	InvoiceID string    `json:"invoice_id"`
	Processed bool      `json:"processed"`
	CreatedAt time.Time `json:"created_at"`
}

// SellerOrder is a seller-view row: a transaction line joined to its
// (settled) invoice.
type SellerOrder struct {
	TransactionLine
	InvoiceCode string `json:"invoice_code"`
	TotalCents  int64  `json:"total_cents"`
	PaidCents   int64  `json:"paid_cents"`
}

// CartLine is one requested line of an order submission. TotalCents is
// client-supplied and trusted as-is; the catalog price is not re-derived.
type CartLine struct {
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	TotalCents int64  `json:"total_cents"`
}

// Receipt is what a successful fulfillment hands back to the submitter.
type Receipt struct {
	InvoiceID  string `json:"invoice_id"`
	Code       string `json:"code"`
	TotalCents int64  `json:"total_cents"`
}
