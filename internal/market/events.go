package market

import (
	"encoding/json"
	"time"
)

const (
	EventOrderFulfilled = "OrderFulfilled"
	EventOrderRejected  = "OrderRejected"
	EventPaymentApplied = "PaymentApplied"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "market-api"
	CorrelationID string          `json:"correlation_id,omitempty"` // invoice_id kalau ada
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type OrderFulfilledPayload struct {
	InvoiceID  string     `json:"invoice_id"`
	Code       string     `json:"code"`
	BuyerID    string     `json:"buyer_id"`
	Items      []CartLine `json:"items"`
	TotalCents int64      `json:"total_cents"`
}

type OrderRejectedPayload struct {
	BuyerID   string          `json:"buyer_id"`
	Kind      string          `json:"kind"` // PRODUCT_NOT_FOUND | INSUFFICIENT_STOCK
	Shortages []StockShortage `json:"shortages,omitempty"`
	Missing   []string        `json:"missing,omitempty"`
}

type PaymentAppliedPayload struct {
	InvoiceID   string `json:"invoice_id"`
	PayerID     string `json:"payer_id"`
	AmountCents int64  `json:"amount_cents"`
	PaidCents   int64  `json:"paid_cents"`
	ExcessCents int64  `json:"excess_cents"`
}
