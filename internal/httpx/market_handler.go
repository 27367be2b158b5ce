package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/go-market-ledger.git/internal/kafka"
	"github.com/ariefcatur/go-market-ledger.git/internal/market"
	"github.com/ariefcatur/go-market-ledger.git/internal/notify"
	"github.com/ariefcatur/go-market-ledger.git/internal/pipeline"
	"github.com/ariefcatur/go-market-ledger.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Submitter is the order pipeline as seen from the HTTP layer.
type Submitter interface {
	Submit(ctx context.Context, buyerID string, items []market.CartLine) (market.Receipt, error)
}

type Ledger interface {
	ApplyPayment(ctx context.Context, invoiceID, payerID string, amountCents int64) (market.PaymentResult, error)
	ListBuyerInvoices(ctx context.Context, buyerID string, settled bool) ([]market.Invoice, error)
	ListSellerOrders(ctx context.Context, sellerID string, processed bool) ([]market.SellerOrder, error)
	MarkProcessed(ctx context.Context, sellerID, txID string) error
}

type Catalog interface {
	ListProducts(ctx context.Context, limit, page int) ([]market.Product, error)
	GetProduct(ctx context.Context, id string) (market.Product, error)
	CreateProduct(ctx context.Context, ownerID string, in market.ProductInput) (market.Product, error)
	UpdateProduct(ctx context.Context, ownerID, id string, in market.ProductInput) (market.Product, error)
}

// Publisher is satisfied by *kafkax.Producer; nil publishers are skipped.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type MarketHandler struct {
	Pipeline  Submitter
	Ledger    Ledger
	Catalog   Catalog
	Redis     *redis.Client
	Service   string
	FeedLen   int64
	PubFulfil Publisher
	PubReject Publisher
	PubPaid   Publisher
}

func (h *MarketHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)

	r.Group(func(r chi.Router) {
		r.Use(RequireUser)
		r.Post("/products", h.createProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Post("/orders", h.submitOrder)
		r.Get("/invoices", h.listInvoices)
		r.Get("/orders/seller", h.listSellerOrders)
		r.Post("/orders/process", h.processOrder)
		r.Post("/payments", h.applyPayment)
		r.Get("/activity", h.activity)
	})
}

// ---- orders ----

type SubmitOrderReq struct {
	ExternalID string            `json:"external_id,omitempty"`
	Items      []market.CartLine `json:"items"`
}

type SubmitOrderResp struct {
	IsOK       bool   `json:"is_ok"`
	InvoiceID  string `json:"invoice_id"`
	Code       string `json:"code"`
	TotalCents int64  `json:"total_cents"`
	Idempotent bool   `json:"idempotent,omitempty"`
}

func (h *MarketHandler) submitOrder(w http.ResponseWriter, r *http.Request) {
	var req SubmitOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, market.KindValidation, "invalid json", nil)
		return
	}
	if err := market.ValidateCart(req.Items); err != nil {
		writeErr(w, http.StatusBadRequest, market.KindValidation, err.Error(), nil)
		return
	}

	ctx := r.Context()
	buyerID := UserID(ctx)

	// replay idempoten: submit sukses sebelumnya dengan external_id sama.
	// Redis nil -> fitur replay mati, submit tetap jalan normal.
	var idemKey string
	if req.ExternalID != "" && h.Redis != nil {
		idemKey = fmt.Sprintf(redisx.KeyIdemSubmit, req.ExternalID)
		if cached, err := h.Redis.Get(ctx, idemKey).Result(); err == nil && cached != "" {
			var rc market.Receipt
			if json.Unmarshal([]byte(cached), &rc) == nil {
				writeJSON(w, http.StatusAccepted, SubmitOrderResp{
					IsOK: true, InvoiceID: rc.InvoiceID, Code: rc.Code,
					TotalCents: rc.TotalCents, Idempotent: true,
				})
				return
			}
		}
	}

	receipt, err := h.Pipeline.Submit(ctx, buyerID, req.Items)
	if err != nil {
		h.publishRejected(buyerID, err)
		switch {
		case errors.Is(err, pipeline.ErrQueueFull), errors.Is(err, pipeline.ErrClosed):
			writeErr(w, http.StatusServiceUnavailable, market.KindQueueFull, err.Error(), nil)
		case errors.Is(err, pipeline.ErrSubmitTimeout):
			writeErr(w, http.StatusGatewayTimeout, market.KindSubmitTimeout, err.Error(), nil)
		default:
			kind := market.Kind(err)
			if kind == market.KindInternal {
				writeErr(w, http.StatusInternalServerError, kind, "order failed", nil)
				return
			}
			writeErr(w, http.StatusUnprocessableEntity, kind, err.Error(), market.ErrData(err))
		}
		return
	}

	if idemKey != "" {
		_ = h.Redis.Set(ctx, idemKey, kafkax.MustMarshal(receipt), redisx.TTLIdempotency).Err()
	}
	h.publishFulfilled(buyerID, receipt, req.Items)

	writeJSON(w, http.StatusAccepted, SubmitOrderResp{
		IsOK: true, InvoiceID: receipt.InvoiceID, Code: receipt.Code, TotalCents: receipt.TotalCents,
	})
}

func (h *MarketHandler) processOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TransactionID == "" {
		writeErr(w, http.StatusBadRequest, market.KindValidation, "missing transaction_id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Ledger.MarkProcessed(ctx, UserID(ctx), req.TransactionID)
	if errors.Is(err, market.ErrTransactionNotFound) {
		writeErr(w, http.StatusNotFound, market.KindTxNotFound, err.Error(), nil)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, market.KindInternal, "mark processed failed", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"is_ok": true})
}

func (h *MarketHandler) listSellerOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	processed := r.URL.Query().Get("status") == "processed"
	data, err := h.Ledger.ListSellerOrders(ctx, UserID(ctx), processed)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, market.KindInternal, "list seller orders failed", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"is_ok": true, "data": data})
}

// ---- invoices & payments ----

func (h *MarketHandler) listInvoices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	settled := r.URL.Query().Get("status") == "lunas"
	data, err := h.Ledger.ListBuyerInvoices(ctx, UserID(ctx), settled)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, market.KindInternal, "list invoices failed", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"is_ok": true, "data": data})
}

type ApplyPaymentReq struct {
	InvoiceID   string `json:"invoice_id"`
	AmountCents int64  `json:"amount_cents"`
}

func (h *MarketHandler) applyPayment(w http.ResponseWriter, r *http.Request) {
	var req ApplyPaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, market.KindValidation, "invalid json", nil)
		return
	}
	if req.InvoiceID == "" || req.AmountCents <= 0 {
		writeErr(w, http.StatusBadRequest, market.KindValidation, "invoice_id and positive amount_cents required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	payerID := UserID(ctx)
	res, err := h.Ledger.ApplyPayment(ctx, req.InvoiceID, payerID, req.AmountCents)
	if errors.Is(err, market.ErrInvoiceNotFound) {
		writeErr(w, http.StatusNotFound, market.KindInvoiceNotFound, err.Error(), nil)
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, market.KindInternal, "payment failed", nil)
		return
	}

	h.publish(h.PubPaid, market.EventPaymentApplied, req.InvoiceID, market.PaymentAppliedPayload{
		InvoiceID: req.InvoiceID, PayerID: payerID, AmountCents: req.AmountCents,
		PaidCents: res.PaidCents, ExcessCents: res.ExcessCents,
	})
	writeJSON(w, http.StatusOK, map[string]any{"is_ok": true})
}

// ---- activity ----

func (h *MarketHandler) activity(w http.ResponseWriter, r *http.Request) {
	if h.Redis == nil {
		writeErr(w, http.StatusServiceUnavailable, market.KindInternal, "activity feed unavailable", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	n := h.FeedLen
	if n <= 0 {
		n = 50
	}
	data, err := notify.Feed(ctx, h.Redis, UserID(ctx), n)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, market.KindInternal, "activity feed unavailable", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"is_ok": true, "data": data})
}

// ---- products ----

func (h *MarketHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	ps, err := h.Catalog.ListProducts(ctx, limit, page)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, market.KindInternal, "list products failed", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"is_ok": true, "data": ps})
}

func (h *MarketHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeCatalogErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *MarketHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in market.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, http.StatusBadRequest, market.KindValidation, "invalid json", nil)
		return
	}
	if err := in.Validate(); err != nil {
		writeErr(w, http.StatusBadRequest, market.KindValidation, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.CreateProduct(ctx, UserID(ctx), in)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, market.KindInternal, "create product failed", nil)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *MarketHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var in market.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, http.StatusBadRequest, market.KindValidation, "invalid json", nil)
		return
	}
	if err := in.Validate(); err != nil {
		writeErr(w, http.StatusBadRequest, market.KindValidation, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.UpdateProduct(ctx, UserID(ctx), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeCatalogErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *MarketHandler) writeCatalogErr(w http.ResponseWriter, err error) {
	if market.Kind(err) == market.KindProductNotFound {
		writeErr(w, http.StatusNotFound, market.KindProductNotFound, err.Error(), market.ErrData(err))
		return
	}
	writeErr(w, http.StatusInternalServerError, market.KindInternal, "catalog unavailable", nil)
}

// ---- event publishing ----

func (h *MarketHandler) publishFulfilled(buyerID string, rc market.Receipt, items []market.CartLine) {
	h.publish(h.PubFulfil, market.EventOrderFulfilled, rc.InvoiceID, market.OrderFulfilledPayload{
		InvoiceID: rc.InvoiceID, Code: rc.Code, BuyerID: buyerID,
		Items: items, TotalCents: rc.TotalCents,
	})
}

func (h *MarketHandler) publishRejected(buyerID string, err error) {
	kind := market.Kind(err)
	if kind != market.KindProductNotFound && kind != market.KindInsufficientStock {
		return // cuma domain reject yang jadi event
	}
	p := market.OrderRejectedPayload{BuyerID: buyerID, Kind: kind}
	var nf *market.ProductNotFoundError
	var is *market.InsufficientStockError
	if errors.As(err, &nf) {
		p.Missing = nf.IDs
	}
	if errors.As(err, &is) {
		p.Shortages = is.Details
	}
	h.publish(h.PubReject, market.EventOrderRejected, buyerID, p)
}

func (h *MarketHandler) publish(pub Publisher, eventType, corrID string, payload any) {
	if pub == nil {
		return
	}
	ev := market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		CorrelationID: corrID,
		Payload:       kafkax.MustMarshal(payload),
	}
	pub.Publish(market.PartitionKey(corrID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
