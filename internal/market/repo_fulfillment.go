package market

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type FulfillmentRepo struct{ DB *pgxpool.Pool }

// CheckAvailability classifies a cart against the locked stock rows. Ids
// absent from stocks fail the whole cart as not found; otherwise every line
// whose qty exceeds stock is collected into one InsufficientStockError.
// Nil only when every line can be reserved.
func CheckAvailability(stocks map[string]int, items []CartLine) error {
	var missing []string
	for _, it := range items {
		if _, ok := stocks[it.ProductID]; !ok {
			missing = append(missing, it.ProductID)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ProductNotFoundError{IDs: missing}
	}

	var shortages []StockShortage
	for _, it := range items {
		if stock := stocks[it.ProductID]; stock < it.Qty {
			shortages = append(shortages, StockShortage{
				ProductID: it.ProductID, Requested: it.Qty, Available: stock,
			})
		}
	}
	if len(shortages) > 0 {
		return &InsufficientStockError{Details: shortages}
	}
	return nil
}

// FulfillOrder: lock stok per product (FOR UPDATE) -> validasi -> kurangi ->
// tulis invoice + transaction lines, semua dalam satu tx. Kalau ada satu line
// yang gagal, tidak ada perubahan yang di-commit (rollback).
func (r *FulfillmentRepo) FulfillOrder(ctx context.Context, buyerID string, items []CartLine) (Receipt, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Receipt{}, errors.Wrap(err, "begin fulfillment tx")
	}
	defer tx.Rollback(ctx)

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	// urutan lock stabil antar proses
	sort.Strings(ids)

	rows, err := tx.Query(ctx, `SELECT id, stock FROM products WHERE id = ANY($1) FOR UPDATE`, ids)
	if err != nil {
		return Receipt{}, errors.Wrap(err, "lock products")
	}
	stocks := make(map[string]int, len(ids))
	for rows.Next() {
		var id string
		var stock int
		if err := rows.Scan(&id, &stock); err != nil {
			rows.Close()
			return Receipt{}, errors.Wrap(err, "scan product")
		}
		stocks[id] = stock
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Receipt{}, errors.Wrap(err, "read products")
	}

	if err := CheckAvailability(stocks, items); err != nil {
		return Receipt{}, err // rollback via defer
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1`,
			it.ProductID, it.Qty); err != nil {
			return Receipt{}, errors.Wrapf(err, "decrement stock product=%s", it.ProductID)
		}
	}

	invoiceID := uuid.NewString()
	code := NewInvoiceCode(time.Now())
	total := CartTotal(items)
	if _, err := tx.Exec(ctx, `
		INSERT INTO invoices(id, code, total_cents, paid_cents, buyer_id)
		VALUES ($1, $2, $3, 0, $4)`,
		invoiceID, code, total, buyerID); err != nil {
		return Receipt{}, errors.Wrap(err, "insert invoice")
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO transactions(id, product_id, qty, invoice_id, processed)
			VALUES ($1, $2, $3, $4, false)`,
			uuid.NewString(), it.ProductID, it.Qty, invoiceID); err != nil {
			return Receipt{}, errors.Wrapf(err, "insert transaction product=%s", it.ProductID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Receipt{}, errors.Wrap(err, "commit fulfillment")
	}
	return Receipt{InvoiceID: invoiceID, Code: code, TotalCents: total}, nil
}
