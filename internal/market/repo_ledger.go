package market

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type LedgerRepo struct{ DB *pgxpool.Pool }

type PaymentResult struct {
	PaidCents   int64
	ExcessCents int64
}

// Settle splits a payment against an invoice total: paid caps at total,
// anything beyond it is excess credited back to the payer.
func Settle(totalCents, amountCents int64) PaymentResult {
	excess := amountCents - totalCents
	if excess < 0 {
		excess = 0
	}
	paid := amountCents
	if paid > totalCents {
		paid = totalCents
	}
	return PaymentResult{PaidCents: paid, ExcessCents: excess}
}

// ApplyPayment: lock invoice + payer row, hitung sisa, kredit balance, lalu
// overwrite paid_cents. Satu reconciliation menimpa paid, bukan menambah.
func (r *LedgerRepo) ApplyPayment(ctx context.Context, invoiceID, payerID string, amountCents int64) (PaymentResult, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return PaymentResult{}, errors.Wrap(err, "begin payment tx")
	}
	defer tx.Rollback(ctx)

	var total int64
	err = tx.QueryRow(ctx, `SELECT total_cents FROM invoices WHERE id=$1 FOR UPDATE`, invoiceID).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return PaymentResult{}, ErrInvoiceNotFound
	}
	if err != nil {
		return PaymentResult{}, errors.Wrap(err, "lock invoice")
	}

	// lock payer juga; dua pembayaran concurrent tidak boleh saling timpa
	var balance int64
	if err := tx.QueryRow(ctx, `SELECT balance_cents FROM users WHERE id=$1 FOR UPDATE`, payerID).Scan(&balance); err != nil {
		return PaymentResult{}, errors.Wrap(err, "lock payer")
	}

	res := Settle(total, amountCents)
	if res.ExcessCents > 0 {
		if _, err := tx.Exec(ctx, `UPDATE users SET balance_cents = balance_cents + $2 WHERE id=$1`,
			payerID, res.ExcessCents); err != nil {
			return PaymentResult{}, errors.Wrap(err, "credit payer balance")
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE invoices SET paid_cents = $2 WHERE id=$1`,
		invoiceID, res.PaidCents); err != nil {
		return PaymentResult{}, errors.Wrap(err, "update invoice paid")
	}

	if err := tx.Commit(ctx); err != nil {
		return PaymentResult{}, errors.Wrap(err, "commit payment")
	}
	return res, nil
}

// ListBuyerInvoices: settled ("lunas") berarti paid == total, selain itu
// masih ada sisa tagihan (total > paid).
func (r *LedgerRepo) ListBuyerInvoices(ctx context.Context, buyerID string, settled bool) ([]Invoice, error) {
	cond := `i.total_cents > i.paid_cents`
	if settled {
		cond = `i.total_cents = i.paid_cents`
	}
	rows, err := r.DB.Query(ctx, `
		SELECT i.id, i.code, i.total_cents, i.paid_cents, i.buyer_id, i.created_at
		FROM invoices i
		WHERE i.buyer_id = $1 AND `+cond+`
		ORDER BY i.created_at DESC`, buyerID)
	if err != nil {
		return nil, errors.Wrap(err, "list buyer invoices")
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.Code, &inv.TotalCents, &inv.PaidCents, &inv.BuyerID, &inv.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan invoice")
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// ListSellerOrders: line items milik seller, filter processed, hanya dari
// invoice yang sudah lunas.
func (r *LedgerRepo) ListSellerOrders(ctx context.Context, sellerID string, processed bool) ([]SellerOrder, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT t.id, t.product_id, t.qty, t.invoice_id, t.processed, t.created_at,
		       i.code, i.total_cents, i.paid_cents
		FROM transactions t
		JOIN products p ON p.id = t.product_id
		JOIN invoices i ON i.id = t.invoice_id
		WHERE p.owner_id = $1 AND t.processed = $2 AND i.paid_cents = i.total_cents
		ORDER BY t.created_at DESC`, sellerID, processed)
	if err != nil {
		return nil, errors.Wrap(err, "list seller orders")
	}
	defer rows.Close()

	var out []SellerOrder
	for rows.Next() {
		var o SellerOrder
		if err := rows.Scan(&o.ID, &o.ProductID, &o.Qty, &o.InvoiceID, &o.Processed, &o.CreatedAt,
			&o.InvoiceCode, &o.TotalCents, &o.PaidCents); err != nil {
			return nil, errors.Wrap(err, "scan seller order")
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// MarkProcessed: transisi satu arah false -> true, idempotent. Hanya line
// milik seller pada invoice lunas yang bisa di-mark; selain itu not found.
func (r *LedgerRepo) MarkProcessed(ctx context.Context, sellerID, txID string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin mark tx")
	}
	defer tx.Rollback(ctx)

	var processed bool
	err = tx.QueryRow(ctx, `
		SELECT t.processed
		FROM transactions t
		JOIN products p ON p.id = t.product_id
		JOIN invoices i ON i.id = t.invoice_id
		WHERE t.id = $1 AND p.owner_id = $2 AND i.paid_cents = i.total_cents
		FOR UPDATE OF t`, txID, sellerID).Scan(&processed)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrTransactionNotFound
	}
	if err != nil {
		return errors.Wrap(err, "lock transaction")
	}
	if processed {
		return tx.Commit(ctx) // sudah diproses, no-op
	}

	if _, err := tx.Exec(ctx, `UPDATE transactions SET processed = true WHERE id = $1`, txID); err != nil {
		return errors.Wrap(err, "mark processed")
	}
	return errors.Wrap(tx.Commit(ctx), "commit mark")
}
