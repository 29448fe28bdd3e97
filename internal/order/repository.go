package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tokopay-be/internal/payment"

	"github.com/lib/pq"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByProviderRef(ctx context.Context, providerRef string) (*Order, error)

	AttachInvoice(ctx context.Context, id, providerRef, invoiceURL string) error
	MarkPaymentFailed(ctx context.Context, id, reason string) error
	UpdatePaymentStatus(ctx context.Context, id string, status payment.Status, providerRef, failureReason string, paidAt *time.Time) error
	SetPaidNotified(ctx context.Context, id string) error

	List(ctx context.Context, status payment.Status, limit int, cursor string) ([]*Order, string, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	id, invoice_number,
	customer_name, customer_phone, customer_email, customer_address,
	subtotal, tax, shipping_fee, total_amount, currency,
	payment_provider, payment_provider_ref, payment_status,
	payment_invoice_url, payment_channel, payment_failure_reason,
	paid_at, notif_paid_sent, notes, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*Order, error) {
	var o Order
	var paidAt sql.NullTime

	err := row.Scan(
		&o.ID, &o.InvoiceNumber,
		&o.Customer.Name, &o.Customer.Phone, &o.Customer.Email, &o.Customer.Address,
		&o.Amounts.Subtotal, &o.Amounts.Tax, &o.Amounts.Shipping, &o.Amounts.Total, &o.Amounts.Currency,
		&o.Payment.Provider, &o.Payment.ProviderRef, &o.Payment.Status,
		&o.Payment.InvoiceURL, &o.Payment.Channel, &o.Payment.FailureReason,
		&paidAt, &o.Payment.NotifPaidSent, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if paidAt.Valid {
		t := paidAt.Time
		o.Payment.PaidAt = &t
	}
	return &o, nil
}

// Create persists the order and its items in one transaction. The only
// writes after this are single-row payment updates.
func (r *repository) Create(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, invoice_number,
			customer_name, customer_phone, customer_email, customer_address,
			subtotal, tax, shipping_fee, total_amount, currency,
			payment_provider, payment_status, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		o.ID, o.InvoiceNumber,
		o.Customer.Name, o.Customer.Phone, o.Customer.Email, o.Customer.Address,
		o.Amounts.Subtotal, o.Amounts.Tax, o.Amounts.Shipping, o.Amounts.Total, o.Amounts.Currency,
		o.Payment.Provider, o.Payment.Status, o.Notes,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, name, unit_price, quantity, line_total
			) VALUES ($1,$2,$3,$4,$5,$6)
		`, o.ID, item.ProductID, item.Name, item.UnitPrice, item.Quantity, item.LineTotal)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) GetByProviderRef(ctx context.Context, providerRef string) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE payment_provider_ref = $1`, providerRef)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) loadItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[string]*Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, name, unit_price, quantity, line_total
		FROM order_items WHERE order_id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var item OrderItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.UnitPrice, &item.Quantity, &item.LineTotal); err != nil {
			return err
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

// AttachInvoice records the provider invoice on a freshly created order.
// Status stays PENDING.
func (r *repository) AttachInvoice(ctx context.Context, id, providerRef, invoiceURL string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_provider_ref = $2,
		    payment_invoice_url = $3,
		    payment_failure_reason = '',
		    updated_at = now()
		WHERE id = $1
	`, id, providerRef, invoiceURL)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *repository) MarkPaymentFailed(ctx context.Context, id, reason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = $2,
		    payment_failure_reason = $3,
		    updated_at = now()
		WHERE id = $1
	`, id, payment.StatusFailed, reason)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, id string, status payment.Status, providerRef, failureReason string, paidAt *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = $2,
		    payment_provider_ref = CASE WHEN $3 <> '' THEN $3 ELSE payment_provider_ref END,
		    payment_failure_reason = $4,
		    paid_at = COALESCE($5, paid_at),
		    updated_at = now()
		WHERE id = $1
	`, id, status, providerRef, failureReason, paidAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *repository) SetPaidNotified(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET notif_paid_sent = TRUE,
		    updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// List returns a page of orders, newest first, with an opaque id cursor.
// An empty status lists all orders.
func (r *repository) List(ctx context.Context, status payment.Status, limit int, cursor string) ([]*Order, string, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 200 {
		limit = 200
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []interface{}{}
	where := ""

	if status != "" {
		args = append(args, status)
		where = fmt.Sprintf(" WHERE payment_status = $%d", len(args))
	}
	if cursor != "" {
		args = append(args, cursor)
		clause := fmt.Sprintf("(created_at, id) < (SELECT created_at, id FROM orders WHERE id = $%d)", len(args))
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}

	args = append(args, limit+1)
	query += where + fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, "", err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(orders) > limit {
		orders = orders[:limit]
		nextCursor = orders[len(orders)-1].ID
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, "", err
	}

	return orders, nextCursor, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
