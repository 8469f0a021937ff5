package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	orderdom "agrifarm/internal/domain/order"
)

// PostgreSQL implementation of order.Repository, selectable over the
// Firestore one via ORDERS_BACKEND=postgres. Kept contract-identical so
// the checkout core holds regardless of which store is swapped in.
type OrderRepositoryPG struct {
	DB *sql.DB
}

func NewOrderRepositoryPG(db *sql.DB) *OrderRepositoryPG {
	return &OrderRepositoryPG{DB: db}
}

// Open connects with the lib/pq driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open postgres: %w", err)
	}
	return db, nil
}

// ========================
// Repository impl
// ========================

func (r *OrderRepositoryPG) CreateWithItems(ctx context.Context, o orderdom.Order, items []orderdom.Item) (orderdom.Order, error) {
	if strings.TrimSpace(o.ID) == "" {
		return orderdom.Order{}, orderdom.ErrInvalidID
	}
	if len(items) == 0 {
		return orderdom.Order{}, orderdom.ErrInvalidItems
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return orderdom.Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	const insOrder = `
INSERT INTO orders (
  id, buyer_id, farmer_id,
  total_amount, commission_amount, delivery_fee, final_amount,
  delivery_address, delivery_commune, delivery_phone, delivery_date, delivery_instructions,
  payment_method, payment_status, gateway_transaction_id,
  created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	if _, err := tx.ExecContext(ctx, insOrder,
		o.ID, o.BuyerID, o.FarmerID,
		o.TotalAmount, o.CommissionAmount, o.DeliveryFee, o.FinalAmount,
		o.DeliveryAddress, o.DeliveryCommune, o.DeliveryPhone, o.DeliveryDate, o.DeliveryInstructions,
		string(o.PaymentMethod), string(o.PaymentStatus), nullString(o.GatewayTransactionID),
		o.CreatedAt, o.UpdatedAt,
	); err != nil {
		return orderdom.Order{}, err
	}

	const insItem = `
INSERT INTO order_items (order_id, product_id, quantity, unit_price, total_price)
VALUES ($1,$2,$3,$4,$5)`

	for _, it := range items {
		if _, err := tx.ExecContext(ctx, insItem,
			it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.TotalPrice,
		); err != nil {
			return orderdom.Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return orderdom.Order{}, err
	}
	return o, nil
}

func (r *OrderRepositoryPG) GetByID(ctx context.Context, id string) (orderdom.Order, error) {
	const q = orderSelect + ` WHERE id = $1`
	row := r.DB.QueryRowContext(ctx, q, strings.TrimSpace(id))
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orderdom.Order{}, orderdom.ErrNotFound
		}
		return orderdom.Order{}, err
	}
	return o, nil
}

func (r *OrderRepositoryPG) GetByTransactionID(ctx context.Context, transactionID string) (orderdom.Order, error) {
	tid := strings.TrimSpace(transactionID)
	if tid == "" {
		return orderdom.Order{}, orderdom.ErrInvalidTransactionID
	}

	const q = orderSelect + ` WHERE gateway_transaction_id = $1`
	row := r.DB.QueryRowContext(ctx, q, tid)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orderdom.Order{}, orderdom.ErrNotFound
		}
		return orderdom.Order{}, err
	}
	return o, nil
}

func (r *OrderRepositoryPG) GetItems(ctx context.Context, orderID string) ([]orderdom.Item, error) {
	const q = `
SELECT order_id, product_id, quantity, unit_price, total_price
FROM order_items
WHERE order_id = $1
ORDER BY product_id`

	rows, err := r.DB.QueryContext(ctx, q, strings.TrimSpace(orderID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []orderdom.Item{}
	for rows.Next() {
		var it orderdom.Item
		if err := rows.Scan(&it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Save persists the mutable payment fields, conditioned on the order id.
func (r *OrderRepositoryPG) Save(ctx context.Context, o orderdom.Order) (orderdom.Order, error) {
	if strings.TrimSpace(o.ID) == "" {
		return orderdom.Order{}, orderdom.ErrInvalidID
	}

	const q = `
UPDATE orders
SET payment_status = $2, gateway_transaction_id = $3, updated_at = $4
WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, q, o.ID, string(o.PaymentStatus), nullString(o.GatewayTransactionID), o.UpdatedAt)
	if err != nil {
		return orderdom.Order{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return o, nil
}

// ========================
// Helpers
// ========================

const orderSelect = `
SELECT
  id, buyer_id, farmer_id,
  total_amount, commission_amount, delivery_fee, final_amount,
  delivery_address, delivery_commune, delivery_phone, delivery_date, delivery_instructions,
  payment_method, payment_status, gateway_transaction_id,
  created_at, updated_at
FROM orders`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (orderdom.Order, error) {
	var (
		o      orderdom.Order
		method string
		stat   string
		txnID  sql.NullString
		cAt    time.Time
		uAt    time.Time
	)
	if err := row.Scan(
		&o.ID, &o.BuyerID, &o.FarmerID,
		&o.TotalAmount, &o.CommissionAmount, &o.DeliveryFee, &o.FinalAmount,
		&o.DeliveryAddress, &o.DeliveryCommune, &o.DeliveryPhone, &o.DeliveryDate, &o.DeliveryInstructions,
		&method, &stat, &txnID,
		&cAt, &uAt,
	); err != nil {
		return orderdom.Order{}, err
	}
	o.PaymentMethod = orderdom.PaymentMethod(method)
	o.PaymentStatus = orderdom.PaymentStatus(stat)
	o.GatewayTransactionID = txnID.String
	o.CreatedAt = cAt
	o.UpdatedAt = uAt
	return o, nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
