package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/mlmledger/internal/domain"
	"github.com/iho/mlmledger/internal/usecase"
)

// OrderRepository implements usecase.OrderRepository.
type OrderRepository struct {
	pool Pool
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(pool Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetByID retrieves an order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.get(ctx, r.pool, "", id)
}

// GetByIDForUpdate locks the order row and loads its items.
func (r *OrderRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Order, error) {
	return r.get(ctx, conn(r.pool, tx), "FOR UPDATE", id)
}

func (r *OrderRepository) get(ctx context.Context, q querier, lock, id string) (*domain.Order, error) {
	var (
		o                    domain.Order
		status               string
		total                pgtype.Numeric
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := q.QueryRow(ctx, `
		SELECT id, user_id, status, total_amount, currency, created_at, updated_at
		FROM orders
		WHERE id = $1 `+lock, id).
		Scan(&o.ID, &o.UserID, &status, &total, &o.Currency, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	o.Status = domain.OrderStatus(status)
	o.TotalAmount = numericToDecimal(total)
	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time

	o.Items, err = r.items(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("items of order %s: %w", id, err)
	}

	return &o, nil
}

func (r *OrderRepository) items(ctx context.Context, q querier, orderID string) ([]*domain.OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, vendor_id, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.OrderItem
	for rows.Next() {
		var (
			it                domain.OrderItem
			unitPrice, totalP pgtype.Numeric
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.VendorID, &it.Quantity, &unitPrice, &totalP); err != nil {
			return nil, err
		}
		it.UnitPrice = numericToDecimal(unitPrice)
		it.TotalPrice = numericToDecimal(totalP)
		items = append(items, &it)
	}

	return items, rows.Err()
}

// UpdateStatus sets the order status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.OrderStatus, updatedAt time.Time) error {
	tag, err := conn(r.pool, tx).Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1
	`, id, string(status), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}

	return nil
}

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	pool Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	var (
		p                    domain.Payment
		status               string
		amount               pgtype.Numeric
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, `
		SELECT id, order_id, amount, currency, status, gateway, created_at, updated_at
		FROM payments
		WHERE id = $1
	`, id).Scan(&p.ID, &p.OrderID, &amount, &p.Currency, &status, &p.Gateway, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPaymentNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	p.Amount = numericToDecimal(amount)
	p.Status = domain.PaymentStatus(status)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}
