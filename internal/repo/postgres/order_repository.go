package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/ports"
)

// Проверка, что OrderRepository удовлетворяет интерфейсу OrderRepository.
var _ ports.OrderRepository = (*OrderRepository)(nil)

// OrderRepository — заказы в Postgres (pgxpool).
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository - конструктор OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository { return &OrderRepository{pool: pool} }

const orderColumns = `id, user_id, total, status, created_at, shipping, payment`

// PlaceOrder — транзакция оформления: блокируем строку корзины (FOR UPDATE), строим заказ,
// пишем orders + order_items, удаляем корзину. Любая ошибка — откат, корзина остаётся.
func (r *OrderRepository) PlaceOrder(ctx context.Context, userID string, build ports.OrderBuilder) (*domain.Order, error) {
	var placed *domain.Order
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		cart, err := loadCart(ctx, tx, userID, true)
		if err != nil {
			return err
		}

		order, err := build(cart)
		if err != nil {
			return err
		}
		if err := insertOrder(ctx, tx, order); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}
		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// GetByID — заказ по id. Если не нашли, возвращает (nil, nil).
func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	orders, err := r.selectOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return orders[0], nil
}

// ListByUser — постраничный список заказов пользователя, новые первыми.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error) {
	limit, offset = normalizePage(limit, offset)
	return r.selectOrders(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
}

// List — постраничный список всех заказов.
func (r *OrderRepository) List(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	limit, offset = normalizePage(limit, offset)
	return r.selectOrders(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
}

// UpdateStatus — меняет только status; позиции и сумма неизменны.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, string(status))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// LastN — последние N заказов (для прогрева кэша).
func (r *OrderRepository) LastN(ctx context.Context, n int) ([]*domain.Order, error) {
	if n <= 0 {
		return nil, nil
	}
	return r.selectOrders(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, n)
}

// selectOrders — два запроса на страницу: базовые заказы и все их позиции (ANY),
// затем склейка в памяти с сохранением порядка базового SELECT.
func (r *OrderRepository) selectOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	var (
		orders []*domain.Order
		byID   = make(map[string]*domain.Order)
		ids    []string
	)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, order)
		byID[order.ID] = order
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("orders rows: %w", err)
	}
	rows.Close()

	if len(orders) == 0 {
		return []*domain.Order{}, nil
	}

	iRows, err := r.pool.Query(ctx, `
		SELECT order_id, product_id, name, price, image, quantity
		FROM order_items
		WHERE order_id = ANY($1::text[])
		ORDER BY order_id, position
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer iRows.Close()

	for iRows.Next() {
		var (
			id string
			it domain.CartItem
		)
		if err := iRows.Scan(&id, &it.ProductID, &it.Name, &it.Price, &it.Image, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if order := byID[id]; order != nil {
			order.Items = append(order.Items, it)
		}
	}
	if err := iRows.Err(); err != nil {
		return nil, fmt.Errorf("order items rows: %w", err)
	}
	return orders, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order             domain.Order
		status            string
		shipping, payment []byte
	)
	if err := row.Scan(&order.ID, &order.UserID, &order.Total, &status, &order.Date, &shipping, &payment); err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	order.Status = domain.OrderStatus(status)
	order.Date = order.Date.UTC()
	order.Items = []domain.CartItem{}
	if err := json.Unmarshal(shipping, &order.ShippingDetails); err != nil {
		return nil, fmt.Errorf("decode shipping order=%s: %w", order.ID, err)
	}
	if err := json.Unmarshal(payment, &order.PaymentDetails); err != nil {
		return nil, fmt.Errorf("decode payment order=%s: %w", order.ID, err)
	}
	return &order, nil
}

func insertOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	if order == nil || order.ID == "" {
		return errors.New("order is empty or id is required")
	}
	shipping, err := json.Marshal(order.ShippingDetails)
	if err != nil {
		return fmt.Errorf("encode shipping: %w", err)
	}
	payment, err := json.Marshal(order.PaymentDetails)
	if err != nil {
		return fmt.Errorf("encode payment: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, order.ID, order.UserID, order.Total, string(order.Status), order.Date, shipping, payment); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	rows := make([][]any, 0, len(order.Items))
	for i, it := range order.Items {
		rows = append(rows, []any{order.ID, i, it.ProductID, it.Name, it.Price, it.Image, it.Quantity})
	}
	if _, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"order_items"},
		[]string{"order_id", "position", "product_id", "name", "price", "image", "quantity"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copy order items: %w", err)
	}
	return nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
