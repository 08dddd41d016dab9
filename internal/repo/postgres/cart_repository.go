package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/ports"
)

var _ ports.CartRepository = (*CartRepository)(nil)

// CartRepository — корзины в Postgres: строка carts + упорядоченные cart_items.
type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository { return &CartRepository{pool: pool} }

// Get — корзина пользователя; (nil, nil), если её нет.
func (r *CartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	return loadCart(ctx, r.pool, userID, false)
}

// Save — полная замена позиций корзины в одной транзакции.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	if cart == nil || cart.UserID == "" {
		return errors.New("cart is empty or user_id is required")
	}
	updatedAt := cart.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO carts (user_id, updated_at) VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
		`, cart.UserID, updatedAt); err != nil {
			return fmt.Errorf("upsert cart: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, cart.UserID); err != nil {
			return fmt.Errorf("delete cart items: %w", err)
		}
		if len(cart.Items) == 0 {
			return nil
		}
		return copyCartItems(ctx, tx, cart.UserID, cart.Items)
	})
}

// Delete — удалить корзину (позиции уходят каскадом). Отсутствие корзины не ошибка.
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// loadCart — чтение корзины; forUpdate блокирует строку carts до конца транзакции.
func loadCart(ctx context.Context, q querier, userID string, forUpdate bool) (*domain.Cart, error) {
	query := `SELECT user_id, updated_at FROM carts WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	cart := &domain.Cart{Items: []domain.CartItem{}}
	err := q.QueryRow(ctx, query, userID).Scan(&cart.UserID, &cart.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select cart: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT product_id, name, price, image, quantity
		FROM cart_items WHERE user_id = $1
		ORDER BY position
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Price, &it.Image, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cart items rows: %w", err)
	}
	return cart, nil
}

// copyCartItems — вставка позиций через COPY; position сохраняет порядок добавления.
func copyCartItems(ctx context.Context, tx pgx.Tx, userID string, items []domain.CartItem) error {
	rows := make([][]any, 0, len(items))
	for i, it := range items {
		rows = append(rows, []any{userID, it.ProductID, i, it.Name, it.Price, it.Image, it.Quantity})
	}
	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"cart_items"},
		[]string{"user_id", "product_id", "position", "name", "price", "image", "quantity"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy cart items: %w", err)
	}
	return nil
}
