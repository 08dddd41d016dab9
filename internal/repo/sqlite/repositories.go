package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/ports"
)

// Коллекции локального режима.
const (
	CollectionCarts  = "carts"
	CollectionOrders = "orders"
	CollectionLocal  = "local"
)

var (
	_ ports.CartRepository  = (*CartRepository)(nil)
	_ ports.OrderRepository = (*OrderRepository)(nil)
	_ ports.KeyValueStore   = (*Collection)(nil)
)

// CartRepository — корзины как JSON-документы, ключ — userID.
type CartRepository struct {
	store *Store
}

func NewCartRepository(store *Store) *CartRepository { return &CartRepository{store: store} }

func (r *CartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	return getCart(ctx, r.store.Collection(CollectionCarts), userID)
}

func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	if cart == nil || cart.UserID == "" {
		return errors.New("cart is empty or user_id is required")
	}
	body, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return r.store.Collection(CollectionCarts).PutOwned(ctx, cart.UserID, cart.UserID, body)
}

func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	return r.store.Collection(CollectionCarts).Delete(ctx, userID)
}

func getCart(ctx context.Context, c *Collection, userID string) (*domain.Cart, error) {
	body, ok, err := c.Get(ctx, userID)
	if err != nil || !ok {
		return nil, err
	}
	var cart domain.Cart
	if err := json.Unmarshal(body, &cart); err != nil {
		return nil, fmt.Errorf("decode cart user=%s: %w", userID, err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

// OrderRepository — заказы как JSON-документы, ключ — id, владелец — userID.
type OrderRepository struct {
	store *Store
}

func NewOrderRepository(store *Store) *OrderRepository { return &OrderRepository{store: store} }

// PlaceOrder — чтение корзины, запись заказа и удаление корзины в одной транзакции SQLite.
func (r *OrderRepository) PlaceOrder(ctx context.Context, userID string, build ports.OrderBuilder) (*domain.Order, error) {
	var placed *domain.Order
	err := r.store.WithTx(ctx, func(tx *Tx) error {
		carts := tx.Collection(CollectionCarts)
		cart, err := getCart(ctx, carts, userID)
		if err != nil {
			return err
		}
		order, err := build(cart)
		if err != nil {
			return err
		}
		body, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("encode order: %w", err)
		}
		if err := tx.Collection(CollectionOrders).PutOwned(ctx, order.ID, order.UserID, body); err != nil {
			return err
		}
		if err := carts.Delete(ctx, userID); err != nil {
			return err
		}
		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	body, ok, err := r.store.Collection(CollectionOrders).Get(ctx, orderID)
	if err != nil || !ok {
		return nil, err
	}
	return decodeOrder(body)
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error) {
	return r.list(ctx, userID, limit, offset)
}

func (r *OrderRepository) List(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	return r.list(ctx, "", limit, offset)
}

// UpdateStatus — перезапись документа с новым статусом внутри транзакции.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return r.store.WithTx(ctx, func(tx *Tx) error {
		orders := tx.Collection(CollectionOrders)
		body, ok, err := orders.Get(ctx, orderID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrOrderNotFound
		}
		order, err := decodeOrder(body)
		if err != nil {
			return err
		}
		order.Status = status
		if body, err = json.Marshal(order); err != nil {
			return fmt.Errorf("encode order: %w", err)
		}
		return orders.PutOwned(ctx, order.ID, order.UserID, body)
	})
}

func (r *OrderRepository) LastN(ctx context.Context, n int) ([]*domain.Order, error) {
	if n <= 0 {
		return nil, nil
	}
	return r.list(ctx, "", n, 0)
}

// list — новые первыми; пагинация в памяти (локальная база небольшая).
func (r *OrderRepository) list(ctx context.Context, owner string, limit, offset int) ([]*domain.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	docs, err := r.store.Collection(CollectionOrders).List(ctx, owner)
	if err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(docs))
	for _, d := range docs {
		o, err := decodeOrder(d.Body)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].Date.Equal(orders[j].Date) {
			return orders[i].Date.After(orders[j].Date)
		}
		return orders[i].ID > orders[j].ID
	})

	if offset >= len(orders) {
		return []*domain.Order{}, nil
	}
	end := offset + limit
	if end > len(orders) {
		end = len(orders)
	}
	return orders[offset:end], nil
}

func decodeOrder(body []byte) (*domain.Order, error) {
	var o domain.Order
	if err := json.Unmarshal(body, &o); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	o.Date = o.Date.In(time.UTC)
	return &o, nil
}
