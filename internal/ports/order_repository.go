package ports

import (
	"context"

	"github.com/Gunvolt24/voltcart/internal/domain"
)

// OrderBuilder — строит заказ из корзины, прочитанной внутри транзакции.
// Ошибка отменяет транзакцию.
type OrderBuilder func(cart *domain.Cart) (*domain.Order, error)

type OrderRepository interface {
	// PlaceOrder — в одной транзакции: читает корзину пользователя (с блокировкой),
	// вызывает build, сохраняет заказ и удаляет корзину.
	// Корзина (nil, если её нет) передаётся в build как есть.
	PlaceOrder(ctx context.Context, userID string, build OrderBuilder) (*domain.Order, error)
	// GetByID — заказ по id; (nil, nil), если не найден.
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Order, error)
	// UpdateStatus — единственная допустимая мутация заказа; domain.ErrOrderNotFound, если заказа нет.
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	LastN(ctx context.Context, n int) ([]*domain.Order, error)
}
