package ports

import (
	"context"

	"github.com/Gunvolt24/voltcart/internal/domain"
)

// CartRepository — хранилище корзин (сервер-источник истины).
type CartRepository interface {
	// Get — корзина пользователя; (nil, nil), если корзины ещё нет.
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	// Save — полная замена содержимого корзины (last write wins).
	Save(ctx context.Context, cart *domain.Cart) error
	// Delete — удалить корзину целиком; отсутствие корзины не ошибка.
	Delete(ctx context.Context, userID string) error
}
