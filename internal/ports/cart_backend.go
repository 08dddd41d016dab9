package ports

import (
	"context"

	"github.com/Gunvolt24/voltcart/internal/domain"
)

// CartBackend — шлюз синхронизатора корзины к серверу-источнику истины
// (удалённый HTTP API или встроенное хранилище). credential — bearer-токен.
// Отказ сервера в авторизации возвращается как domain.ErrUnauthenticated,
// сетевые/серверные сбои — как обёртка над domain.ErrUnreachable.
type CartBackend interface {
	FetchCart(ctx context.Context, credential string) ([]domain.RawCartItem, error)
	AddItem(ctx context.Context, credential string, item domain.CartItem) ([]domain.RawCartItem, error)
	UpdateQuantity(ctx context.Context, credential, productID string, quantity int) ([]domain.RawCartItem, error)
	RemoveItem(ctx context.Context, credential, productID string) ([]domain.RawCartItem, error)
	ClearCart(ctx context.Context, credential string) error
	PlaceOrder(ctx context.Context, credential string, shipping domain.ShippingDetails, payment domain.PaymentDetails) (*domain.Order, error)
	ListOrders(ctx context.Context, credential string, limit, offset int) ([]*domain.Order, error)
}

// CredentialProvider — источник bearer-токена текущей сессии ("" — нет токена).
type CredentialProvider interface {
	Credential() string
}

// CredentialFunc — адаптер функции к CredentialProvider.
type CredentialFunc func() string

func (f CredentialFunc) Credential() string { return f() }
