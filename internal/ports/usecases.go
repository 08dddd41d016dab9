package ports

import (
	"context"

	"github.com/Gunvolt24/voltcart/internal/domain"
)

// CartUseCase — серверные операции с корзиной (для транспортного слоя).
type CartUseCase interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

// OrderUseCase — оформление и чтение заказов, администрирование статусов.
type OrderUseCase interface {
	PlaceOrder(ctx context.Context, userID string, shipping domain.ShippingDetails, payment domain.PaymentDetails) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	OrdersByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error)
	ListOrders(ctx context.Context, limit, offset int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
}
