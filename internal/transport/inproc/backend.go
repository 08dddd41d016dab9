// Package inproc — шлюз синхронизатора корзины к сценариям в том же процессе
// (локальный режим поверх встроенного хранилища).
package inproc

import (
	"context"
	"fmt"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/ports"
)

var _ ports.CartBackend = (*Backend)(nil)

// Backend — CartBackend без сети: токен проверяется тем же верификатором, что и на сервере.
type Backend struct {
	carts    ports.CartUseCase
	orders   ports.OrderUseCase
	verifier ports.TokenVerifier
}

func New(carts ports.CartUseCase, orders ports.OrderUseCase, verifier ports.TokenVerifier) *Backend {
	return &Backend{carts: carts, orders: orders, verifier: verifier}
}

func (b *Backend) FetchCart(ctx context.Context, credential string) ([]domain.RawCartItem, error) {
	id, err := b.verifier.Verify(credential)
	if err != nil {
		return nil, err
	}
	return rawItems(b.carts.GetCart(ctx, id.UserID))
}

func (b *Backend) AddItem(ctx context.Context, credential string, item domain.CartItem) ([]domain.RawCartItem, error) {
	id, err := b.verifier.Verify(credential)
	if err != nil {
		return nil, err
	}
	return rawItems(b.carts.AddItem(ctx, id.UserID, item))
}

func (b *Backend) UpdateQuantity(ctx context.Context, credential, productID string, quantity int) ([]domain.RawCartItem, error) {
	id, err := b.verifier.Verify(credential)
	if err != nil {
		return nil, err
	}
	return rawItems(b.carts.UpdateQuantity(ctx, id.UserID, productID, quantity))
}

func (b *Backend) RemoveItem(ctx context.Context, credential, productID string) ([]domain.RawCartItem, error) {
	id, err := b.verifier.Verify(credential)
	if err != nil {
		return nil, err
	}
	return rawItems(b.carts.RemoveItem(ctx, id.UserID, productID))
}

func (b *Backend) ClearCart(ctx context.Context, credential string) error {
	id, err := b.verifier.Verify(credential)
	if err != nil {
		return err
	}
	return b.carts.ClearCart(ctx, id.UserID)
}

func (b *Backend) PlaceOrder(
	ctx context.Context,
	credential string,
	shipping domain.ShippingDetails,
	payment domain.PaymentDetails,
) (*domain.Order, error) {
	id, err := b.verifier.Verify(credential)
	if err != nil {
		return nil, err
	}
	return b.orders.PlaceOrder(ctx, id.UserID, shipping, payment)
}

func (b *Backend) ListOrders(ctx context.Context, credential string, limit, offset int) ([]*domain.Order, error) {
	id, err := b.verifier.Verify(credential)
	if err != nil {
		return nil, err
	}
	return b.orders.OrdersByUser(ctx, id.UserID, limit, offset)
}

// UpdateStatus — смена статуса заказа; только для администратора.
func (b *Backend) UpdateStatus(ctx context.Context, credential, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	id, err := b.verifier.Verify(credential)
	if err != nil {
		return nil, err
	}
	if !id.Admin {
		return nil, fmt.Errorf("update status of %s: %w", orderID, domain.ErrForbidden)
	}
	return b.orders.UpdateStatus(ctx, orderID, status)
}

func rawItems(cart *domain.Cart, err error) ([]domain.RawCartItem, error) {
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return []domain.RawCartItem{}, nil
	}
	return domain.RawFromItems(cart.Items), nil
}
