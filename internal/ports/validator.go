package ports

import (
	"context"

	"github.com/Gunvolt24/voltcart/internal/domain"
)

// CheckoutValidator — проверка данных, приходящих от клиента.
type CheckoutValidator interface {
	ValidateItem(ctx context.Context, item *domain.CartItem) error
	ValidateCheckout(ctx context.Context, shipping *domain.ShippingDetails, payment *domain.PaymentDetails) error
}
