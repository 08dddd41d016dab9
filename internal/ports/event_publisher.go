package ports

import (
	"context"

	"github.com/Gunvolt24/voltcart/internal/domain"
)

// OrderEventPublisher — публикация событий о заказах во внешнюю шину.
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error
	Close() error
}
