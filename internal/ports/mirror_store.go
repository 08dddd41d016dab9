package ports

import (
	"context"

	"github.com/Gunvolt24/voltcart/internal/domain"
)

// MirrorStore — локальное зеркало корзины. Никогда не авторитетнее сервера.
type MirrorStore interface {
	// Save — перезаписать зеркало; ошибки логируются, а не возвращаются.
	Save(ctx context.Context, cart *domain.Cart)
	// Load — последняя сохранённая корзина; false, если её нет или данные повреждены.
	Load(ctx context.Context) (*domain.Cart, bool)
}
