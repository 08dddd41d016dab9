package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/ports"
	"github.com/Gunvolt24/voltcart/pkg/metrics"
)

var _ ports.CartUseCase = (*CartService)(nil)

// CartService — серверная логика корзины: сервер является источником истины.
// Конкурентные записи одного пользователя с разных устройств — last write wins.
type CartService struct {
	repo      ports.CartRepository
	validator ports.CheckoutValidator
	log       ports.Logger
	now       func() time.Time
}

// NewCartService — DI-конструктор.
func NewCartService(repo ports.CartRepository, validator ports.CheckoutValidator, log ports.Logger) *CartService {
	return &CartService{repo: repo, validator: validator, log: log, now: time.Now}
}

// GetCart — корзина пользователя; при первом обращении — пустая (в хранилище не пишется).
func (s *CartService) GetCart(ctx context.Context, userID string) (cart *domain.Cart, err error) {
	defer observeCart("get", &err)

	cart, err = s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem — слияние по productId: существующая позиция увеличивает количество.
func (s *CartService) AddItem(ctx context.Context, userID string, item domain.CartItem) (cart *domain.Cart, err error) {
	defer observeCart("add", &err)

	if err = s.validator.ValidateItem(ctx, &item); err != nil {
		s.log.Warnf(ctx, "cart add rejected user=%s product=%s err=%v", userID, item.ProductID, err)
		return nil, err
	}
	if item.Name == "" {
		item.Name = domain.UnknownProductName
	}

	cart, err = s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Add(item)
	if err = s.save(ctx, cart); err != nil {
		return nil, err
	}
	s.log.Infof(ctx, "cart add user=%s product=%s qty=%d items=%d", userID, item.ProductID, item.Quantity, len(cart.Items))
	return cart, nil
}

// UpdateQuantity — абсолютное количество; меньше 1 отвергается (удаление — только RemoveItem).
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (cart *domain.Cart, err error) {
	defer observeCart("update", &err)

	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity=%d", domain.ErrInvalidQuantity, quantity)
	}
	cart, err = s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err = cart.SetQuantity(productID, quantity); err != nil {
		return nil, fmt.Errorf("update %s: %w", productID, err)
	}
	if err = s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem — идемпотентно: отсутствующая позиция не ошибка.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (cart *domain.Cart, err error) {
	defer observeCart("remove", &err)

	cart, err = s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !cart.Remove(productID) {
		s.log.Infof(ctx, "cart remove: nothing to remove user=%s product=%s", userID, productID)
		return cart, nil
	}
	if err = s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart — удалить корзину целиком.
func (s *CartService) ClearCart(ctx context.Context, userID string) (err error) {
	defer observeCart("clear", &err)

	if err = s.repo.Delete(ctx, userID); err != nil {
		s.log.Errorf(ctx, "repo.Delete cart failed user=%s err=%v", userID, err)
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *CartService) load(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		s.log.Errorf(ctx, "repo.Get cart failed user=%s err=%v", userID, err)
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		return domain.NewCart(userID), nil
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, cart); err != nil {
		s.log.Errorf(ctx, "repo.Save cart failed user=%s err=%v", cart.UserID, err)
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func observeCart(op string, err *error) {
	metrics.CartOperations.WithLabelValues(op, metrics.Result(*err)).Inc()
}
