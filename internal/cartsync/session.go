// Package cartsync — клиентская синхронизация корзины с сервером-источником истины.
//
// Session держит два представления корзины:
//   - Cart() — последняя корзина, подтверждённая сервером (или поднятая из зеркала,
//     если сервер недоступен);
//   - Items() — локальный список позиций для мгновенной обратной связи: после AddItem
//     он обновляется слиянием, а следующий успешный FetchCart заменяет его серверным.
package cartsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/ports"
)

// LoginPath — куда отправлять пользователя без действующих учётных данных.
const LoginPath = "/login"

// Navigator — колбэк навигации (например, на страницу входа).
// Вызывается под блокировкой сессии и не должен обращаться к ней же.
type Navigator func(path string)

// Session — корзина одного пользователя. Операции сериализуются.
type Session struct {
	backend  ports.CartBackend
	mirror   ports.MirrorStore
	creds    ports.CredentialProvider
	navigate Navigator
	log      ports.Logger
	now      func() time.Time

	mu    sync.Mutex
	cart  *domain.Cart      // nil — ещё ни разу не загружали
	items []domain.CartItem // локальный оптимистичный список
}

// NewSession — navigate может быть nil.
func NewSession(
	backend ports.CartBackend,
	mirror ports.MirrorStore,
	creds ports.CredentialProvider,
	navigate Navigator,
	log ports.Logger,
) *Session {
	if navigate == nil {
		navigate = func(string) {}
	}
	return &Session{
		backend:  backend,
		mirror:   mirror,
		creds:    creds,
		navigate: navigate,
		log:      log,
		now:      time.Now,
		items:    []domain.CartItem{},
	}
}

// FetchCart — корзина с сервера. При сбое сервера — из зеркала, иначе пустая;
// в этом случае ошибка не возвращается.
func (s *Session) FetchCart(ctx context.Context) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.credential()
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, cred)
}

func (s *Session) fetch(ctx context.Context, cred string) (*domain.Cart, error) {
	raws, err := s.backend.FetchCart(ctx, cred)
	if err != nil {
		if s.rejected(err) {
			return nil, err
		}
		s.log.Warnf(ctx, "cart fetch failed, falling back to mirror err=%v", err)
		cart, ok := s.mirror.Load(ctx)
		if !ok {
			cart = domain.NewCart("")
		}
		s.replace(cart)
		return cart.Clone(), nil
	}

	cart := s.confirmed(ctx, raws)
	s.replace(cart)
	s.mirror.Save(ctx, cart)
	return cart.Clone(), nil
}

// AddItem — добавить товар. quantity >= 1; идентификатор товара должен разрешаться.
func (s *Session) AddItem(ctx context.Context, product domain.ProductRef, quantity int) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.credential()
	if err != nil {
		return nil, err
	}
	item, err := itemFor(product, quantity)
	if err != nil {
		return nil, err
	}

	raws, err := s.backend.AddItem(ctx, cred, item)
	if err != nil {
		s.rejected(err)
		return nil, fmt.Errorf("add %s: %w", item.ProductID, err)
	}

	cart := s.confirmed(ctx, raws)
	s.cart = cart
	s.mirror.Save(ctx, cart)

	local := &domain.Cart{Items: s.items}
	local.Add(item)
	s.items = local.Items
	return cart.Clone(), nil
}

// UpdateQuantity — абсолютное количество позиции. quantity < 1 отвергается без запроса к серверу.
func (s *Session) UpdateQuantity(ctx context.Context, ref domain.ProductRef, quantity int) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.credential()
	if err != nil {
		return nil, err
	}
	productID, err := productIDOf(ref)
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity=%d", domain.ErrInvalidQuantity, quantity)
	}

	raws, err := s.backend.UpdateQuantity(ctx, cred, productID, quantity)
	if err != nil {
		s.rejected(err)
		return nil, fmt.Errorf("update %s: %w", productID, err)
	}

	cart := s.confirmed(ctx, raws)
	s.cart = cart
	s.mirror.Save(ctx, cart)

	local := &domain.Cart{Items: s.items}
	_ = local.SetQuantity(productID, quantity) // позиции может не быть в локальном списке
	return cart.Clone(), nil
}

// RemoveItem — удалить позицию.
func (s *Session) RemoveItem(ctx context.Context, ref domain.ProductRef) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.credential()
	if err != nil {
		return nil, err
	}
	productID, err := productIDOf(ref)
	if err != nil {
		return nil, err
	}

	raws, err := s.backend.RemoveItem(ctx, cred, productID)
	if err != nil {
		s.rejected(err)
		return nil, fmt.Errorf("remove %s: %w", productID, err)
	}

	cart := s.confirmed(ctx, raws)
	s.cart = cart
	s.mirror.Save(ctx, cart)

	local := &domain.Cart{Items: s.items}
	local.Remove(productID)
	s.items = local.Items
	return cart.Clone(), nil
}

// ClearCart — удалить корзину целиком.
func (s *Session) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.credential()
	if err != nil {
		return err
	}
	if err := s.backend.ClearCart(ctx, cred); err != nil {
		s.rejected(err)
		return fmt.Errorf("clear cart: %w", err)
	}
	s.reset(ctx)
	return nil
}

// PlaceOrder — оформить заказ из текущей корзины; возвращает id заказа.
// Пустая корзина отвергается до запроса к серверу. Корзина и зеркало
// очищаются только после того, как сервер подтвердил заказ.
func (s *Session) PlaceOrder(ctx context.Context, shipping domain.ShippingDetails, payment domain.PaymentDetails) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.credential()
	if err != nil {
		return "", err
	}
	if s.cart == nil {
		if _, err := s.fetch(ctx, cred); err != nil {
			return "", err
		}
	}
	if s.cart.IsEmpty() {
		return "", domain.ErrEmptyCart
	}

	order, err := s.backend.PlaceOrder(ctx, cred, shipping, payment)
	if err != nil {
		s.rejected(err)
		return "", fmt.Errorf("place order: %w", err)
	}
	s.reset(ctx)
	s.log.Infof(ctx, "order placed id=%s total=%.2f", order.ID, order.Total)
	return order.ID, nil
}

// Orders — заказы текущего пользователя, новые первыми.
func (s *Session) Orders(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.credential()
	if err != nil {
		return nil, err
	}
	orders, err := s.backend.ListOrders(ctx, cred, limit, offset)
	if err != nil {
		s.rejected(err)
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Items — локальный список позиций (мгновенная обратная связь).
func (s *Session) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneItems(s.items)
}

// Cart — последняя подтверждённая корзина; пустая, если ещё не загружали.
func (s *Session) Cart() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return domain.NewCart("")
	}
	return s.cart.Clone()
}

// credential — токен сессии; без него — навигация на вход и ErrUnauthenticated.
func (s *Session) credential() (string, error) {
	cred := ""
	if s.creds != nil {
		cred = strings.TrimSpace(s.creds.Credential())
	}
	if cred == "" {
		s.navigate(LoginPath)
		return "", domain.ErrUnauthenticated
	}
	return cred, nil
}

// rejected — сервер отверг учётные данные: отправляем на вход.
func (s *Session) rejected(err error) bool {
	if errors.Is(err, domain.ErrUnauthenticated) {
		s.navigate(LoginPath)
		return true
	}
	return false
}

// confirmed — корзина из ответа сервера; неразрешимые позиции отбрасываются.
func (s *Session) confirmed(ctx context.Context, raws []domain.RawCartItem) *domain.Cart {
	items, dropped := domain.NormalizeItems(raws)
	if len(dropped) > 0 {
		s.log.Warnf(ctx, "dropped %d cart items without a resolvable product id", len(dropped))
	}
	return &domain.Cart{Items: items, UpdatedAt: s.now().UTC()}
}

func (s *Session) replace(cart *domain.Cart) {
	s.cart = cart
	s.items = domain.CloneItems(cart.Items)
}

func (s *Session) reset(ctx context.Context) {
	empty := domain.NewCart("")
	empty.UpdatedAt = s.now().UTC()
	s.replace(empty)
	s.mirror.Save(ctx, empty)
}

func productIDOf(ref domain.ProductRef) (string, error) {
	id, err := domain.Normalize(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidProduct, err)
	}
	return id, nil
}

// itemFor — позиция для отправки на сервер: имя/цена/картинка берутся из документа товара.
func itemFor(product domain.ProductRef, quantity int) (domain.CartItem, error) {
	id, err := productIDOf(product)
	if err != nil {
		return domain.CartItem{}, err
	}
	if quantity < 1 {
		return domain.CartItem{}, fmt.Errorf("%w: quantity=%d", domain.ErrInvalidQuantity, quantity)
	}

	item := domain.CartItem{ProductID: id, Name: domain.UnknownProductName, Quantity: quantity}
	var doc *domain.ProductDoc
	switch p := product.(type) {
	case domain.ProductDoc:
		doc = &p
	case *domain.ProductDoc:
		doc = p
	}
	if doc != nil {
		if doc.Name != "" {
			item.Name = doc.Name
		}
		if doc.Price != nil && *doc.Price > 0 {
			item.Price = *doc.Price
		}
		item.Image = doc.Image
	}
	return item, nil
}
