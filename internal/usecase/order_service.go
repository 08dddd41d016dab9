package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/ports"
	"github.com/Gunvolt24/voltcart/pkg/metrics"
	"github.com/Gunvolt24/voltcart/pkg/telemetry"
	"github.com/Gunvolt24/voltcart/pkg/validate"
)

var _ ports.OrderUseCase = (*OrderService)(nil)

// OrderService — прикладная логика работы с заказами (без знаний о транспорте).
type OrderService struct {
	repo      ports.OrderRepository     // заказы и транзакция оформления
	cache     ports.OrderCache          // кэш прочитанных/созданных заказов
	publisher ports.OrderEventPublisher // может быть nil (локальный режим)
	log       ports.Logger
	validator ports.CheckoutValidator

	now   func() time.Time
	newID func(time.Time) string
}

// OrderOption — необязательные зависимости OrderService.
type OrderOption func(*OrderService)

// WithPublisher — публикация событий order.placed после коммита.
func WithPublisher(p ports.OrderEventPublisher) OrderOption {
	return func(s *OrderService) { s.publisher = p }
}

// WithClock — источник времени для даты заказа и его id.
func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

// WithIDGenerator — генератор id заказа (по умолчанию ULID от времени оформления).
func WithIDGenerator(gen func(time.Time) string) OrderOption {
	return func(s *OrderService) { s.newID = gen }
}

// NewOrderService — DI-конструктор.
func NewOrderService(
	repo ports.OrderRepository,
	cache ports.OrderCache,
	log ports.Logger,
	validator ports.CheckoutValidator,
	opts ...OrderOption,
) *OrderService {
	s := &OrderService{
		repo:      repo,
		cache:     cache,
		log:       log,
		validator: validator,
		now:       time.Now,
		newID:     newULID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newULID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
}

// PlaceOrder — оформление заказа. В одной транзакции репозитория:
// корзина читается с блокировкой, снимок позиций становится заказом (Pending),
// заказ сохраняется, корзина удаляется. Пустая корзина — domain.ErrEmptyCart,
// корзина при этом не трогается.
func (s *OrderService) PlaceOrder(
	ctx context.Context,
	userID string,
	shipping domain.ShippingDetails,
	payment domain.PaymentDetails,
) (_ *domain.Order, err error) {
	ctx, span := telemetry.StartSpan(ctx, "order.place", attribute.String("user.id", userID))
	defer func() { telemetry.End(span, err) }()

	if err := s.validator.ValidateCheckout(ctx, &shipping, &payment); err != nil {
		metrics.OrdersPlaced.WithLabelValues("invalid").Inc()
		s.log.Warnf(ctx, "checkout rejected user=%s err=%v", userID, err)
		return nil, err
	}

	start := s.now()
	order, err := s.repo.PlaceOrder(ctx, userID, func(cart *domain.Cart) (*domain.Order, error) {
		if cart.IsEmpty() {
			return nil, domain.ErrEmptyCart
		}
		now := s.now().UTC()
		o := domain.NewOrder(s.newID(now), cart, now, shipping, payment)
		o.UserID = userID
		return o, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCart) {
			metrics.OrdersPlaced.WithLabelValues("empty_cart").Inc()
			s.log.Warnf(ctx, "checkout of empty cart user=%s", userID)
			return nil, err
		}
		metrics.OrdersPlaced.WithLabelValues("error").Inc()
		s.log.Errorf(ctx, "repo.PlaceOrder failed user=%s err=%v", userID, err)
		return nil, fmt.Errorf("place order: %w", err)
	}
	took := s.now().Sub(start)
	metrics.OrdersPlaced.WithLabelValues("ok").Inc()
	metrics.OrderPlaceDuration.Observe(took.Seconds())
	span.SetAttributes(attribute.String("order.id", order.ID), attribute.Int("order.items", len(order.Items)))

	// дальше — только побочные эффекты после коммита: их сбой не отменяет заказ
	if setErr := s.cache.Set(ctx, order); setErr != nil {
		s.log.Warnf(ctx, "cache.Set failed order=%s err=%v", order.ID, setErr)
	}
	if s.publisher != nil {
		if pubErr := s.publisher.PublishOrderPlaced(ctx, order); pubErr != nil {
			s.log.Warnf(ctx, "publish order.placed failed order=%s err=%v", order.ID, pubErr)
		}
	}

	s.log.Infof(ctx, "order placed id=%s user=%s items=%d total=%.2f took=%s",
		order.ID, userID, len(order.Items), order.Total, took)
	return order, nil
}

// GetOrder — сначала из кэша, при промахе — из БД с записью в кэш.
// Отсутствующий заказ — domain.ErrOrderNotFound.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if order, found := s.cache.Get(ctx, orderID); found {
		s.log.Infof(ctx, "cache hit for order=%s", orderID)
		return order, nil
	}
	s.log.Infof(ctx, "cache miss for order=%s", orderID)

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		s.log.Errorf(ctx, "repo.GetByID failed order=%s err=%v", orderID, err)
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	if setErr := s.cache.Set(ctx, order); setErr != nil {
		s.log.Warnf(ctx, "cache.Set failed order=%s err=%v", orderID, setErr)
	}
	return order, nil
}

// OrdersByUser — заказы пользователя, новые первыми (пагинация валидирована выше).
func (s *OrderService) OrdersByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// ListOrders — все заказы (для администратора).
func (s *OrderService) ListOrders(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	return s.repo.List(ctx, limit, offset)
}

// UpdateStatus — единственная мутация заказа. Повтор текущего статуса — успех без записи.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		s.log.Errorf(ctx, "repo.GetByID failed order=%s err=%v", orderID, err)
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	if order.Status == status {
		return order, nil
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatus, order.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		s.log.Errorf(ctx, "repo.UpdateStatus failed order=%s status=%s err=%v", orderID, status, err)
		return nil, err
	}
	order.Status = status
	metrics.OrderStatusUpdates.WithLabelValues(string(status)).Inc()

	if setErr := s.cache.Set(ctx, order); setErr != nil {
		s.log.Warnf(ctx, "cache.Set failed order=%s err=%v", orderID, setErr)
	}
	s.log.Infof(ctx, "order status changed id=%s status=%s", orderID, status)
	return order, nil
}

// statusCommand — команда смены статуса из Kafka.
type statusCommand struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// ApplyStatusMessage — применить команду смены статуса, пришедшую из Kafka (raw JSON).
// Невалидные команды оборачивают validate.ErrInvalidStatusUpdate: повторять их бессмысленно.
// Прочие ошибки (хранилище) — временные.
func (s *OrderService) ApplyStatusMessage(ctx context.Context, raw []byte) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "order.status.apply")
	defer func() { telemetry.End(span, err) }()

	// Строгое декодирование: запрещаем неизвестные поля.
	var cmd statusCommand
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cmd); err != nil {
		s.log.Warnf(ctx, "invalid json err=%v", err)
		return fmt.Errorf("%w: invalid json: %v", validate.ErrInvalidStatusUpdate, err)
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		s.log.Warnf(ctx, "invalid json: trailing data")
		return fmt.Errorf("%w: invalid json: trailing data", validate.ErrInvalidStatusUpdate)
	}
	if cmd.OrderID == "" {
		return fmt.Errorf("%w: order_id обязателен", validate.ErrInvalidStatusUpdate)
	}

	span.SetAttributes(attribute.String("order.id", cmd.OrderID))

	status, err := domain.ParseOrderStatus(cmd.Status)
	if err != nil {
		return fmt.Errorf("%w: %v", validate.ErrInvalidStatusUpdate, err)
	}

	if _, err := s.UpdateStatus(ctx, cmd.OrderID, status); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) || errors.Is(err, domain.ErrInvalidStatus) {
			s.log.Warnf(ctx, "status command rejected order=%s status=%s err=%v", cmd.OrderID, status, err)
			return fmt.Errorf("%w: %v", validate.ErrInvalidStatusUpdate, err)
		}
		return fmt.Errorf("apply status: %w", err)
	}
	return nil
}

// WarmUpCache — прогрев кэша последними N заказами из БД.
// Если n <= 0, прогрев не выполняется (но это не ошибка).
func (s *OrderService) WarmUpCache(ctx context.Context, n int) error {
	if n <= 0 {
		s.log.Warnf(ctx, "cache warm-up skipped: n <= 0 (n=%d)", n)
		return nil
	}

	start := time.Now()
	list, err := s.repo.LastN(ctx, n)
	if err != nil {
		s.log.Errorf(ctx, "repo.LastN failed n=%d err=%v", n, err)
		return err
	}
	if warmUpErr := s.cache.WarmUp(ctx, list); warmUpErr != nil {
		s.log.Warnf(ctx, "cache.WarmUp failed err=%v", warmUpErr)
	}
	s.log.Infof(ctx, "cache warmed with %d orders in %s", len(list), time.Since(start))
	return nil
}
