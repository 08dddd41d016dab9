// Package memory — процессный кэш оформленных заказов.
package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/ports"
	"github.com/Gunvolt24/voltcart/pkg/metrics"
)

var _ ports.OrderCache = (*OrderCache)(nil)

type cachedOrder struct {
	order    *domain.Order
	deadline time.Time // нулевой — бессрочно
}

// OrderCache — LRU заказов с ограниченной ёмкостью и скользящим TTL:
// чтение продлевает срок. Наружу и внутрь идут только копии (Order.Clone),
// так что снимок позиций заказа в кэше никто не изменит.
type OrderCache struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu   sync.Mutex
	lru  *list.List // front — самый свежий; Value — *cachedOrder
	byID map[string]*list.Element
}

// Option — настройка кэша.
type Option func(*OrderCache)

// WithClock подменяет часы (тесты TTL).
func WithClock(now func() time.Time) Option {
	return func(c *OrderCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewOrderCache — capacity < 1 трактуется как 1, ttl <= 0 — без истечения.
func NewOrderCache(capacity int, ttl time.Duration, opts ...Option) *OrderCache {
	c := &OrderCache{
		capacity: max(capacity, 1),
		ttl:      ttl,
		now:      time.Now,
		lru:      list.New(),
		byID:     make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *OrderCache) Get(_ context.Context, orderID string) (*domain.Order, bool) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byID[orderID]
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return nil, false
	}
	co := el.Value.(*cachedOrder)
	if c.expired(co, now) {
		c.drop(el, "expired")
		return nil, false
	}
	co.deadline = c.deadlineFrom(now)
	c.lru.MoveToFront(el)
	metrics.CacheOps.WithLabelValues("hit").Inc()
	return co.order.Clone(), true
}

// Set кладёт копию заказа; заказ без ID пропускается.
func (c *OrderCache) Set(_ context.Context, order *domain.Order) error {
	if order == nil || order.ID == "" {
		return nil
	}
	now := c.now()
	snapshot := order.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byID[order.ID]; ok {
		el.Value = &cachedOrder{order: snapshot, deadline: c.deadlineFrom(now)}
		c.lru.MoveToFront(el)
		return nil
	}

	c.dropExpiredTail(now)
	c.byID[order.ID] = c.lru.PushFront(&cachedOrder{order: snapshot, deadline: c.deadlineFrom(now)})
	for c.lru.Len() > c.capacity {
		c.drop(c.lru.Back(), "evicted")
	}
	metrics.CacheSize.Set(float64(len(c.byID)))
	return nil
}

// WarmUp загружает пачку заказов; отмена ctx прерывает загрузку.
func (c *OrderCache) WarmUp(ctx context.Context, orders []*domain.Order) error {
	for _, o := range orders {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Set(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

// Len — число записей, включая просроченные, которые ещё не вычищены.
func (c *OrderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// drop, dropExpiredTail, expired, deadlineFrom — под c.mu.

func (c *OrderCache) drop(el *list.Element, reason string) {
	co := c.lru.Remove(el).(*cachedOrder)
	delete(c.byID, co.order.ID)
	metrics.CacheOps.WithLabelValues(reason).Inc()
	metrics.CacheSize.Set(float64(len(c.byID)))
}

// dropExpiredTail снимает просроченные записи с хвоста до первой живой.
func (c *OrderCache) dropExpiredTail(now time.Time) {
	if c.ttl <= 0 {
		return
	}
	for el := c.lru.Back(); el != nil && c.expired(el.Value.(*cachedOrder), now); el = c.lru.Back() {
		c.drop(el, "expired")
	}
}

func (c *OrderCache) expired(co *cachedOrder, now time.Time) bool {
	return !co.deadline.IsZero() && now.After(co.deadline)
}

func (c *OrderCache) deadlineFrom(now time.Time) time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(c.ttl)
}
