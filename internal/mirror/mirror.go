// Package mirror — локальное зеркало корзины поверх ключ-значение хранилища.
// Зеркало только подсказка: им пользуются, когда сервер недоступен.
package mirror

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/ports"
)

// Ключи в хранилище.
const (
	KeyItems     = "cartItems"
	KeyTimestamp = "cartTimestamp"
)

var _ ports.MirrorStore = (*Store)(nil)

// Store — зеркало корзины.
type Store struct {
	kv  ports.KeyValueStore
	log ports.Logger
	now func() time.Time
}

func New(kv ports.KeyValueStore, log ports.Logger) *Store {
	return &Store{kv: kv, log: log, now: time.Now}
}

// Save — перезаписать зеркало. Ошибки хранилища только логируются.
func (s *Store) Save(ctx context.Context, cart *domain.Cart) {
	items := []domain.CartItem{}
	if cart != nil {
		items = domain.CloneItems(cart.Items)
	}
	body, err := json.Marshal(items)
	if err != nil {
		s.log.Warnf(ctx, "mirror: encode cart err=%v", err)
		return
	}
	if err := s.kv.Put(ctx, KeyItems, body); err != nil {
		s.log.Warnf(ctx, "mirror: save items err=%v", err)
		return
	}
	stamp := []byte(s.now().UTC().Format(time.RFC3339Nano))
	if err := s.kv.Put(ctx, KeyTimestamp, stamp); err != nil {
		s.log.Warnf(ctx, "mirror: save timestamp err=%v", err)
	}
}

// Load — последняя сохранённая корзина; отсутствие или порча данных — (nil, false).
func (s *Store) Load(ctx context.Context) (*domain.Cart, bool) {
	body, ok, err := s.kv.Get(ctx, KeyItems)
	if err != nil {
		s.log.Warnf(ctx, "mirror: load items err=%v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var items []domain.CartItem
	if err := json.Unmarshal(body, &items); err != nil {
		s.log.Warnf(ctx, "mirror: corrupt items ignored err=%v", err)
		return nil, false
	}
	cart := domain.NewCart("")
	for _, it := range items {
		// порченные позиции не поднимаем в память
		if it.ProductID == "" || it.Quantity < 1 {
			continue
		}
		cart.Add(it)
	}
	cart.UpdatedAt, _ = s.Timestamp(ctx)
	return cart, true
}

// Timestamp — момент последней записи зеркала; false, если его нет.
func (s *Store) Timestamp(ctx context.Context) (time.Time, bool) {
	body, ok, err := s.kv.Get(ctx, KeyTimestamp)
	if err != nil || !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, string(body))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
