package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/voltcart/internal/domain"
)

// manualClock — время, которое двигает тест.
type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func (m *manualClock) now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t
}

func (m *manualClock) add(d time.Duration) {
	m.mu.Lock()
	m.t = m.t.Add(d)
	m.mu.Unlock()
}

func placed(id string) *domain.Order {
	return &domain.Order{
		ID:     id,
		UserID: "u1",
		Status: domain.StatusPending,
		Items:  []domain.CartItem{{ProductID: "breaker-16a", Name: "Breaker 16A", Price: 7.5, Quantity: 2}},
		Total:  15,
	}
}

func cached(t *testing.T, c *OrderCache, id string) bool {
	t.Helper()
	_, ok := c.Get(context.Background(), id)
	return ok
}

func TestOrderCache_SetGet(t *testing.T) {
	c := NewOrderCache(2, 5*time.Minute)
	ctx := context.Background()

	require.False(t, cached(t, c, "01JA"))
	require.NoError(t, c.Set(ctx, placed("01JA")))

	got, ok := c.Get(ctx, "01JA")
	require.True(t, ok)
	require.Equal(t, 15.0, got.Total)

	require.NoError(t, c.Set(ctx, &domain.Order{}), "order without id is skipped")
	require.NoError(t, c.Set(ctx, nil))
	require.Equal(t, 1, c.Len())
}

func TestOrderCache_SlidingTTL(t *testing.T) {
	clock := &manualClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := NewOrderCache(4, time.Minute, WithClock(clock.now))
	require.NoError(t, c.Set(context.Background(), placed("ttl")))

	clock.add(50 * time.Second)
	require.True(t, cached(t, c, "ttl"))
	clock.add(50 * time.Second) // чтение выше продлило срок
	require.True(t, cached(t, c, "ttl"))

	clock.add(61 * time.Second)
	require.False(t, cached(t, c, "ttl"))
	require.Zero(t, c.Len(), "expired entry is dropped on read")
}

func TestOrderCache_ExpiredTailPrunedOnSet(t *testing.T) {
	clock := &manualClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := NewOrderCache(10, time.Minute, WithClock(clock.now))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, placed("old-1")))
	require.NoError(t, c.Set(ctx, placed("old-2")))
	clock.add(2 * time.Minute)
	require.NoError(t, c.Set(ctx, placed("fresh")))

	require.Equal(t, 1, c.Len())
}

func TestOrderCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewOrderCache(2, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, placed("A")))
	require.NoError(t, c.Set(ctx, placed("B")))
	require.True(t, cached(t, c, "A")) // B теперь самый старый
	require.NoError(t, c.Set(ctx, placed("C")))

	require.False(t, cached(t, c, "B"))
	require.True(t, cached(t, c, "A"))
	require.True(t, cached(t, c, "C"))
	require.Equal(t, 2, c.Len())
}

func TestOrderCache_StatusUpdateReplacesEntry(t *testing.T) {
	c := NewOrderCache(2, 0)
	ctx := context.Background()

	o := placed("X")
	require.NoError(t, c.Set(ctx, o))
	o.Status = domain.StatusShipped
	require.NoError(t, c.Set(ctx, o))

	got, ok := c.Get(ctx, "X")
	require.True(t, ok)
	require.Equal(t, domain.StatusShipped, got.Status)
	require.Equal(t, 1, c.Len())
}

// Снаружи нельзя изменить то, что лежит в кэше: ни через исходный заказ, ни через результат Get.
func TestOrderCache_StoresSnapshots(t *testing.T) {
	c := NewOrderCache(1, 0)
	ctx := context.Background()

	orig := placed("Z")
	require.NoError(t, c.Set(ctx, orig))
	orig.Items[0].Quantity = 42

	first, _ := c.Get(ctx, "Z")
	first.Items[0].Name = "tampered"

	second, _ := c.Get(ctx, "Z")
	require.Equal(t, 2, second.Items[0].Quantity)
	require.Equal(t, "Breaker 16A", second.Items[0].Name)
}

func TestOrderCache_WarmUp(t *testing.T) {
	c := NewOrderCache(10, 0)
	batch := []*domain.Order{placed("1"), placed("2")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, c.WarmUp(ctx, batch), context.Canceled)

	require.NoError(t, c.WarmUp(context.Background(), batch))
	require.Equal(t, 2, c.Len())
}

func TestOrderCache_ConcurrentAccess(t *testing.T) {
	c := NewOrderCache(16, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("o-%d", (w*7+i)%32)
				_ = c.Set(ctx, placed(id))
				c.Get(ctx, id)
			}
		}(w)
	}
	wg.Wait()

	require.LessOrEqual(t, c.Len(), 16)
}
