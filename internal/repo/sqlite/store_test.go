package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/repo/sqlite"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCollection_PutGetDelete(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	c := s.Collection(sqlite.CollectionLocal)

	_, ok, err := c.Get(ctx, "cartItems")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Put(ctx, "cartItems", []byte(`[1]`)))
	require.NoError(t, c.Put(ctx, "cartItems", []byte(`[2]`)))
	body, ok, err := c.Get(ctx, "cartItems")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[2]`, string(body))

	// коллекции изолированы
	_, ok, err = s.Collection("other").Get(ctx, "cartItems")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Delete(ctx, "cartItems"))
	require.NoError(t, c.Delete(ctx, "cartItems"))
	_, ok, _ = c.Get(ctx, "cartItems")
	require.False(t, ok)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")
	ctx := context.Background()

	s1, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s1.Collection("local").Put(ctx, "k", []byte("v")))
	require.NoError(t, s1.Close())

	s2, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer s2.Close()
	body, ok, err := s2.Collection("local").Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", string(body))
}

func TestWithTx_RollbackOnError(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx *sqlite.Tx) error {
		require.NoError(t, tx.Collection("local").Put(ctx, "k", []byte("v")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, ok, err := s.Collection("local").Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok, "write inside failed transaction must be rolled back")
}

func TestOrderRepository_PlaceOrderClearsCart(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	carts := sqlite.NewCartRepository(s)
	orders := sqlite.NewOrderRepository(s)

	cart := domain.NewCart("u1")
	cart.Add(domain.CartItem{ProductID: "lamp", Name: "Lamp", Price: 99.99, Quantity: 2})
	cart.Add(domain.CartItem{ProductID: "cable", Name: "Cable", Price: 49.99, Quantity: 1})
	require.NoError(t, carts.Save(ctx, cart))

	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	order, err := orders.PlaceOrder(ctx, "u1", func(c *domain.Cart) (*domain.Order, error) {
		return domain.NewOrder("o1", c, now, domain.ShippingDetails{FullName: "A"}, domain.PaymentDetails{Method: "cod"}), nil
	})
	require.NoError(t, err)
	require.Equal(t, 249.97, order.Total)

	left, err := carts.Get(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, left)

	got, err := orders.GetByID(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, order.Items, got.Items)
	require.True(t, now.Equal(got.Date))
}

func TestOrderRepository_BuildFailureKeepsCart(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	carts := sqlite.NewCartRepository(s)
	orders := sqlite.NewOrderRepository(s)

	cart := domain.NewCart("u1")
	cart.Add(domain.CartItem{ProductID: "fuse", Price: 1, Quantity: 1})
	require.NoError(t, carts.Save(ctx, cart))

	_, err := orders.PlaceOrder(ctx, "u1", func(*domain.Cart) (*domain.Order, error) { return nil, domain.ErrEmptyCart })
	require.ErrorIs(t, err, domain.ErrEmptyCart)

	left, err := carts.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, cart.Items, left.Items)
}

func TestOrderRepository_ListAndStatus(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	carts := sqlite.NewCartRepository(s)
	orders := sqlite.NewOrderRepository(s)

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	place := func(user, id string, at time.Time) {
		c := domain.NewCart(user)
		c.Add(domain.CartItem{ProductID: "p", Price: 1, Quantity: 1})
		require.NoError(t, carts.Save(ctx, c))
		_, err := orders.PlaceOrder(ctx, user, func(c *domain.Cart) (*domain.Order, error) {
			return domain.NewOrder(id, c, at, domain.ShippingDetails{}, domain.PaymentDetails{}), nil
		})
		require.NoError(t, err)
	}
	place("u1", "a", base)
	place("u2", "b", base.Add(time.Hour))
	place("u1", "c", base.Add(2*time.Hour))

	mine, err := orders.ListByUser(ctx, "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, "c", mine[0].ID)

	page, err := orders.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "b", page[0].ID)

	empty, err := orders.List(ctx, 10, 99)
	require.NoError(t, err)
	require.Empty(t, empty)

	require.NoError(t, orders.UpdateStatus(ctx, "a", domain.StatusProcessing))
	require.ErrorIs(t, orders.UpdateStatus(ctx, "zzz", domain.StatusProcessing), domain.ErrOrderNotFound)
	got, err := orders.GetByID(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, domain.StatusProcessing, got.Status)

	last, err := orders.LastN(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b"}, []string{last[0].ID, last[1].ID})
}
