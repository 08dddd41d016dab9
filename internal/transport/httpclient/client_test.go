package httpclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/transport/httpclient"
	"github.com/Gunvolt24/voltcart/pkg/validate"
)

type recorded struct {
	method, path, query, auth string
	rawPath                   string
	body                      map[string]any
}

// apiStub — сервер, отвечающий заданным статусом и телом, и запоминающий запрос.
func apiStub(t *testing.T, status int, body string) (*httpclient.Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method, rec.path, rec.query = r.Method, r.URL.Path, r.URL.RawQuery
		rec.rawPath = r.URL.EscapedPath()
		rec.auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return httpclient.New(ts.URL + "/"), rec
}

func TestFetchCart_ItemsEnvelope(t *testing.T) {
	c, rec := apiStub(t, http.StatusOK, `{"items":[{"productId":{"_id":"p1"},"quantity":2},{"product":{"id":"p2"}}]}`)

	items, err := c.FetchCart(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, http.MethodGet, rec.method)
	require.Equal(t, "/cart", rec.path)
	require.Equal(t, "Bearer tok", rec.auth)

	require.Len(t, items, 2)
	first, err := domain.NormalizeItem(items[0])
	require.NoError(t, err)
	require.Equal(t, domain.CartItem{ProductID: "p1", Name: domain.UnknownProductName, Quantity: 2}, first)
	second, err := domain.NormalizeItem(items[1])
	require.NoError(t, err)
	require.Equal(t, "p2", second.ProductID)
}

func TestAddItem_CartEnvelopeAndPayload(t *testing.T) {
	c, rec := apiStub(t, http.StatusOK, `{"cart":{"items":[{"productId":"p1","name":"Bulb","price":10,"quantity":3}]}}`)

	items, err := c.AddItem(context.Background(), "tok", domain.CartItem{ProductID: "p1", Name: "Bulb", Price: 10, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 3, *items[0].Quantity)

	require.Equal(t, http.MethodPost, rec.method)
	require.Equal(t, map[string]any{"productId": "p1", "quantity": 1.0, "price": 10.0, "name": "Bulb", "image": ""}, rec.body)
}

func TestUpdateRemoveClear_Paths(t *testing.T) {
	c, rec := apiStub(t, http.StatusOK, `{"items":[]}`)
	ctx := context.Background()

	items, err := c.UpdateQuantity(ctx, "tok", "lamp 7", 4)
	require.NoError(t, err)
	require.Empty(t, items)
	require.Equal(t, http.MethodPut, rec.method)
	require.Equal(t, "/cart/lamp 7", rec.path)
	require.Equal(t, 4.0, rec.body["quantity"])

	_, err = c.RemoveItem(ctx, "tok", "p1")
	require.NoError(t, err)
	require.Equal(t, http.MethodDelete, rec.method)
	require.Equal(t, "/cart/p1", rec.path)

	require.NoError(t, c.ClearCart(ctx, "tok"))
	require.Equal(t, "/cart", rec.path)
}

func TestItemPaths_EscapeSlashes(t *testing.T) {
	c, rec := apiStub(t, http.StatusOK, `{"items":[]}`)
	ctx := context.Background()

	_, err := c.RemoveItem(ctx, "tok", "x/..")
	require.NoError(t, err)
	require.Equal(t, http.MethodDelete, rec.method)
	require.Equal(t, "/cart/x%2F..", rec.rawPath)

	_, err = c.UpdateQuantity(ctx, "tok", "a/b", 2)
	require.NoError(t, err)
	require.Equal(t, "/cart/a%2Fb", rec.rawPath)

	_, err = c.RemoveItem(ctx, "tok", "../orders")
	require.NoError(t, err)
	require.Equal(t, "/cart/..%2Forders", rec.rawPath)

	c, rec = apiStub(t, http.StatusOK, `{"id":"o/1","status":"Shipped"}`)
	_, err = c.UpdateStatus(ctx, "tok", "o/1", domain.StatusShipped)
	require.NoError(t, err)
	require.Equal(t, http.MethodPatch, rec.method)
	require.Equal(t, "/admin/orders/o%2F1/status", rec.rawPath)
}

func TestPlaceOrderAndList(t *testing.T) {
	c, rec := apiStub(t, http.StatusCreated, `{"orderId":"01J0","order":{"id":"01J0","total":249.97,"status":"Pending"}}`)

	order, err := c.PlaceOrder(context.Background(), "tok", domain.ShippingDetails{FullName: "A"}, domain.PaymentDetails{Method: "cod"})
	require.NoError(t, err)
	require.Equal(t, "01J0", order.ID)
	require.Equal(t, 249.97, order.Total)
	require.Equal(t, "/orders", rec.path)
	require.Contains(t, rec.body, "shippingDetails")

	c, rec = apiStub(t, http.StatusOK, `[{"id":"a"},{"id":"b"}]`)
	orders, err := c.ListOrders(context.Background(), "tok", 5, 10)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, "limit=5&offset=10", rec.query)
}

func TestErrorMapping(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		status int
		body   string
		call   func(*httpclient.Client) error
		want   error
	}{
		{"401", http.StatusUnauthorized, `{"error":"authentication required","code":"unauthenticated"}`,
			func(c *httpclient.Client) error { _, err := c.FetchCart(ctx, "bad"); return err }, domain.ErrUnauthenticated},
		{"500", http.StatusInternalServerError, `{"error":"internal server error","code":"internal"}`,
			func(c *httpclient.Client) error { _, err := c.FetchCart(ctx, "t"); return err }, domain.ErrUnreachable},
		{"502 plain", http.StatusBadGateway, `bad gateway`,
			func(c *httpclient.Client) error { return c.ClearCart(ctx, "t") }, domain.ErrUnreachable},
		{"invalid quantity", http.StatusBadRequest, `{"error":"x","code":"invalid_quantity"}`,
			func(c *httpclient.Client) error { _, err := c.UpdateQuantity(ctx, "t", "p", 0); return err }, domain.ErrInvalidQuantity},
		{"empty cart", http.StatusBadRequest, `{"error":"x","code":"empty_cart"}`,
			func(c *httpclient.Client) error {
				_, err := c.PlaceOrder(ctx, "t", domain.ShippingDetails{}, domain.PaymentDetails{})
				return err
			}, domain.ErrEmptyCart},
		{"invalid order", http.StatusBadRequest, `{"error":"x","code":"invalid_order"}`,
			func(c *httpclient.Client) error {
				_, err := c.PlaceOrder(ctx, "t", domain.ShippingDetails{}, domain.PaymentDetails{})
				return err
			}, validate.ErrInvalidOrder},
		{"cart item not found", http.StatusNotFound, `{"error":"x","code":"not_found"}`,
			func(c *httpclient.Client) error { _, err := c.UpdateQuantity(ctx, "t", "p", 2); return err }, domain.ErrItemNotFound},
		{"order not found", http.StatusNotFound, `{"error":"x","code":"not_found"}`,
			func(c *httpclient.Client) error {
				_, err := c.UpdateStatus(ctx, "t", "o1", domain.StatusShipped)
				return err
			}, domain.ErrOrderNotFound},
		{"forbidden", http.StatusForbidden, `{"error":"x","code":"forbidden"}`,
			func(c *httpclient.Client) error { _, err := c.ListOrders(ctx, "t", 0, 0); return err }, domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := apiStub(t, tt.status, tt.body)
			err := tt.call(c)
			require.Truef(t, errors.Is(err, tt.want), "want %v, got %v", tt.want, err)
		})
	}
}

func TestUnreachableServer(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := httpclient.New(url).FetchCart(context.Background(), "tok")
	require.ErrorIs(t, err, domain.ErrUnreachable)
}

func TestMalformedBody(t *testing.T) {
	c, _ := apiStub(t, http.StatusOK, `{"items":`)
	_, err := c.FetchCart(context.Background(), "tok")
	require.ErrorIs(t, err, domain.ErrUnreachable)
}
