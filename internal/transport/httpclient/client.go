// Package httpclient — шлюз синхронизатора корзины к HTTP API сервера.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/ports"
	"github.com/Gunvolt24/voltcart/pkg/validate"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

var _ ports.CartBackend = (*Client)(nil)

// Client — CartBackend поверх REST API.
// 401 — domain.ErrUnauthenticated; сетевые сбои и 5xx — обёртка над domain.ErrUnreachable;
// коды ошибок 4xx переводятся обратно в доменные ошибки.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option — настройка клиента.
type Option func(*Client)

// WithHTTPClient — свой http.Client (например, в тестах).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout — общий таймаут запроса.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// cartEnvelope — сервер отвечает {items} или {cart: {items}}.
type cartEnvelope struct {
	Items []domain.RawCartItem `json:"items"`
	Cart  *struct {
		Items []domain.RawCartItem `json:"items"`
	} `json:"cart"`
}

func (e cartEnvelope) items() []domain.RawCartItem {
	if e.Cart != nil && e.Items == nil {
		return e.Cart.Items
	}
	return e.Items
}

type addItemPayload struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
}

type placeOrderPayload struct {
	ShippingDetails domain.ShippingDetails `json:"shippingDetails"`
	PaymentDetails  domain.PaymentDetails  `json:"paymentDetails"`
}

type placeOrderResponse struct {
	OrderID string        `json:"orderId"`
	Order   *domain.Order `json:"order"`
}

type errorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *Client) FetchCart(ctx context.Context, credential string) ([]domain.RawCartItem, error) {
	return c.cartCall(ctx, credential, http.MethodGet, nil, nil, "cart")
}

func (c *Client) AddItem(ctx context.Context, credential string, item domain.CartItem) ([]domain.RawCartItem, error) {
	payload := addItemPayload{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Price:     item.Price,
		Name:      item.Name,
		Image:     item.Image,
	}
	return c.cartCall(ctx, credential, http.MethodPost, nil, payload, "cart")
}

func (c *Client) UpdateQuantity(ctx context.Context, credential, productID string, quantity int) ([]domain.RawCartItem, error) {
	return c.cartCall(ctx, credential, http.MethodPut, nil, map[string]int{"quantity": quantity}, "cart", url.PathEscape(productID))
}

func (c *Client) RemoveItem(ctx context.Context, credential, productID string) ([]domain.RawCartItem, error) {
	return c.cartCall(ctx, credential, http.MethodDelete, nil, nil, "cart", url.PathEscape(productID))
}

func (c *Client) ClearCart(ctx context.Context, credential string) error {
	return c.do(ctx, credential, http.MethodDelete, nil, nil, nil, "cart")
}

func (c *Client) PlaceOrder(
	ctx context.Context,
	credential string,
	shipping domain.ShippingDetails,
	payment domain.PaymentDetails,
) (*domain.Order, error) {
	var resp placeOrderResponse
	payload := placeOrderPayload{ShippingDetails: shipping, PaymentDetails: payment}
	if err := c.do(ctx, credential, http.MethodPost, nil, payload, &resp, "orders"); err != nil {
		return nil, err
	}
	if resp.Order == nil {
		if resp.OrderID == "" {
			return nil, fmt.Errorf("%w: place order: empty response", domain.ErrUnreachable)
		}
		resp.Order = &domain.Order{ID: resp.OrderID}
	}
	if resp.Order.ID == "" {
		resp.Order.ID = resp.OrderID
	}
	return resp.Order, nil
}

func (c *Client) ListOrders(ctx context.Context, credential string, limit, offset int) ([]*domain.Order, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	var orders []*domain.Order
	if err := c.do(ctx, credential, http.MethodGet, q, nil, &orders, "orders"); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus — смена статуса заказа (нужны права администратора).
func (c *Client) UpdateStatus(ctx context.Context, credential, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	var order domain.Order
	body := map[string]string{"status": string(status)}
	if err := c.do(ctx, credential, http.MethodPatch, nil, body, &order, "admin", "orders", url.PathEscape(orderID), "status"); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) cartCall(ctx context.Context, credential, method string, q url.Values, body any, path ...string) ([]domain.RawCartItem, error) {
	var env cartEnvelope
	if err := c.do(ctx, credential, method, q, body, &env, path...); err != nil {
		return nil, err
	}
	return env.items(), nil
}

// do — запрос к API; out == nil — тело ответа игнорируется.
func (c *Client) do(ctx context.Context, credential, method string, q url.Values, body, out any, path ...string) error {
	endpoint, err := url.JoinPath(c.baseURL, path...)
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var rd io.Reader = http.NoBody
	if body != nil {
		raw, mErr := json.Marshal(body)
		if mErr != nil {
			return fmt.Errorf("encode request: %w", mErr)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrUnreachable, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(method, endpoint, path[0] == "cart", resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", domain.ErrUnreachable, method, endpoint, err)
	}
	return nil
}

// statusError — ответ с ошибкой в доменную ошибку.
func statusError(method, endpoint string, cartPath bool, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload errorPayload
	_ = json.Unmarshal(raw, &payload)

	msg := strings.TrimSpace(payload.Error)
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", domain.ErrUnauthenticated, msg)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %s %s: status %d: %s", domain.ErrUnreachable, method, endpoint, resp.StatusCode, msg)
	}
	if sentinel := sentinelFor(payload.Code, resp.StatusCode, cartPath); sentinel != nil {
		return fmt.Errorf("%w: %s", sentinel, msg)
	}
	return fmt.Errorf("%s %s: status %d: %s", method, endpoint, resp.StatusCode, msg)
}

func sentinelFor(code string, status int, cartPath bool) error {
	switch code {
	case "unauthenticated":
		return domain.ErrUnauthenticated
	case "forbidden":
		return domain.ErrForbidden
	case "invalid_product":
		return domain.ErrInvalidProduct
	case "invalid_quantity":
		return domain.ErrInvalidQuantity
	case "empty_cart":
		return domain.ErrEmptyCart
	case "invalid_status":
		return domain.ErrInvalidStatus
	case "invalid_order":
		return validate.ErrInvalidOrder
	case "not_found":
		if cartPath {
			return domain.ErrItemNotFound
		}
		return domain.ErrOrderNotFound
	}
	if status == http.StatusForbidden {
		return domain.ErrForbidden
	}
	return nil
}
