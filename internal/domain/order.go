package domain

import (
	"strings"
	"time"
)

// OrderStatus — статус заказа.
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// допустимые переходы; Delivered и Cancelled — терминальные.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// ParseOrderStatus — статус из строки без учёта регистра.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// Valid — известный статус.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo — разрешён ли переход. Повтор текущего статуса разрешён.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ShippingDetails — адрес доставки.
type ShippingDetails struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

// PaymentDetails — сведения об оплате; номер карты целиком не хранится.
type PaymentDetails struct {
	Method        string `json:"method"`
	CardHolder    string `json:"cardHolder,omitempty"`
	CardLast4     string `json:"cardLast4,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
}

// Order — оформленный заказ. После создания меняется только Status.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Items           []CartItem      `json:"items"`
	Total           float64         `json:"total"`
	Status          OrderStatus     `json:"status"`
	Date            time.Time       `json:"date"`
	ShippingDetails ShippingDetails `json:"shippingDetails"`
	PaymentDetails  PaymentDetails  `json:"paymentDetails"`
}

// NewOrder — снимок корзины в заказ: копия позиций, итог, статус Pending.
func NewOrder(id string, cart *Cart, now time.Time, shipping ShippingDetails, payment PaymentDetails) *Order {
	var (
		userID string
		items  []CartItem
	)
	if cart != nil {
		userID = cart.UserID
		items = cart.Items
	}
	snapshot := CloneItems(items)
	return &Order{
		ID:              id,
		UserID:          userID,
		Items:           snapshot,
		Total:           ItemsTotal(snapshot),
		Status:          StatusPending,
		Date:            now,
		ShippingDetails: shipping,
		PaymentDetails:  payment,
	}
}

// Clone — независимая копия заказа.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cloned := *o
	cloned.Items = CloneItems(o.Items)
	return &cloned
}
