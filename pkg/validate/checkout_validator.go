package validate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strings"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/internal/ports"
)

// Проверка, что CheckoutValidator удовлетворяет интерфейсу.
var _ ports.CheckoutValidator = (*CheckoutValidator)(nil)

var (
	// ErrInvalidOrder — базовая (sentinel error) ошибка валидации оформления.
	ErrInvalidOrder = errors.New("order validation failed")
	// ErrInvalidStatusUpdate — некорректная команда смены статуса из шины.
	ErrInvalidStatusUpdate = errors.New("status update validation failed")
)

// Способы оплаты, которые принимает витрина.
var allowedPaymentMethods = map[string]struct{}{
	"card":   {},
	"cod":    {},
	"paypal": {},
}

// CheckoutValidator — проверка позиций корзины и данных оформления заказа.
type CheckoutValidator struct{}

func NewCheckoutValidator() *CheckoutValidator { return &CheckoutValidator{} }

// ValidateItem — позиция, которую клиент кладёт в корзину.
// Ошибки: domain.ErrInvalidProduct (в т.ч. цена), domain.ErrInvalidQuantity.
func (v *CheckoutValidator) ValidateItem(_ context.Context, item *domain.CartItem) error {
	if item == nil {
		return fmt.Errorf("%w: позиция не может быть nil", domain.ErrInvalidProduct)
	}
	if strings.TrimSpace(item.ProductID) == "" {
		return fmt.Errorf("%w: productId обязателен", domain.ErrInvalidProduct)
	}
	if item.Quantity < 1 {
		return fmt.Errorf("%w: quantity=%d", domain.ErrInvalidQuantity, item.Quantity)
	}
	if item.Price < 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
		return fmt.Errorf("%w: price должна быть неотрицательным числом", domain.ErrInvalidProduct)
	}
	return nil
}

// ValidateCheckout — адрес доставки и оплата.
// Возвращает ErrInvalidOrder (с обёрнутой причиной) при любой проблеме.
func (v *CheckoutValidator) ValidateCheckout(_ context.Context, shipping *domain.ShippingDetails, payment *domain.PaymentDetails) error {
	if err := v.validateShipping(shipping); err != nil {
		return err
	}
	return v.validatePayment(payment)
}

// Валидация доставки
func (v *CheckoutValidator) validateShipping(s *domain.ShippingDetails) error {
	if s == nil {
		return fmt.Errorf("%w: shippingDetails обязателен", ErrInvalidOrder)
	}
	required := []struct {
		field, value string
	}{
		{"fullName", s.FullName},
		{"address", s.Address},
		{"city", s.City},
		{"country", s.Country},
		{"email", s.Email},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: shippingDetails.%s обязателен", ErrInvalidOrder, r.field)
		}
	}
	if _, err := mail.ParseAddress(s.Email); err != nil {
		return fmt.Errorf("%w: shippingDetails.email некорректен", ErrInvalidOrder)
	}
	return nil
}

// Валидация оплаты
func (v *CheckoutValidator) validatePayment(p *domain.PaymentDetails) error {
	if p == nil {
		return fmt.Errorf("%w: paymentDetails обязателен", ErrInvalidOrder)
	}
	method := strings.ToLower(strings.TrimSpace(p.Method))
	if _, ok := allowedPaymentMethods[method]; !ok {
		return fmt.Errorf("%w: paymentDetails.method %q не поддерживается", ErrInvalidOrder, p.Method)
	}
	if p.CardLast4 != "" {
		if len(p.CardLast4) != 4 || strings.Trim(p.CardLast4, "0123456789") != "" {
			return fmt.Errorf("%w: paymentDetails.cardLast4 — ровно 4 цифры", ErrInvalidOrder)
		}
	}
	return nil
}
