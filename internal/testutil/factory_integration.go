//go:build integration

package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/Gunvolt24/voltcart/internal/domain"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// MakeCart — корзина уникального пользователя с n позициями (цена 10, 20, ...).
func MakeCart(n int) *domain.Cart {
	c := domain.NewCart("user-" + UniqSuffix())
	c.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	for i := 0; i < n; i++ {
		c.Add(domain.CartItem{
			ProductID: fmt.Sprintf("sku-%d-%s", i, UniqSuffix()),
			Name:      fmt.Sprintf("Item %d", i),
			Price:     float64(10 * (i + 1)),
			Image:     "img.png",
			Quantity:  i + 1,
		})
	}
	return c
}

// Shipping — валидный адрес доставки для оформления.
func Shipping() domain.ShippingDetails {
	return domain.ShippingDetails{
		FullName: "John Smith",
		Address:  "Main st 1",
		City:     "Metropolis",
		Country:  "NA",
		Email:    "john@example.com",
	}
}

// Payment — валидная оплата.
func Payment() domain.PaymentDetails {
	return domain.PaymentDetails{Method: "card", CardLast4: "4242"}
}

// OrderFromCart — builder для OrderRepository.PlaceOrder с уникальным id.
func OrderFromCart(cart *domain.Cart) (*domain.Order, error) {
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	return domain.NewOrder("ord-"+UniqSuffix(), cart, now, Shipping(), Payment()), nil
}
