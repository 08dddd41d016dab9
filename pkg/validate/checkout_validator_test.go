package validate_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/pkg/validate"
)

func validShipping() domain.ShippingDetails {
	return domain.ShippingDetails{
		FullName: "Ada Lovelace",
		Address:  "12 Ohm Street",
		City:     "London",
		Country:  "UK",
		Email:    "ada@example.com",
	}
}

func TestCheckoutValidator_ValidateCheckout(t *testing.T) {
	v := validate.NewCheckoutValidator()
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		s := validShipping()
		p := domain.PaymentDetails{Method: "Card", CardLast4: "4242"}
		if err := v.ValidateCheckout(ctx, &s, &p); err != nil {
			t.Fatalf("expected valid checkout, got: %v", err)
		}
	})

	cases := []struct {
		name   string
		mutate func(s *domain.ShippingDetails, p *domain.PaymentDetails)
		msg    string
	}{
		{"no full name", func(s *domain.ShippingDetails, _ *domain.PaymentDetails) { s.FullName = " " }, "fullName"},
		{"no city", func(s *domain.ShippingDetails, _ *domain.PaymentDetails) { s.City = "" }, "city"},
		{"bad email", func(s *domain.ShippingDetails, _ *domain.PaymentDetails) { s.Email = "not-an-email" }, "email"},
		{"unknown method", func(_ *domain.ShippingDetails, p *domain.PaymentDetails) { p.Method = "barter" }, "method"},
		{"bad last4", func(_ *domain.ShippingDetails, p *domain.PaymentDetails) { p.CardLast4 = "42a2" }, "cardLast4"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			s := validShipping()
			p := domain.PaymentDetails{Method: "cod"}
			tc.mutate(&s, &p)

			err := v.ValidateCheckout(ctx, &s, &p)
			if !errors.Is(err, validate.ErrInvalidOrder) {
				t.Fatalf("want ErrInvalidOrder, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("error %q should mention %q", err, tc.msg)
			}
		})
	}

	if err := v.ValidateCheckout(ctx, nil, &domain.PaymentDetails{Method: "cod"}); !errors.Is(err, validate.ErrInvalidOrder) {
		t.Fatalf("nil shipping: want ErrInvalidOrder, got %v", err)
	}
}

func TestCheckoutValidator_ValidateItem(t *testing.T) {
	v := validate.NewCheckoutValidator()
	ctx := context.Background()

	if err := v.ValidateItem(ctx, &domain.CartItem{ProductID: "lamp", Price: 9.5, Quantity: 1}); err != nil {
		t.Fatalf("expected valid item, got %v", err)
	}

	tests := []struct {
		name string
		item *domain.CartItem
		want error
	}{
		{"nil", nil, domain.ErrInvalidProduct},
		{"no product", &domain.CartItem{Quantity: 1}, domain.ErrInvalidProduct},
		{"zero quantity", &domain.CartItem{ProductID: "p", Quantity: 0}, domain.ErrInvalidQuantity},
		{"negative quantity", &domain.CartItem{ProductID: "p", Quantity: -3}, domain.ErrInvalidQuantity},
		{"negative price", &domain.CartItem{ProductID: "p", Quantity: 1, Price: -1}, domain.ErrInvalidProduct},
	}
	for _, tt := range tests {
		if err := v.ValidateItem(ctx, tt.item); !errors.Is(err, tt.want) {
			t.Fatalf("%s: want %v, got %v", tt.name, tt.want, err)
		}
	}
}
