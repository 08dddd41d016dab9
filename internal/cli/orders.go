package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Gunvolt24/voltcart/internal/domain"
)

type checkoutOptions struct {
	shipping domain.ShippingDetails
	payment  domain.PaymentDetails
}

// NewCheckoutCommand — оформление заказа из текущей корзины.
func NewCheckoutCommand(opts *RootOptions) *cobra.Command {
	var co checkoutOptions

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order from the current cart",
		Long: `Place an order from the current cart. An empty cart is rejected before
any request is sent. The cart is cleared once the order is confirmed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, cmd.ErrOrStderr(), func(e *env) error {
				cart, err := e.session.FetchCart(cmd.Context())
				if err != nil {
					return err
				}
				total := cart.Total()

				id, err := e.session.PlaceOrder(cmd.Context(), co.shipping, co.payment)
				if err != nil {
					return err
				}
				p := newPrinter(opts.Format, cmd.OutOrStdout())
				return p.emit(map[string]any{"orderId": id, "total": total}, func(w io.Writer) {
					fmt.Fprintf(w, "order %s placed, total %s\n", id, p.Money(total))
				})
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&co.shipping.FullName, "name", "", "recipient full name")
	f.StringVar(&co.shipping.Address, "address", "", "street address")
	f.StringVar(&co.shipping.City, "city", "", "city")
	f.StringVar(&co.shipping.PostalCode, "postal-code", "", "postal code")
	f.StringVar(&co.shipping.Country, "country", "", "country")
	f.StringVar(&co.shipping.Phone, "phone", "", "phone")
	f.StringVar(&co.shipping.Email, "email", "", "email")
	f.StringVar(&co.payment.Method, "payment", "cod", "payment method (card|cod)")
	f.StringVar(&co.payment.CardHolder, "card-holder", "", "card holder")
	f.StringVar(&co.payment.CardLast4, "card-last4", "", "last four digits of the card")
	return cmd
}

// NewOrdersCommand — заказы текущего пользователя.
func NewOrdersCommand(opts *RootOptions) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List your orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, cmd.ErrOrStderr(), func(e *env) error {
				orders, err := e.session.Orders(cmd.Context(), limit, offset)
				if err != nil {
					return err
				}
				return newPrinter(opts.Format, cmd.OutOrStdout()).orders(orders)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}

// NewAdminCommand — операции администратора.
func NewAdminCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Change order status (Pending, Processing, Shipped, Delivered, Cancelled)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := domain.ParseOrderStatus(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q", err, args[1])
			}
			return withEnv(cmd.Context(), opts, cmd.ErrOrStderr(), func(e *env) error {
				order, err := e.admin.UpdateStatus(cmd.Context(), e.token, args[0], status)
				if err != nil {
					return err
				}
				return newPrinter(opts.Format, cmd.OutOrStdout()).order(order)
			})
		},
	})
	return cmd
}
