package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Gunvolt24/voltcart/internal/domain"
	"github.com/Gunvolt24/voltcart/pkg/validate"
)

// NewCartCommand — группа команд корзины.
func NewCartCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the cart",
	}
	cmd.AddCommand(newCartGetCommand(opts))
	cmd.AddCommand(newCartAddCommand(opts))
	cmd.AddCommand(newCartSetCommand(opts))
	cmd.AddCommand(newCartRemoveCommand(opts))
	cmd.AddCommand(newCartClearCommand(opts))
	cmd.AddCommand(newCartImportCommand(opts))
	return cmd
}

func newCartGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Fetch the cart (falls back to the local mirror when the server is down)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, cmd.ErrOrStderr(), func(e *env) error {
				cart, err := e.session.FetchCart(cmd.Context())
				if err != nil {
					return err
				}
				return newPrinter(opts.Format, cmd.OutOrStdout()).cart(cart)
			})
		},
	}
}

type addOptions struct {
	qty   int
	name  string
	price float64
	image string
}

func newCartAddCommand(opts *RootOptions) *cobra.Command {
	var ao addOptions

	cmd := &cobra.Command{
		Use:   "add <product>",
		Short: "Add a product to the cart",
		Long: `Add a product to the cart. Adding a product already in the cart increases its quantity.

<product> is a product id or a product document:
  cartctl cart add lamp-7 --qty 2 --name "Desk lamp" --price 99.99
  cartctl cart add '{"_id":"lamp-7","name":"Desk lamp","price":99.99}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := productArg(args[0], cmd, ao)
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), opts, cmd.ErrOrStderr(), func(e *env) error {
				cart, err := e.session.AddItem(cmd.Context(), ref, ao.qty)
				if err != nil {
					return err
				}
				return newPrinter(opts.Format, cmd.OutOrStdout()).cart(cart)
			})
		},
	}

	cmd.Flags().IntVarP(&ao.qty, "qty", "q", 1, "quantity to add (>= 1)")
	cmd.Flags().StringVar(&ao.name, "name", "", "product name")
	cmd.Flags().Float64Var(&ao.price, "price", 0, "unit price")
	cmd.Flags().StringVar(&ao.image, "image", "", "product image URL")
	return cmd
}

// productArg — ссылка на товар из аргумента: JSON-документ или голый id,
// к которому флаги добавляют имя/цену/картинку.
func productArg(arg string, cmd *cobra.Command, ao addOptions) (domain.ProductRef, error) {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "{") {
		ref, err := domain.DecodeProductRef(json.RawMessage(arg))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidProduct, err)
		}
		return ref, nil
	}

	fl := cmd.Flags()
	if !fl.Changed("name") && !fl.Changed("price") && !fl.Changed("image") {
		return domain.RawID(arg), nil
	}
	doc := domain.ProductDoc{ID: arg, Name: ao.name, Image: ao.image}
	if fl.Changed("price") {
		price := ao.price
		doc.Price = &price
	}
	return doc, nil
}

func newCartSetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q", domain.ErrInvalidQuantity, args[1])
			}
			return withEnv(cmd.Context(), opts, cmd.ErrOrStderr(), func(e *env) error {
				cart, err := e.session.UpdateQuantity(cmd.Context(), domain.RawID(args[0]), qty)
				if err != nil {
					return err
				}
				return newPrinter(opts.Format, cmd.OutOrStdout()).cart(cart)
			})
		},
	}
}

func newCartRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <product-id>",
		Aliases: []string{"remove"},
		Short:   "Remove a line from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, cmd.ErrOrStderr(), func(e *env) error {
				cart, err := e.session.RemoveItem(cmd.Context(), domain.RawID(args[0]))
				if err != nil {
					return err
				}
				return newPrinter(opts.Format, cmd.OutOrStdout()).cart(cart)
			})
		},
	}
}

func newCartClearCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every line from the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, cmd.ErrOrStderr(), func(e *env) error {
				if err := e.session.ClearCart(cmd.Context()); err != nil {
					return err
				}
				return newPrinter(opts.Format, cmd.OutOrStdout()).cart(e.session.Cart())
			})
		},
	}
}

func newCartImportCommand(opts *RootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Add cart lines from a JSON array or JSONL file",
		Long: `Add cart lines from a file. Lines are validated first; invalid ones are
reported and skipped, valid ones are added in file order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeIn()

			res, err := validate.ImportItems(cmd.Context(), validate.NewCheckoutValidator(), in,
				validate.DetectFormat(args[0], validate.InputFormat(format)))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "import: %s\n", res)

			return withEnv(cmd.Context(), opts, cmd.ErrOrStderr(), func(e *env) error {
				var cart *domain.Cart
				for _, it := range res.Items {
					price := it.Price
					doc := domain.ProductDoc{ID: it.ProductID, Name: it.Name, Price: &price, Image: it.Image}
					if cart, err = e.session.AddItem(cmd.Context(), doc, it.Quantity); err != nil {
						return err
					}
				}
				if cart == nil {
					cart = e.session.Cart()
				}
				return newPrinter(opts.Format, cmd.OutOrStdout()).cart(cart)
			})
		},
	}

	cmd.Flags().StringVar(&format, "input-format", string(validate.FormatAuto), "input format (auto|json|jsonl)")
	return cmd
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
