// Package cli — команды cartctl: корзина и заказы через удалённый API
// или локальную sqlite-базу.
package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/Gunvolt24/voltcart/config"
)

// RootOptions — глобальные флаги.
type RootOptions struct {
	Format  string // text|json|yaml
	Verbose bool

	Local   bool
	DBPath  string
	BaseURL string
	Token   string
	Timeout time.Duration
	User    string // пользователь локального режима

	cfg config.Config
}

// ValidFormats — допустимые форматы вывода.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand — корневая команда. Значения флагов по умолчанию берутся
// из окружения (CART_CLIENT_*, CART_AUTH_*).
func NewRootCommand(cfg config.Config) *cobra.Command {
	opts := &RootOptions{cfg: cfg}

	cmd := &cobra.Command{
		Use:   "cartctl",
		Short: "voltcart cart and order client",
		Long: `Client for the voltcart storefront cart.

Works against the HTTP API (default) or a local SQLite database (--local).
The local mirror of the cart is kept in the same database file in both modes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")
	f.BoolVar(&opts.Local, "local", false, "use the local SQLite database instead of the API")
	f.StringVar(&opts.DBPath, "db", cfg.Client.DBPath, "SQLite database path (local mode and cart mirror)")
	f.StringVar(&opts.BaseURL, "api", cfg.Client.BaseURL, "API base URL")
	f.StringVar(&opts.Token, "token", cfg.Client.Token, "bearer token for the API")
	f.DurationVar(&opts.Timeout, "timeout", cfg.Client.Timeout, "API request timeout")
	f.StringVar(&opts.User, "local-user", defaultLocalUser, "user id in local mode")

	cmd.AddCommand(NewTokenCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewCheckoutCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))
	cmd.AddCommand(NewAdminCommand(opts))

	return cmd
}
