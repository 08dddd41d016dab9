package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Gunvolt24/voltcart/internal/auth"
	"github.com/Gunvolt24/voltcart/internal/domain"
)

// NewTokenCommand — выпуск bearer-токена секретом сервера (CART_AUTH_SECRET).
// Нужен для разработки и тестовых стендов.
func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var (
		user  string
		admin bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token signed with CART_AUTH_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := opts.cfg.Auth
			tokens, err := auth.NewTokens(a.Secret, a.Issuer, a.TTL)
			if err != nil {
				return err
			}
			token, err := tokens.Issue(domain.Identity{UserID: user, Admin: admin})
			if err != nil {
				return err
			}
			return newPrinter(opts.Format, cmd.OutOrStdout()).emit(
				map[string]any{"token": token, "userId": user, "admin": admin},
				func(w io.Writer) { fmt.Fprintln(w, token) },
			)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id (subject)")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
