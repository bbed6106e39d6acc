package cli

import (
	"errors"
	"fmt"
	"time"

	"kidlingo-service/internal/auth"
	"kidlingo-service/internal/config"

	"github.com/spf13/cobra"
)

// NewTokenCmd issues a signed identity token for local testing.
func NewTokenCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "token <principal>",
		Short: "Issue an access token for a principal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))
			if !tokens.Enabled() {
				return errors.New("auth secret not configured")
			}
			raw, err := tokens.Issue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}
}
