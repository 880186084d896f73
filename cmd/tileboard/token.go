package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/tileboard/internal/auth"
	"github.com/nerrad567/tileboard/internal/infrastructure/config"
)

// newTokenCmd mints a panel token signed with the configured JWT secret.
func newTokenCmd(configPath *string) *cobra.Command {
	var (
		subject string
		role    string
		ttl     int
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a panel token",
		Long: `Mint a panel token for a wall panel or browser.

The token is signed with security.jwt.secret from the config file and is
printed to stdout. Without --ttl the configured security.jwt.token_ttl is
used. A negative TTL mints a token that never expires.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if !cfg.AuthEnabled() {
				return fmt.Errorf("security.jwt.secret is not set: %w", auth.ErrSecretRequired)
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.Security.JWT.TokenTTL
			}

			token, err := auth.GenerateToken(subject, auth.Role(role), cfg.Security.JWT.Secret, ttl)
			if err != nil {
				return fmt.Errorf("generating token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "token subject, e.g. the panel name")
	cmd.Flags().StringVar(&role, "role", string(auth.RolePanel), "role: viewer, panel or admin")
	cmd.Flags().IntVar(&ttl, "ttl", 0, "lifetime in minutes (default from config)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
