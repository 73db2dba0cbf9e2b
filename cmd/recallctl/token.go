package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/spf13/cobra"
)

func newTokenCommand() *cobra.Command {
	var userID string

	command := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			jwtService, err := auth.NewJWTService(cfg.Auth)
			if err != nil {
				return err
			}

			token, err := jwtService.GenerateToken(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	command.Flags().StringVar(&userID, "user", "", "user ID to embed in the token")
	_ = command.MarkFlagRequired("user")
	return command
}
