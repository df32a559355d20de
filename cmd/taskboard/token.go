package main

import (
	"fmt"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/config"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user id",
		Long: `Issue a signed bearer token. Sign-in lives outside this service; the
token is for local development and scripts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := uuid.Parse(user); err != nil {
				return fmt.Errorf("user must be a UUID: %w", err)
			}
			cfg := config.Load()
			if ttl <= 0 {
				ttl = cfg.JWTExpiry
			}
			token, err := auth.NewIssuer(cfg.JWTSecret, ttl).GenerateToken(user)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user id (UUID)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_EXPIRY_HOURS)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
