package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kube-rca/aiops-processor/internal/config"
	"github.com/kube-rca/aiops-processor/internal/service"
)

func tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:     "token",
		Short:   "Issue a bearer token for Alertmanager http_config",
		Example: `  aiops-processor token --subject alertmanager --ttl 8760h`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			tokens, err := service.NewTokenService(cfg.Auth.JWTSecret)
			if err != nil {
				return err
			}
			signed, err := tokens.IssueToken(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "alertmanager", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (0 = no expiry)")
	return cmd
}
