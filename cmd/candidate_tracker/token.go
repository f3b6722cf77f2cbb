package main

import (
	"fmt"

	"github.com/jonathan/candidate-tracker/internal/config"
	"github.com/jonathan/candidate-tracker/internal/server"
	"github.com/jonathan/candidate-tracker/internal/types"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenRole    string
)

var tokenCmd = &cobra.Command{
	Use:         "token",
	Short:       "Mint an operator token for local use",
	Long:        "Sign an operator access token with JWT_SECRET. Production deployments normally receive tokens from their identity provider.",
	Annotations: map[string]string{"skipConfig": "true"},
	RunE:        runToken,
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "", "Operator name recorded in the audit trail (required)")
	tokenCmd.Flags().StringVarP(&tokenRole, "role", "r", string(types.RoleRecruiter), "Operator role: recruiter or admin")
	_ = tokenCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	token, err := server.NewJWTService(jwtConfig).GenerateToken(types.TokenRequest{
		Subject: tokenSubject,
		Role:    types.Role(tokenRole),
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
