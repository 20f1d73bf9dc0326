package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"solardash/internal/config"
	"solardash/internal/credentials"
	"solardash/internal/db"
)

var refreshTokenFlag string

// credentialsCmd manages stored provider tokens
var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Inspect and import provider credentials",
}

var credentialsStatusCmd = &cobra.Command{
	Use:   "status <provider>",
	Short: "Show whether a provider is configured and connected",
	Args:  cobra.ExactArgs(1),
	RunE:  runCredentialsStatus,
}

var credentialsImportCmd = &cobra.Command{
	Use:   "import <provider>",
	Short: "Store a refresh token and exchange it for an access token",
	Long: `Store a refresh token obtained out of band, then refresh it once to
check that the provider accepts it.

The token is read from --refresh-token, or from the first line of stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runCredentialsImport,
}

func init() {
	credentialsImportCmd.Flags().StringVar(&refreshTokenFlag, "refresh-token", "", "refresh token (default: read from stdin)")
	credentialsCmd.AddCommand(credentialsStatusCmd, credentialsImportCmd)
}

func runCredentialsStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Load()
	database, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	store := credentials.New(database, db.ErrTokenNotFound, cfg, nil)
	st, err := store.Status(ctx, args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), st)
}

func runCredentialsImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	provider := args[0]

	token, err := readRefreshToken(cmd)
	if err != nil {
		return err
	}

	cfg := config.Load()
	database, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	store := credentials.New(database, db.ErrTokenNotFound, cfg, nil)
	if err := store.SaveToken(ctx, provider, &oauth2.Token{RefreshToken: token}); err != nil {
		return err
	}
	if _, err := store.Refresh(ctx, provider); err != nil {
		return fmt.Errorf("token stored but refresh failed: %w", err)
	}

	st, err := store.Status(ctx, provider)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), st)
}

func readRefreshToken(cmd *cobra.Command) (string, error) {
	if token := strings.TrimSpace(refreshTokenFlag); token != "" {
		return token, nil
	}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if scanner.Scan() {
		if token := strings.TrimSpace(scanner.Text()); token != "" {
			return token, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read refresh token: %w", err)
	}
	return "", errors.New("refresh token is required")
}
