package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/yatube-api/internal/client"
)

func newLoginCmd() *cobra.Command {
	var server, username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store a token",
		Long:  "Exchanges a username and password for a bearer token and saves it to the config file. The password is read from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, server, username)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server URL (default: from config or "+defaultServerURL+")")
	cmd.Flags().StringVar(&username, "username", "", "username to log in as")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func runLogin(cmd *cobra.Command, serverFlag, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}

	serverURL := serverFlag
	if serverURL == "" {
		serverURL = getServerURL()
	}

	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	token, err := client.New(serverURL, "").ObtainToken(username, password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	if err := validateToken(token); err != nil {
		return fmt.Errorf("server at %s returned an unexpected token: %w", serverURL, err)
	}

	// a malformed stored token is about to be replaced; keep the rest
	cfg, err := loadConfig()
	if err != nil && !errors.Is(err, errMalformedToken) {
		cfg = CLIConfig{}
	}

	cfg.Token = token
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
	}

	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), okText(fmt.Sprintf("✓ Logged in as %s. Token saved.", username)))
	return nil
}
