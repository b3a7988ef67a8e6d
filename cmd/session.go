package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studx/homefeed/internal/database"
	"github.com/studx/homefeed/internal/model"
	"github.com/studx/homefeed/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store session credentials",
	Long: `Store the session token and email issued by the sign-in flow.

Examples:
  homefeed login --token T --email me@uni.edu`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	Long:  `Notify the backend that the session ended and clear the stored credentials.`,
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)

	loginCmd.Flags().String("token", "", "session token (required)")
	loginCmd.Flags().String("email", "", "account email (required)")
	loginCmd.MarkFlagRequired("token")
	loginCmd.MarkFlagRequired("email")
}

func runLogin(cmd *cobra.Command, args []string) error {
	token, _ := cmd.Flags().GetString("token")
	email, _ := cmd.Flags().GetString("email")

	store, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Database.Driver, err)
	}
	defer store.Close()

	if err := session.Save(store, model.Credentials{Token: token, Identifier: email}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	creds, err := session.Load(a.store)
	if err != nil {
		return err
	}
	msg, err := a.executor.Logout(cmd.Context(), creds, a.store)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
