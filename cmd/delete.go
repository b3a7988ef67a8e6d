package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studx/homefeed/internal/session"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one of my exchanges",
	Long: `Delete an exchange you own and print the remaining owned feed.

Examples:
  homefeed delete 42`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	creds, err := session.Load(a.store)
	if err != nil {
		return err
	}
	a.controller.Initialize(cmd.Context())

	msg, err := a.executor.DeleteOwned(cmd.Context(), args[0], creds.Token)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, msg)
	fmt.Fprintln(w)
	heading.Fprintln(w, "My Exchanges")
	return renderOffers(w, a.controller.View().Owned)
}
