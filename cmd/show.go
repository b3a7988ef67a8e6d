package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/studx/homefeed/internal/database"
	"github.com/studx/homefeed/internal/exchange"
	"github.com/studx/homefeed/internal/model"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print both exchange feeds",
	Long: `Fetch the public and owned feeds and print them as tables.

Examples:
  homefeed show             # Fetch and print both feeds
  homefeed show --offline   # Print the last stored snapshots
  homefeed show --json      # Output the view as JSON`,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().Bool("offline", false, "print stored snapshots without contacting the backend")
	showCmd.Flags().Bool("json", false, "output as JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	offline, _ := cmd.Flags().GetBool("offline")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	w := cmd.OutOrStdout()

	if offline {
		return showOffline(w, jsonOutput)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	a.controller.Initialize(cmd.Context())
	v := a.controller.View()

	if jsonOutput {
		return writeJSON(w, v)
	}
	return printView(w, v)
}

func printView(w io.Writer, v exchange.View) error {
	fmt.Fprintf(w, "Hello, %s\n\n", v.DisplayName)

	heading.Fprintln(w, "Exchanges Available")
	if v.HasError {
		fmt.Fprintln(w, "  Could not reach the server.")
	} else if err := renderOffers(w, v.Public); err != nil {
		return err
	}
	fmt.Fprintln(w)

	heading.Fprintln(w, "My Exchanges")
	switch {
	case v.Identifier == "":
		fmt.Fprintln(w, "  Sign in to see your exchanges.")
	case !v.OwnedLoaded:
		fmt.Fprintln(w, "  Your exchanges could not be loaded.")
	default:
		if err := renderOffers(w, v.Owned); err != nil {
			return err
		}
	}
	return nil
}

func showOffline(w io.Writer, jsonOutput bool) error {
	store, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Database.Driver, err)
	}
	defer store.Close()

	snaps := make([]*model.Snapshot, 0, 2)
	for _, feed := range []string{model.FeedPublic, model.FeedOwned} {
		snap, err := store.LoadSnapshot(feed)
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("loading %s snapshot: %w", feed, err)
		}
		snaps = append(snaps, snap)
	}

	if jsonOutput {
		return writeJSON(w, snaps)
	}
	if len(snaps) == 0 {
		fmt.Fprintln(w, "No snapshots stored yet. Run 'homefeed show' while online first.")
		return nil
	}
	for _, snap := range snaps {
		heading.Fprintf(w, "%s (fetched %s)\n", snap.Feed, snap.FetchedAt.Local().Format("2006-01-02 15:04"))
		if err := renderOffers(w, snap.Offers); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}
