// Package cmd contains all CLI commands for homefeed
package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/studx/homefeed/internal/api"
	"github.com/studx/homefeed/internal/config"
	"github.com/studx/homefeed/internal/database"
	"github.com/studx/homefeed/internal/exchange"
	"github.com/studx/homefeed/internal/session"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
	version = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "homefeed",
	Short: "Exchange feeds for the StudX home screen",
	Long: `homefeed keeps the "Exchanges Available" and "My Exchanges" feeds of the
StudX home screen in sync with the exchanges backend.

Example usage:
  homefeed login --token T --email me@uni.edu   # Store session entries
  homefeed show                                 # Fetch and print both feeds
  homefeed delete 42                            # Delete one of my exchanges
  homefeed serve                                # Serve view state for the UI`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd.ErrOrStderr())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .homefeed.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig(stderr io.Writer) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger = newLogger(stderr, cfg.Logging, verbose)
	slog.SetDefault(logger)

	logger.Debug("configuration loaded",
		"api", cfg.API.BaseURL,
		"database", cfg.Database.Driver,
	)
	return nil
}

func newLogger(w io.Writer, lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// app bundles the wired components a command needs.
type app struct {
	store      database.Store
	client     *api.Client
	controller *exchange.Controller
	executor   *exchange.Executor
}

// openApp opens the backing store, reads the session and wires the core.
func openApp() (*app, error) {
	store, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Database.Driver, err)
	}
	creds, err := session.Load(store)
	if err != nil {
		store.Close()
		return nil, err
	}

	client := api.New(cfg.API.BaseURL, cfg.API.Timeout, logger)
	controller := exchange.NewController(client, exchange.Options{
		Credentials: creds,
		Snapshots:   store,
		Logger:      logger,
	})
	return &app{
		store:      store,
		client:     client,
		controller: controller,
		executor:   exchange.NewExecutor(client, controller, logger),
	}, nil
}

func (a *app) Close() error {
	a.controller.Wait()
	return a.store.Close()
}

