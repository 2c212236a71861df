// Package cmd provides the CLI commands for the fintrack client.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fintrack/internal/logger"
	"fintrack/pkg/fintrack"
)

var (
	serverURL string
	cachePath string
	debug     bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fintrack",
	Short: "Track income and expenses from the terminal",
	Long: `fintrack is the terminal client for the FinTrack backend.

Without a signed-in account, transactions live in a local cache on this
machine. After signing in with Google, the dataset is kept in a single
document in your Google Drive and the local cache is left untouched.

Example:
  fintrack add --amount 12.50 --category Food --note "lunch"
  fintrack list --month 2026-08
  fintrack summary`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		env := "production"
		if debug {
			env = "development"
		}
		logger.Init(env)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	logger.Sync()
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "backend server URL")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "local cache path (default ~/.config/fintrack/cache.db)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(ratesCmd)
	rootCmd.AddCommand(insightsCmd)
}

func defaultServerURL() string {
	if url := os.Getenv("FINTRACK_SERVER"); url != "" {
		return url
	}
	return "http://localhost:3000"
}

// app bundles the client-side pieces every command needs: the local cache,
// the API client, and the sync orchestrator.
type app struct {
	cache  *fintrack.Cache
	api    *fintrack.Client
	syncer *fintrack.Orchestrator
}

func newApp() (*app, error) {
	path := cachePath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate home directory: %w", err)
		}
		path = filepath.Join(home, ".config", "fintrack", "cache.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache, err := fintrack.OpenCache(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local cache: %w", err)
	}

	api, err := fintrack.NewClient(&fintrack.ClientOptions{
		BaseURL:  serverURL,
		Sessions: cache,
	})
	if err != nil {
		cache.Close()
		return nil, err
	}

	return &app{
		cache:  cache,
		api:    api,
		syncer: fintrack.NewOrchestrator(api, cache),
	}, nil
}

// resolve runs the startup resolution, picking the Drive document or the
// local cache as the dataset source.
func (a *app) resolve(ctx context.Context) error {
	if err := a.syncer.Resolve(ctx); err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	return nil
}

// close flushes pending saves and releases the cache.
func (a *app) close() {
	a.syncer.Flush()
	a.syncer.Close()
	if err := a.syncer.LastError(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: last save failed: %v\n", err)
	}
	a.cache.Close()
}
