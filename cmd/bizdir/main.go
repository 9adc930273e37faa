// Command bizdir runs the business directory REST server and its clients.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nisimpson/bizdir/client"
	"github.com/nisimpson/bizdir/config"
)

// app carries the state shared by every subcommand once the root command has
// loaded the configuration.
type app struct {
	cfgFile string
	verbose bool
	apiURL  string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "bizdir",
		Short: "Business directory backed by DynamoDB",
		Long: `bizdir keeps a directory of businesses in DynamoDB.

Each business gets a sequential id such as Business_001 from an atomic counter.
The serve command exposes the REST API on /api/, and the ui, list, create and
delete commands talk to a running server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			if a.apiURL != "" {
				cfg.Client.BaseURL = a.apiURL
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			a.cfg = cfg

			logger, err := cfg.Logger(a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "bizdir.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Base URL of the REST API (overrides client.base_url)")

	rootCmd.AddCommand(
		a.serveCmd(),
		a.tablesCmd(),
		a.uiCmd(),
		a.listCmd(),
		a.createCmd(),
		a.deleteCmd(),
		a.configCmd(),
	)

	return rootCmd
}

func (a *app) client() *client.Client {
	return client.New(a.cfg.Client.BaseURL, a.cfg.GetClientTimeout())
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
