package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polocloud/polocloud/pkg/config"
)

var (
	// Global flags
	configPath string
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "polocloud",
		Short: "PoloCloud - shared contract tooling",
		Long: `polocloud inspects and converts the shared state of a PoloCloud cluster.

It converts entities between the CBOR wire form and the document form,
validates module metadata and node configuration, runs a standalone node
and reads the event journal of a SQLite backed node.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "node config file path")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newDecodeCommand())
	rootCmd.AddCommand(newEncodeCommand())
	rootCmd.AddCommand(newModuleCommand())
	rootCmd.AddCommand(newNodeCommand())
	rootCmd.AddCommand(newJournalCommand())

	return rootCmd
}

// loadConfig loads the --config file, or the defaults when none is given.
func loadConfig() (*config.NodeConfig, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}
