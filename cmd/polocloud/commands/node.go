package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/polocloud/polocloud/pkg/node"
	"github.com/polocloud/polocloud/pkg/telemetry"
)

func newNodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Check or run a node",
	}
	cmd.AddCommand(newNodeCheckCommand())
	cmd.AddCommand(newNodeRunCommand())
	return cmd
}

func newNodeCheckCommand() *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a node configuration",
		Long: `Load and validate the node configuration given with --config. With --open
the node is assembled once: the store is opened and migrated, then closed.`,
		Example: `  polocloud node check -c node.yaml
  polocloud node check -c node.yaml --open`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if open {
				n, err := node.New(cmd.Context(), cfg, node.WithTelemetry(telemetry.Nop()))
				if err != nil {
					return err
				}
				if err := n.Close(cmd.Context()); err != nil {
					return err
				}
			}

			if jsonOutput {
				data, err := cfg.Marshal()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "store:   %s\n", cfg.Store.Driver)
			if cfg.Store.SQLite != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "path:    %s (journal: %v)\n", cfg.Store.SQLite.Path, cfg.Store.Journal)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "events:  %s\n", cfg.Events.Mode)
			fmt.Fprintf(cmd.OutOrStdout(), "modules: %s\n", cfg.Modules.Dir)
			log.Info().Str("config", configPath).Msg("Node configuration is valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "open and migrate the configured store")

	return cmd
}

func newNodeRunCommand() *cobra.Command {
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a standalone node until interrupted",
		Long: `Assemble a node from --config, admit its modules and serve metrics until
the process receives SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			n, err := node.New(ctx, cfg)
			if err != nil {
				return err
			}
			if err := n.Start(ctx); err != nil {
				log.Warn().Err(err).Msg("Some modules failed to load")
			}
			log.Info().Int("modules", len(n.Host.Modules())).Msg("Node running")

			<-ctx.Done()
			log.Info().Msg("Shutting down node")

			closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			return n.Close(closeCtx)
		},
	}

	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "time allowed for modules and the event bus to drain")

	return cmd
}
