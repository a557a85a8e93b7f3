package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/polocloud/polocloud/pkg/config"
	"github.com/polocloud/polocloud/pkg/events"
	"github.com/polocloud/polocloud/pkg/stores"
)

func newJournalCommand() *cobra.Command {
	var (
		kind  string
		after int64
		limit int
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List events recorded by a SQLite node",
		Example: `  # Last service state changes
  polocloud journal -c node.yaml --kind service.state --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Store.Driver != config.DriverSQLite {
				return fmt.Errorf("the journal needs the %s store driver, config uses %s", config.DriverSQLite, cfg.Store.Driver)
			}

			store, err := stores.NewSQLiteStore(*cfg.Store.SQLite, nil)
			if err != nil {
				return err
			}
			if err := store.Open(cmd.Context()); err != nil {
				return err
			}
			defer store.Close()

			journal := stores.NewJournal(store, events.NewCodec())
			entries, err := journal.List(cmd.Context(), stores.JournalFilter{
				Kind:  events.Kind(kind),
				After: after,
				Limit: limit,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				for _, e := range entries {
					if err := enc.Encode(e.Envelope); err != nil {
						return err
					}
				}
				return nil
			}
			for _, e := range entries {
				ts := time.UnixMilli(e.Envelope.Timestamp).Format(time.RFC3339)
				fmt.Fprintf(out, "%6d  %s  %-22s %s\n", e.Seq, ts, e.Envelope.Kind, e.Envelope.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only list events of this kind")
	cmd.Flags().Int64Var(&after, "after", 0, "only list events after this sequence number")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of events (0 for all)")

	return cmd
}
