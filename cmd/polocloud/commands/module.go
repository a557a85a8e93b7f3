package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/polocloud/polocloud/pkg/module"
)

func newModuleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Inspect module metadata",
	}
	cmd.AddCommand(newModuleValidateCommand())
	return cmd
}

func newModuleValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>...",
		Short: "Validate module metadata files",
		Long: `Validate module.yaml files. A directory argument is scanned for
<module>/module.yaml entries.`,
		Example: `  # Validate one module
  polocloud module validate modules/signs/module.yaml

  # Validate every module of a node
  polocloud module validate modules`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				found []*module.Metadata
				errs  []error
			)
			for _, path := range args {
				info, err := os.Stat(path)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				if info.IsDir() {
					metas, err := module.ScanDirectory(path)
					found = append(found, metas...)
					errs = append(errs, err)
					continue
				}
				m, err := module.LoadMetadata(path)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				found = append(found, m)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(found); err != nil {
					return err
				}
			} else {
				for _, m := range found {
					fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-40s %s\n", m.ID, m.Main, m.Path)
				}
			}

			if err := errors.Join(errs...); err != nil {
				return err
			}
			log.Info().Int("modules", len(found)).Msg("Module metadata is valid")
			return nil
		},
	}
}
