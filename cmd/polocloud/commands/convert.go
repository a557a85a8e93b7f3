package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/polocloud/polocloud/pkg/document"
	"github.com/polocloud/polocloud/pkg/fault"
	"github.com/polocloud/polocloud/pkg/mapper"
	"github.com/polocloud/polocloud/pkg/wire"
)

// readInput reads the named file, or stdin for "" and "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// writeOutput writes data to the named file, or stdout for "" and "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func renderDocument(d document.Document, format string) ([]byte, error) {
	switch format {
	case "yaml":
		return document.MarshalYAML(d)
	case "json":
		data, err := document.MarshalJSON(d, true)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("unknown format %q (must be json or yaml)", format)
}

func parseDocument(data []byte, format string) (document.Document, error) {
	switch format {
	case "yaml":
		return document.UnmarshalYAML(data)
	case "json":
		return document.UnmarshalJSON(data)
	}
	return nil, fmt.Errorf("unknown format %q (must be json or yaml)", format)
}

// formatOf guesses a document format from a file extension.
func formatOf(path, def string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json", ".jsonc":
		return "json"
	}
	return def
}

func newDecodeCommand() *cobra.Command {
	var (
		format string
		diag   bool
	)

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode wire frames into documents",
		Long: `Decode a stream of kind-tagged CBOR frames and print every entity in its
document form. Reads stdin when no file is given.`,
		Example: `  # Print a group frame as JSON
  polocloud decode group.cbor

  # Print the CBOR diagnostic notation instead
  polocloud decode --diag group.cbor`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			data, err := readInput(cmd, path)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			if diag {
				out, err := wire.Diagnose(data)
				if err != nil {
					return fmt.Errorf("failed to diagnose input: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
				return err
			}

			dec := wire.NewDecoder(bytes.NewReader(data))
			for count := 0; ; count++ {
				f, err := dec.DecodeFrame()
				if errors.Is(err, io.EOF) {
					log.Debug().Int("frames", count).Msg("Decoded input")
					return nil
				}
				if err != nil {
					return fmt.Errorf("frame %d: %w", count, err)
				}
				c, ok := mapper.Lookup(f.Kind)
				if !ok {
					return fmt.Errorf("frame %d: %w", count,
						fault.SchemaViolation(fmt.Sprintf("unknown entity kind %q", f.Kind), nil).WithCode(fault.CodeUnknownKind))
				}
				v, err := c.DecodeWire(f.Body)
				if err != nil {
					return fmt.Errorf("frame %d: %w", count, err)
				}
				d, err := c.EncodeDocument(v)
				if err != nil {
					return fmt.Errorf("frame %d: %w", count, err)
				}
				out, err := renderDocument(d, format)
				if err != nil {
					return err
				}
				if format == "yaml" && count > 0 {
					out = append([]byte("---\n"), out...)
				}
				if _, err := cmd.OutOrStdout().Write(out); err != nil {
					return err
				}
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, yaml)")
	cmd.Flags().BoolVar(&diag, "diag", false, "print CBOR diagnostic notation")

	return cmd
}

func newEncodeCommand() *cobra.Command {
	var (
		kind   string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Encode a document into a wire frame",
		Long: `Read an entity document (JSON, JSON with comments, or YAML) and write it as
a kind-tagged CBOR frame. Reads stdin when no file is given.`,
		Example: `  # Encode a group document
  polocloud encode --kind group -o group.cbor group.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			c, ok := mapper.Lookup(wire.Kind(kind))
			if !ok {
				return fmt.Errorf("unknown entity kind %q (known: %v)", kind, wire.Kinds())
			}

			data, err := readInput(cmd, path)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			if format == "" {
				format = formatOf(path, "json")
			}
			d, err := parseDocument(data, format)
			if err != nil {
				return fault.SchemaViolation("malformed document", err)
			}
			v, err := c.DecodeDocument(d)
			if err != nil {
				return err
			}
			frame, err := mapper.EncodeFrame(v)
			if err != nil {
				return err
			}

			log.Debug().Str("kind", kind).Int("bytes", len(frame)).Msg("Encoded frame")
			return writeOutput(cmd, output, frame)
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "entity kind (group, service, player, template, ...)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format (json, yaml); guessed from the file extension")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}
