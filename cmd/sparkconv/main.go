// Command sparkconv converts between HTML and block documents on the command
// line. Output goes to stdout and logs go to stderr.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/sparkeditor/spark/config"
	"github.com/sparkeditor/spark/internal/domain"
	"github.com/sparkeditor/spark/internal/service"
	"github.com/sparkeditor/spark/pkg/blocks"
	"github.com/sparkeditor/spark/pkg/logger"
)

var version = config.VERSION

type rootOptions struct {
	envFile  string
	logLevel string
}

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logOutput io.Writer) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "sparkconv",
		Short:         "Convert HTML to Spark block documents and back",
		Version:       version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "environment file with IMPORT_* and EXPORT_* settings")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	rootCmd.AddCommand(newImportCmd(opts, logOutput), newExportCmd(opts, logOutput))
	return rootCmd
}

func (o *rootOptions) conversionService(logOutput io.Writer) (*service.ConversionService, error) {
	cfg, err := config.LoadWithOptions(config.LoadOptions{EnvFile: o.envFile})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return service.NewConversionService(cfg, logger.NewLeveledLogger(logOutput, o.logLevel)), nil
}

func newImportCmd(opts *rootOptions, logOutput io.Writer) *cobra.Command {
	var (
		blocksPerSection int
		pretty           bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.html|->",
		Short: "Import HTML and print the sections and warnings as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			markup, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			svc, err := opts.conversionService(logOutput)
			if err != nil {
				return err
			}

			result, err := svc.Import(context.Background(), &domain.ImportRequest{
				HTML:             string(markup),
				BlocksPerSection: blocksPerSection,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(result)
		},
	}
	cmd.Flags().IntVar(&blocksPerSection, "blocks-per-section", 0, "loose blocks grouped per section (0 uses the configured value)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}

func newExportCmd(opts *rootOptions, logOutput io.Writer) *cobra.Command {
	var (
		body         bool
		title        string
		metadata     bool
		omitMetadata bool
	)

	cmd := &cobra.Command{
		Use:   "export <file.json|->",
		Short: "Export sections as an HTML document or body fragment",
		Long: `Export reads either a JSON array of sections or an object with a
"sections" field, such as the output of the import command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			sections, err := parseSections(data)
			if err != nil {
				return err
			}

			svc, err := opts.conversionService(logOutput)
			if err != nil {
				return err
			}

			req := &domain.ExportRequest{
				Sections:        sections,
				Format:          domain.ExportFormatDocument,
				Title:           title,
				IncludeMetadata: metadata,
				OmitMetadata:    omitMetadata,
			}
			if body {
				req.Format = domain.ExportFormatBody
			}

			markup, err := svc.Export(context.Background(), req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), markup)
			return err
		},
	}
	cmd.Flags().BoolVar(&body, "body", false, "emit only the body fragment")
	cmd.Flags().StringVar(&title, "title", "", "document title")
	cmd.Flags().BoolVar(&metadata, "metadata", false, "embed round-trip metadata in the body fragment")
	cmd.Flags().BoolVar(&omitMetadata, "omit-metadata", false, "leave round-trip metadata out of the full document")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// parseSections accepts a bare sections array or any object carrying one
// under "sections"
func parseSections(data []byte) (blocks.Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("input is not valid JSON")
	}

	raw := data
	if field := gjson.GetBytes(data, "sections"); field.Exists() {
		raw = []byte(field.Raw)
	} else if !gjson.ParseBytes(data).IsArray() {
		return nil, fmt.Errorf(`input must be a sections array or an object with a "sections" field`)
	}

	return blocks.UnmarshalDocument(raw)
}
