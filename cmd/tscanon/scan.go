package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gnana997/tscanon/pkg/catalog"
	"github.com/gnana997/tscanon/pkg/scanner"
)

func newScanCmd(a *app) *cobra.Command {
	var output string
	var name string

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Convert every TypeScript file under a directory into a catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = a.config.Output
			}
			s := scanner.NewScanner(a.logger)
			defer s.Close()

			cat, stats, err := runScan(commandContext(cmd), a, s, args[0], name)
			if err != nil {
				return err
			}
			printScanStats(cmd.ErrOrStderr(), stats)

			if output == "" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cat)
			}
			if err := cat.WriteFile(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the catalog to this file instead of stdout")
	cmd.Flags().StringVar(&name, "name", "", "catalog name (default: directory name)")
	return cmd
}

// runScan scans dir with the project config and validates the result.
func runScan(ctx context.Context, a *app, s *scanner.Scanner, dir, name string) (*catalog.Catalog, *scanner.ScanStats, error) {
	cfg, err := a.config.ScanConfig()
	if err != nil {
		return nil, nil, err
	}
	cfg.Name = name

	cat, stats, err := s.Run(ctx, dir, cfg)
	if err != nil {
		return nil, stats, err
	}
	if errs := cat.Validate(); len(errs) > 0 {
		return nil, stats, fmt.Errorf("catalog failed validation: %w", errors.Join(errs...))
	}
	return cat, stats, nil
}

func printScanStats(w io.Writer, stats *scanner.ScanStats) {
	fmt.Fprintf(w, "scanned %d files: %d converted, %d failed, %d types, %d conversion errors (%dms)\n",
		stats.FilesDiscovered, stats.FilesConverted, stats.FilesFailed,
		stats.Declarations, stats.ConversionErrors, stats.TotalTimeMs)
	for _, f := range stats.Failures {
		fmt.Fprintf(w, "  failed: %s: %s\n", f.Path, f.Error)
	}
}
