package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnana997/tscanon/pkg/converter"
	"github.com/gnana997/tscanon/pkg/schema"
)

type convertOptions struct {
	references string
	format     string
	maxDepth   int
	strict     bool
}

func newConvertCmd(a *app) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert the exported types of one file",
		Long: `Convert the exported type declarations of one TypeScript file and print
the canonical schema. Declarations that cannot be converted are reported on
stderr; the rest are still printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, a, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.references, "references", "", "reference mode: inline or named (default from config, else inline)")
	cmd.Flags().StringVar(&opts.format, "format", "json", "output format: json or ts")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "maximum type nesting depth (default from config, else 64)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with an error if any declaration fails")
	return cmd
}

func runConvert(cmd *cobra.Command, a *app, path string, opts convertOptions) error {
	if opts.format != "json" && opts.format != "ts" {
		return fmt.Errorf("unknown format %q (want json or ts)", opts.format)
	}

	convOpts, err := a.config.Options()
	if err != nil {
		return err
	}
	if opts.references != "" {
		if convOpts.References, err = converter.ParseReferenceMode(opts.references); err != nil {
			return err
		}
	}
	if opts.maxDepth > 0 {
		convOpts.MaxDepth = opts.maxDepth
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result, err := converter.ConvertSource(path, source, convOpts, a.logger)
	if err != nil {
		return err
	}

	if err := writeResult(cmd.OutOrStdout(), result, opts.format); err != nil {
		return err
	}
	for _, e := range result.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", e)
	}
	if opts.strict && len(result.Errors) > 0 {
		return fmt.Errorf("%d declaration(s) failed to convert", len(result.Errors))
	}
	return nil
}

func writeResult(w io.Writer, result *converter.Result, format string) error {
	if format == "ts" {
		for _, d := range result.Types.Declarations() {
			if _, err := fmt.Fprintln(w, schema.RenderDeclaration(d)); err != nil {
				return err
			}
		}
		return nil
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Types  *schema.Schema               `json:"types"`
		Errors []*converter.ConversionError `json:"errors,omitempty"`
	}{result.Types, result.Errors})
}
