package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gnana997/tscanon/pkg/mcplog"
)

func newCallsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "calls <log-file>",
		Short: "Summarize a tool call log written by serve --log-file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := mcplog.ReadEntries(args[0])
			if err != nil {
				return err
			}
			summary := mcplog.Summarize(entries)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TOOL\tCALLS\tERRORS\tAVG MS\tMAX MS\tBYTES")
			for _, s := range summary {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n",
					s.Tool, s.Calls, s.Errors, s.TotalMs/int64(s.Calls), s.MaxMs, s.ResponseBytes)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}
