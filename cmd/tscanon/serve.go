package main

import (
	"github.com/spf13/cobra"

	"github.com/gnana997/tscanon/pkg/catalog"
	"github.com/gnana997/tscanon/pkg/indexer"
	mcpserver "github.com/gnana997/tscanon/pkg/mcp"
	"github.com/gnana997/tscanon/pkg/mcplog"
	"github.com/gnana997/tscanon/pkg/scanner"
)

func newServeCmd(a *app) *cobra.Command {
	var logFile string
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve <dir>",
		Short: "Scan a directory and serve its types over MCP on stdio",
		Long: `Scan a directory and start an MCP server on stdin/stdout exposing the
list_types, get_type, list_errors and convert_source tools. With --watch the
catalog is kept current as files change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := scanner.NewScanner(a.logger)
			defer s.Close()

			cat, stats, err := runScan(commandContext(cmd), a, s, args[0], "")
			if err != nil {
				return err
			}
			a.logger.Info("catalog ready",
				"files", stats.FilesConverted, "types", stats.Declarations, "run_id", cat.RunID)

			callLog, err := mcplog.NewLogger(logFile)
			if err != nil {
				return err
			}
			if callLog != nil {
				defer callLog.Close()
			}

			srv := mcpserver.NewServer(catalog.NewQueryService(cat, cat.BuildIndex()), s.Checker(), callLog)

			if watch {
				live, err := startLive(a, s, cat, indexer.DefaultWatchOptions().DebounceMs, srv.SetCatalog)
				if err != nil {
					return err
				}
				defer live.Close()
			}

			return srv.ServeStdio()
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "append a JSONL record of every tool call to this file")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-convert files as they change")
	return cmd
}
