package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/gnana997/tscanon/pkg/catalog"
	"github.com/gnana997/tscanon/pkg/indexer"
	"github.com/gnana997/tscanon/pkg/scanner"
)

func newWatchCmd(a *app) *cobra.Command {
	var output string
	var metricsAddr string
	var debounceMs int

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Scan a directory, then re-convert files as they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = a.config.Output
			}
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := scanner.NewScanner(a.logger)
			defer s.Close()

			cat, stats, err := runScan(ctx, a, s, args[0], "")
			if err != nil {
				return err
			}
			printScanStats(cmd.ErrOrStderr(), stats)
			if output != "" {
				if err := cat.WriteFile(output); err != nil {
					return err
				}
			}

			if metricsAddr != "" {
				shutdown := serveMetrics(metricsAddr, a)
				defer shutdown()
			}

			live, err := startLive(a, s, cat, debounceMs, func(next *catalog.Catalog) {
				if output == "" {
					return
				}
				if err := next.WriteFile(output); err != nil {
					a.logger.Error("failed to write catalog", "path", output, "error", err)
				}
			})
			if err != nil {
				return err
			}
			defer live.Close()

			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (Ctrl-C to stop)\n", cat.Root)
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "keep this catalog file up to date")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	cmd.Flags().IntVar(&debounceMs, "debounce-ms", indexer.DefaultWatchOptions().DebounceMs, "delay before converting a changed file")
	return cmd
}

// liveCatalog keeps a catalog current as files change.
type liveCatalog struct {
	index   *indexer.SchemaIndex
	watcher *indexer.Watcher
	logger  *slog.Logger
}

// startLive seeds an index from cat and starts a watcher over cat.Root.
// onChange receives a fresh catalog snapshot after every applied update.
func startLive(a *app, s *scanner.Scanner, cat *catalog.Catalog, debounceMs int, onChange func(*catalog.Catalog)) (*liveCatalog, error) {
	cfg, err := a.config.ScanConfig()
	if err != nil {
		return nil, err
	}

	idxCfg := indexer.DefaultSchemaIndexConfig()
	// Every scanned file must stay resident for snapshots to be complete.
	if n := 2 * len(cat.Files); n > idxCfg.MaxCachedFiles {
		idxCfg.MaxCachedFiles = n
	}

	fc := scanner.NewFileConverter(s.Checker(), cfg.Options, a.logger)
	idx, err := indexer.NewSchemaIndex(cat.Root, fc, idxCfg, a.logger)
	if err != nil {
		return nil, err
	}
	idx.Seed(cat)

	w, err := indexer.NewWatcher(idx, cfg, indexer.WatchOptions{
		DebounceMs: debounceMs,
		OnUpdate: func(u indexer.Update) {
			if u.Err != nil {
				return
			}
			onChange(idx.Snapshot(cat.Name))
		},
	}, a.logger)
	if err != nil {
		idx.Close()
		return nil, err
	}
	if err := w.Start(); err != nil {
		idx.Close()
		return nil, err
	}
	return &liveCatalog{index: idx, watcher: w, logger: a.logger}, nil
}

func (l *liveCatalog) Close() {
	if err := l.watcher.Stop(); err != nil {
		l.logger.Warn("failed to stop watcher", "error", err)
	}
	l.index.Close()
}

// serveMetrics exposes the default Prometheus registry on addr and returns
// a shutdown function.
func serveMetrics(addr string, a *app) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
