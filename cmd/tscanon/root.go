package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gnana997/tscanon/pkg/util"
)

// app carries state shared by subcommands once flags and config are read.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	config *ProjectConfig
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "tscanon",
		Short:         "Convert exported TypeScript types into a canonical type graph",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (default ./"+configFileName+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text, json")

	root.AddCommand(
		newConvertCmd(a),
		newScanCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
		newSetupCmd(a),
		newCallsCmd(),
		newVersionCmd(),
	)
	return root
}

// init loads the config file and builds the logger. Flags override file
// values; file values override defaults.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := loadProjectConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}

	lc, err := cfg.LoggerConfig()
	if err != nil {
		return fmt.Errorf("invalid logging flags: %w", err)
	}
	lc.Output = cmd.ErrOrStderr()

	a.config = cfg
	a.logger = util.NewLogger(lc)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tscanon %s\n", version)
		},
	}
}
