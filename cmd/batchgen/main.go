package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/frustumcull/batchgen/pkg/batch"
	"github.com/frustumcull/batchgen/pkg/config"
	"github.com/frustumcull/batchgen/pkg/logging"
	"github.com/spf13/cobra"
)

type options struct {
	cfgFile    string
	logLevel   string
	preset     string
	executable string
	statsDir   string
	sceneDir   string
	primInLeaf int
	views      []string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "batchgen",
		Short:         "Generate frustum-culling benchmark command lines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default: ~/.batchgen/config.yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&opts.preset, "preset", "", "named base configuration, see the presets command")
	pf.StringVar(&opts.executable, "executable", "", "path of the benchmark executable")
	pf.StringVar(&opts.statsDir, "stats-dir", "", "prefix for generated stats file paths")
	pf.StringVar(&opts.sceneDir, "scene-dir", "", "directory holding the view files")
	pf.IntVar(&opts.primInLeaf, "prim-in-leaf", 0, "primitives per BVH leaf passed as -c")
	pf.StringArrayVar(&opts.views, "view", nil, "view file name (repeatable, replaces the configured list)")

	root.AddCommand(
		generateCmd(opts),
		runCmd(opts),
		viewsCmd(opts),
		presetsCmd(),
		versionCmd(),
	)
	return root
}

// load resolves configuration from file, .env, environment and flags, in
// increasing order of precedence.
func load(cmd *cobra.Command, opts *options) (*config.Config, *batch.Generator, *slog.Logger, error) {
	if _, err := config.LoadDotEnv(config.Workspace()); err != nil {
		return nil, nil, nil, err
	}
	cfg, err := config.LoadConfig(opts.cfgFile)
	if err != nil {
		return nil, nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("preset") {
		cfg.Preset = opts.preset
	}
	if flags.Changed("executable") {
		cfg.Executable = opts.executable
	}
	if flags.Changed("stats-dir") {
		cfg.StatsFilePath = &opts.statsDir
	}
	if flags.Changed("scene-dir") {
		cfg.SceneDir = opts.sceneDir
	}
	if flags.Changed("prim-in-leaf") {
		cfg.PrimInLeafCount = &opts.primInLeaf
	}
	if flags.Changed("view") {
		cfg.ViewNames = opts.views
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

	bc, err := cfg.Batch()
	if err != nil {
		return nil, nil, nil, err
	}
	gen, err := batch.New(bc)
	if err != nil {
		return nil, nil, nil, err
	}
	gen.SetLogger(logger)
	logger.Debug("configuration resolved",
		"executable", bc.Executable,
		"sceneDir", bc.SceneDir,
		"views", len(bc.Views),
		"variants", len(bc.Variants),
	)
	return cfg, gen, logger, nil
}
