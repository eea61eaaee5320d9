package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/frustumcull/batchgen/pkg/batch"
	"github.com/frustumcull/batchgen/pkg/exec"
	"github.com/frustumcull/batchgen/pkg/runner"
	"github.com/frustumcull/batchgen/pkg/version"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func generateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Print one command line per view and optimization variant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, gen, _, err := load(cmd, opts)
			if err != nil {
				return err
			}
			return gen.Generate(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runCmd(opts *options) *cobra.Command {
	var (
		jobs    int
		timeout string
		logDir  string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the generated command lines through the shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, gen, logger, err := load(cmd, opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("jobs") {
				cfg.Run.Jobs = jobs
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Run.Timeout = timeout
			}
			if cmd.Flags().Changed("log-dir") {
				cfg.Run.LogDir = logDir
			}
			execTimeout, err := cfg.RunTimeout()
			if err != nil {
				return err
			}

			r := &runner.Runner{
				Executor: exec.SafeExecutor{
					Timeout:   execTimeout,
					MaxOutput: cfg.Run.MaxOutput,
					Blocklist: cfg.Run.Blocklist,
				},
				Jobs:   cfg.Run.Jobs,
				LogDir: cfg.Run.LogDir,
				Logger: logger,
			}
			summary, err := r.Run(cmd.Context(), gen)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d commands in %s (mean %s, stddev %s)\n",
				summary.RunID, summary.Commands, summary.Total, summary.Mean, summary.Stddev)
			return nil
		},
	}
	cmd.Flags().IntVar(&jobs, "jobs", 1, "commands executed concurrently")
	cmd.Flags().StringVar(&timeout, "timeout", "", "per-command timeout, e.g. 10m")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "directory receiving <index>.log per command")
	return cmd
}

func viewsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "Show the configured views and the arguments they pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, gen, _, err := load(cmd, opts)
			if err != nil {
				return err
			}
			reports, err := gen.Inspect(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VIEW\tFILE\tARGS\tWARNINGS")
			for _, r := range reports {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, r.File, formatArgs(r.Args), strings.Join(r.Warnings, "; "))
			}
			return w.Flush()
		},
	}
}

func formatArgs(args map[string]string) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if args[k] == "" {
			parts = append(parts, "-"+k)
			continue
		}
		parts = append(parts, fmt.Sprintf("-%s=%q", k, args[k]))
	}
	return strings.Join(parts, " ")
}

type presetDoc struct {
	Executable      string          `yaml:"executable"`
	StatsFilePath   string          `yaml:"statsFilePath"`
	PrimInLeafCount int             `yaml:"primInLeafCount"`
	SceneDir        string          `yaml:"sceneDir"`
	ViewNames       []string        `yaml:"viewNames"`
	Variants        []batch.Variant `yaml:"variants"`
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [NAME]",
		Short: "List presets, or print one as a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, name := range batch.PresetNames() {
					p, _ := batch.Preset(name)
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d views x %d variants\t%s\n", name, len(p.Views), len(p.Variants), p.Executable)
				}
				return nil
			}
			p, err := batch.Preset(args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			err = enc.Encode(presetDoc{
				Executable:      p.Executable,
				StatsFilePath:   p.StatsDir,
				PrimInLeafCount: p.PrimInLeafCount,
				SceneDir:        p.SceneDir,
				ViewNames:       p.Views,
				Variants:        p.Variants,
			})
			if err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get())
		},
	}
}
