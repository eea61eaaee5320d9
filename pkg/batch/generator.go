package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Generator enumerates every (view, variant) command for a Config.
type Generator struct {
	cfg    Config
	logger *slog.Logger
}

// New validates cfg and returns a generator for it.
func New(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.SceneDir == "" {
		cfg.SceneDir = DefaultSceneDir
	}
	cfg.Views = append([]string(nil), cfg.Views...)
	cfg.Variants = append([]Variant(nil), cfg.Variants...)
	return &Generator{cfg: cfg, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}, nil
}

// SetLogger configures the structured logger for diagnostics.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	g.logger = logger
}

// Config returns a copy of the generator configuration.
func (g *Generator) Config() Config {
	cfg := g.cfg
	cfg.Views = append([]string(nil), g.cfg.Views...)
	cfg.Variants = append([]Variant(nil), g.cfg.Variants...)
	return cfg
}

// Count is the number of commands a full run produces.
func (g *Generator) Count() int {
	return len(g.cfg.Views) * len(g.cfg.Variants)
}

// lineBreaks strips "\r\n", lone "\r" and "\n" line endings alike.
var lineBreaks = strings.NewReplacer("\r\n", "", "\r", "", "\n", "")

// ReadView loads a single view file from the scene directory.
func (g *Generator) ReadView(file string) (View, error) {
	path := g.cfg.SceneDir + file
	data, err := os.ReadFile(path)
	if err != nil {
		return View{}, &FileReadError{View: file, Path: path, Err: err}
	}
	return View{
		File:  file,
		Name:  ShortName(file),
		Flags: lineBreaks.Replace(string(data)),
	}, nil
}

// Each calls fn for every command, views in order and variants within each
// view in order. A view file is read before any of its commands is passed
// to fn. The first error from reading or from fn stops the enumeration.
func (g *Generator) Each(ctx context.Context, fn func(Command) error) error {
	index := 0
	for _, file := range g.cfg.Views {
		if err := ctx.Err(); err != nil {
			return err
		}
		view, err := g.ReadView(file)
		if err != nil {
			return err
		}
		if view.Name == "" {
			g.logger.Warn("view file name too short for a short name", "view", file)
		}
		g.logger.Debug("view loaded", "view", view.Name, "flags", view.Flags)

		for _, variant := range g.cfg.Variants {
			if err := ctx.Err(); err != nil {
				return err
			}
			stats := StatsFile(g.cfg.StatsDir, view.Name, variant.Suffix)
			cmd := Command{
				Index:     index,
				View:      view.Name,
				Variant:   variant,
				StatsFile: stats,
				Line:      FormatLine(g.cfg.Executable, view.Flags, g.cfg.PrimInLeafCount, stats, variant.Flags),
			}
			if err := fn(cmd); err != nil {
				return err
			}
			index++
		}
	}
	return nil
}

// Generate writes one line per command to w as soon as it is formatted.
func (g *Generator) Generate(ctx context.Context, w io.Writer) error {
	return g.Each(ctx, func(cmd Command) error {
		if _, err := io.WriteString(w, cmd.Line+"\n"); err != nil {
			return fmt.Errorf("write command %d: %w", cmd.Index, err)
		}
		return nil
	})
}

// Lines collects all generated lines in memory.
func (g *Generator) Lines(ctx context.Context) ([]string, error) {
	lines := make([]string, 0, g.Count())
	err := g.Each(ctx, func(cmd Command) error {
		lines = append(lines, cmd.Line)
		return nil
	})
	return lines, err
}
