package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/frustumcull/batchgen/pkg/batch"
	"github.com/frustumcull/batchgen/pkg/exec"
	"github.com/frustumcull/batchgen/pkg/logging"
	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// Source yields the commands of a batch in order.
type Source interface {
	Each(ctx context.Context, fn func(batch.Command) error) error
	Count() int
}

// CommandError reports a command that exited with a non-zero status.
type CommandError struct {
	Index  int
	Line   string
	Code   int
	Stderr string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %d exited with status %d: %s", e.Index, e.Code, e.Line)
}

// Runner executes every generated command line instead of printing it.
type Runner struct {
	// Executor is copied for every command; its Log field is replaced when
	// LogDir is set.
	Executor exec.SafeExecutor
	// Jobs bounds concurrent commands. Values below 2 run strictly in order.
	Jobs   int
	LogDir string
	Logger *slog.Logger
}

// Summary describes a finished run.
type Summary struct {
	RunID    string
	Commands int
	Total    time.Duration
	Mean     time.Duration
	Stddev   time.Duration
	Min      time.Duration
	Max      time.Duration
}

// Run executes every command from src and stops at the first failure.
// Commands already finished are still counted in the returned summary.
func (r *Runner) Run(ctx context.Context, src Source) (Summary, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	runID := uuid.NewString()
	logger = logger.With("run", runID)

	if r.LogDir != "" {
		if err := os.MkdirAll(r.LogDir, 0o755); err != nil {
			return Summary{RunID: runID}, fmt.Errorf("create log dir: %w", err)
		}
	}

	var (
		mu        sync.Mutex
		durations []float64
	)
	record := func(d time.Duration) {
		mu.Lock()
		durations = append(durations, d.Seconds())
		mu.Unlock()
	}

	logger.Info("run started", "commands", src.Count(), "jobs", r.jobs())
	start := time.Now()

	var err error
	if r.jobs() <= 1 {
		err = src.Each(ctx, func(cmd batch.Command) error {
			return r.runOne(ctx, logger, cmd, record)
		})
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.jobs())
		eachErr := src.Each(gctx, func(cmd batch.Command) error {
			g.Go(func() error {
				return r.runOne(gctx, logger, cmd, record)
			})
			return nil
		})
		err = g.Wait()
		if err == nil {
			err = eachErr
		}
	}

	summary := summarize(runID, durations, time.Since(start))
	if err != nil {
		logger.Error("run failed", "completed", summary.Commands, "error", err)
		return summary, err
	}
	logger.Info("run finished",
		"commands", summary.Commands,
		"total", summary.Total,
		"mean", summary.Mean,
		"stddev", summary.Stddev,
	)
	return summary, nil
}

func (r *Runner) jobs() int {
	if r.Jobs < 1 {
		return 1
	}
	return r.Jobs
}

func (r *Runner) runOne(ctx context.Context, logger *slog.Logger, cmd batch.Command, record func(time.Duration)) error {
	executor := r.Executor
	if r.LogDir != "" {
		path := filepath.Join(r.LogDir, fmt.Sprintf("%d.log", cmd.Index))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create command log: %w", err)
		}
		defer f.Close()
		executor.Log = f
	}

	logger.Debug("running command", "index", cmd.Index, "view", cmd.View, "suffix", cmd.Variant.Suffix)
	res, err := executor.Run(ctx, cmd.Line)
	var truncated exec.OutputTruncatedError
	switch {
	case errors.As(err, &truncated) && res != nil:
		logger.Warn("command output truncated", "index", cmd.Index, "limit", truncated.Limit)
	case err != nil:
		return fmt.Errorf("command %d: %w", cmd.Index, err)
	}
	record(res.Duration)
	if res.Code != 0 {
		return &CommandError{Index: cmd.Index, Line: cmd.Line, Code: res.Code, Stderr: res.Stderr}
	}
	logger.Info("command finished", "index", cmd.Index, "stats", cmd.StatsFile, "duration", res.Duration)
	return nil
}

func summarize(runID string, durations []float64, total time.Duration) Summary {
	s := Summary{RunID: runID, Commands: len(durations), Total: total}
	if len(durations) == 0 {
		return s
	}
	data := stats.Float64Data(durations)
	mean, _ := stats.Mean(data)
	stddev, _ := stats.StandardDeviation(data)
	lo, _ := stats.Min(data)
	hi, _ := stats.Max(data)
	s.Mean = seconds(mean)
	s.Stddev = seconds(stddev)
	s.Min = seconds(lo)
	s.Max = seconds(hi)
	return s
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
