package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Result is the outcome of one executed command line.
type Result struct {
	Stdout   string
	Stderr   string
	Code     int
	Duration time.Duration
}

// OutputTruncatedError is returned alongside a Result when stdout or
// stderr exceeded MaxOutput.
type OutputTruncatedError struct {
	Limit int
}

func (e OutputTruncatedError) Error() string {
	return fmt.Sprintf("output truncated at %d bytes", e.Limit)
}

// SafeExecutor runs generated command lines through the platform shell.
type SafeExecutor struct {
	Timeout   time.Duration
	MaxOutput int
	Blocklist []string
	// Log, when set, additionally receives stdout and stderr unbounded.
	Log io.Writer
}

// Run executes line with the shell. A non-zero exit is reported in
// Result.Code, not as an error.
func (e *SafeExecutor) Run(ctx context.Context, line string) (*Result, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.New("command is required")
	}
	if e.isBlocked(fields[0]) {
		return nil, fmt.Errorf("command blocked: %s", fields[0])
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	shell := ShellCommand(line)
	command := exec.CommandContext(ctx, shell.Path, shell.Args[1:]...)
	// sh may leave a child holding the output pipes after being killed.
	command.WaitDelay = time.Second

	stdoutBuf := &limitedBuffer{limit: e.MaxOutput}
	stderrBuf := &limitedBuffer{limit: e.MaxOutput}
	command.Stdout = stdoutBuf
	command.Stderr = stderrBuf
	if e.Log != nil {
		command.Stdout = io.MultiWriter(stdoutBuf, e.Log)
		command.Stderr = io.MultiWriter(stderrBuf, e.Log)
	}

	start := time.Now()
	err := command.Run()
	res := &Result{Duration: time.Since(start)}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("run %s: %w", fields[0], ctxErr)
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		res.Code = exitErr.ExitCode()
	}

	res.Stdout = stdoutBuf.String()
	res.Stderr = stderrBuf.String()
	if stdoutBuf.truncated || stderrBuf.truncated {
		return res, OutputTruncatedError{Limit: e.MaxOutput}
	}
	return res, nil
}

// ShellCommand wraps a command line for the platform shell.
func ShellCommand(command string) *exec.Cmd {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("cmd", "/C", command)
	default:
		return exec.Command("sh", "-c", command)
	}
}

func (e *SafeExecutor) isBlocked(executable string) bool {
	base := filepath.Base(executable)
	for _, blocked := range e.Blocklist {
		if strings.EqualFold(blocked, executable) || strings.EqualFold(blocked, base) {
			return true
		}
	}
	return false
}

type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (l *limitedBuffer) Write(p []byte) (int, error) {
	if l.limit <= 0 {
		return l.buf.Write(p)
	}
	remaining := l.limit - l.buf.Len()
	if remaining <= 0 {
		l.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		l.truncated = true
		_, _ = l.buf.Write(p[:remaining])
		return len(p), nil
	}
	return l.buf.Write(p)
}

func (l *limitedBuffer) String() string {
	return l.buf.String()
}

var _ io.Writer = (*limitedBuffer)(nil)
