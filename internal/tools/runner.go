package tools

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// ExitUnavailable is the exit code reported when a command could not be
// started, ran past its deadline, or was cancelled. Callers treat every
// negative exit code the same way.
const ExitUnavailable = -1

const (
	defaultGracePeriod = time.Second
	defaultWaitDelay   = 5 * time.Second
	maxLineSize        = 1024 * 1024
)

// CommandResult contains the outcome of a single external command
type CommandResult struct {
	ExitCode int
	Output   string
}

// OK reports a clean zero exit.
func (r CommandResult) OK() bool {
	return r.ExitCode == 0
}

// Unavailable reports whether the command never completed (not found,
// timed out, cancelled).
func (r CommandResult) Unavailable() bool {
	return r.ExitCode < 0
}

// Executor runs external tools. Components depend on this interface so
// tests can hand them canned tool output.
type Executor interface {
	Run(ctx context.Context, name string, args []string, timeout time.Duration) CommandResult
	RunStreaming(ctx context.Context, name string, args []string, timeout time.Duration, onLine func(string)) CommandResult
}

// Runner is the os/exec backed Executor.
type Runner struct {
	Logger hclog.Logger

	// GracePeriod bounds how long the streaming reader may keep draining
	// output after the child has exited.
	GracePeriod time.Duration
}

// NewRunner returns a Runner logging through logger (nil disables logging).
func NewRunner(logger hclog.Logger) *Runner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Runner{Logger: logger, GracePeriod: defaultGracePeriod}
}

var _ Executor = (*Runner)(nil)

// Run executes name with args and captures combined stdout/stderr.
// The whole process group is killed when timeout elapses or ctx is
// cancelled; the output captured up to that point is kept.
func (r *Runner) Run(ctx context.Context, name string, args []string, timeout time.Duration) CommandResult {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	configureProcessGroup(cmd)
	// Bounds Wait when a grandchild keeps the output pipe open
	cmd.WaitDelay = defaultWaitDelay

	// Same writer for both streams: os/exec serialises the writes
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	start := time.Now()
	r.logger().Debug("starting tool", "name", name, "args", args, "timeout", timeout)

	if err := cmd.Start(); err != nil {
		r.logger().Debug("tool failed to start", "name", name, "error", err)
		return CommandResult{ExitCode: ExitUnavailable}
	}

	waitErr := cmd.Wait()
	result := CommandResult{
		ExitCode: exitCode(ctx, cmd, waitErr),
		Output:   buf.String(),
	}

	r.logger().Debug("tool finished", "name", name, "exit_code", result.ExitCode,
		"elapsed", time.Since(start).Round(time.Millisecond), "bytes", len(result.Output))
	return result
}

// RunStreaming behaves like Run but also calls onLine for every non-empty
// line of combined output as soon as it is read. onLine runs on a
// background goroutine. The returned Output holds the same lines joined
// with newlines.
func (r *Runner) RunStreaming(ctx context.Context, name string, args []string, timeout time.Duration, onLine func(string)) CommandResult {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	pr, pw, err := os.Pipe()
	if err != nil {
		r.logger().Debug("creating output pipe failed", "name", name, "error", err)
		return CommandResult{ExitCode: ExitUnavailable}
	}
	defer pr.Close()

	cmd := exec.CommandContext(ctx, name, args...)
	configureProcessGroup(cmd)
	cmd.Stdout = pw
	cmd.Stderr = pw

	start := time.Now()
	r.logger().Debug("starting tool (streaming)", "name", name, "args", args, "timeout", timeout)

	if err := cmd.Start(); err != nil {
		pw.Close()
		r.logger().Debug("tool failed to start", "name", name, "error", err)
		return CommandResult{ExitCode: ExitUnavailable}
	}
	// The child holds its own copy of the write end
	pw.Close()

	var (
		mu    sync.Mutex
		lines []string
	)
	readerDone := make(chan struct{})

	go func() {
		defer close(readerDone)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := strings.TrimRight(scanner.Text(), " \t\r")
			if line == "" {
				continue
			}
			mu.Lock()
			lines = append(lines, line)
			mu.Unlock()
			if onLine != nil {
				onLine(line)
			}
		}
		// A line past maxLineSize stops the scanner. Keep draining so the
		// child is not left blocked on a full pipe until its deadline.
		if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
			r.logger().Debug("output reader stopped, discarding the rest", "name", name, "error", err)
			_, _ = io.Copy(io.Discard, pr)
		}
	}()

	waitErr := cmd.Wait()

	// A grandchild may still hold the pipe; closing our end unblocks the reader.
	select {
	case <-readerDone:
	case <-time.After(r.gracePeriod()):
		pr.Close()
		<-readerDone
	}

	mu.Lock()
	output := strings.Join(lines, "\n")
	lineCount := len(lines)
	mu.Unlock()

	result := CommandResult{
		ExitCode: exitCode(ctx, cmd, waitErr),
		Output:   output,
	}

	r.logger().Debug("tool finished", "name", name, "exit_code", result.ExitCode,
		"elapsed", time.Since(start).Round(time.Millisecond), "lines", lineCount)
	return result
}

func (r *Runner) logger() hclog.Logger {
	if r == nil || r.Logger == nil {
		return hclog.NewNullLogger()
	}
	return r.Logger
}

func (r *Runner) gracePeriod() time.Duration {
	if r == nil || r.GracePeriod <= 0 {
		return defaultGracePeriod
	}
	return r.GracePeriod
}

// withTimeout derives a deadline-bound context; timeout <= 0 means no
// deadline beyond the parent's.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// exitCode maps the result of cmd.Wait onto the CommandResult convention.
func exitCode(ctx context.Context, cmd *exec.Cmd, waitErr error) int {
	if ctx.Err() != nil {
		return ExitUnavailable
	}
	if waitErr == nil || errors.Is(waitErr, exec.ErrWaitDelay) {
		if cmd.ProcessState != nil {
			return cmd.ProcessState.ExitCode()
		}
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return ExitUnavailable
}
