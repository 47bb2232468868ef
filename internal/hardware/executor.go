package hardware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"syscall"
	"time"
)

// Timeout bounds for external commands. Caller-supplied timeouts are
// clamped into this range rather than rejected.
const (
	minCommandTimeout = 100 * time.Millisecond
	maxCommandTimeout = 60 * time.Second
)

// Result holds the outcome of one completed external command. A
// non-zero exit code is data, not an error.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Executor runs single external commands with a bounded timeout and
// guaranteed child cleanup. It is safe for concurrent use.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an executor logging through the given logger.
func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logger}
}

// Run executes argv with the given timeout and captures output.
// Returns ErrValidation for malformed argv, ErrTimeout when the
// deadline expired (the child is killed, not leaked), and ErrNotFound
// when the binary does not exist. All other failures, including
// non-zero exit, come back as a Result with a nil error.
func (e *Executor) Run(ctx context.Context, argv []string, timeout time.Duration) (Result, error) {
	return e.RunInput(ctx, argv, nil, timeout)
}

// RunInput is Run with bytes piped to the child's stdin. Used by the
// EC register backend, whose dd invocations take the register value on
// stdin.
func (e *Executor) RunInput(ctx context.Context, argv []string, stdin []byte, timeout time.Duration) (Result, error) {
	if err := validateArgv(argv); err != nil {
		return Result{}, err
	}

	timeout = clampTimeout(timeout)
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if cmdCtx.Err() == context.DeadlineExceeded {
		e.logger.Warn("Command timed out", "command", argv[0], "timeout", timeout)
		return Result{}, fmt.Errorf("%w: %s after %s", ErrTimeout, argv[0], timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Non-zero exit is data, not a fault.
			return Result{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}, nil
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return Result{}, fmt.Errorf("%w: %s", ErrNotFound, argv[0])
		}
		e.logger.Error("Command failed to start", "command", argv[0], "error", err)
		return Result{}, err
	}

	return Result{ExitCode: 0, Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

func validateArgv(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("%w: empty command", ErrValidation)
	}
	for i, arg := range argv {
		if arg == "" {
			return fmt.Errorf("%w: empty argument at position %d", ErrValidation, i)
		}
	}
	return nil
}

func clampTimeout(d time.Duration) time.Duration {
	if d < minCommandTimeout {
		return minCommandTimeout
	}
	if d > maxCommandTimeout {
		return maxCommandTimeout
	}
	return d
}
