package meshcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/muurk/meshcfg/internal/logging"
	"go.uber.org/zap"
)

const (
	// ExitCodeTimeout is reported when a run is killed at its time bound.
	ExitCodeTimeout = 124
	// ExitCodeNotFound is reported when the tool cannot be started.
	ExitCodeNotFound = 127

	// MaxOutputLen bounds stored stdout/stderr.
	MaxOutputLen = 400
)

// Config holds the configuration for tool execution.
type Config struct {
	// ToolPath is the path to the meshtastic executable.
	// Default: resolved by ResolveToolPath("")
	ToolPath string

	// Port is the serial device path passed as --port. Empty lets the
	// tool auto-detect, which is unreliable with several radios attached.
	Port string

	// Host is a network node address passed as --host instead of --port.
	Host string

	// DefaultTimeout bounds a run when the caller passes zero.
	// Default: 20 seconds
	DefaultTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ToolPath:       ResolveToolPath(""),
		DefaultTimeout: 20 * time.Second,
	}
}

// Result is the outcome of one tool run. It is never modified after Run returns.
type Result struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Success reports whether the run exited 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// TimedOut reports whether the run was killed at its time bound.
func (r Result) TimedOut() bool {
	return r.ExitCode == ExitCodeTimeout
}

// Err converts a failed result into a typed error, or nil on success.
func (r Result) Err(section string, timeout time.Duration) error {
	switch {
	case r.Success():
		return nil
	case r.TimedOut():
		return &TimeoutError{Section: section, Timeout: timeout.String()}
	case r.ExitCode == ExitCodeNotFound:
		return fmt.Errorf("%w: %s", ErrToolNotFound, Truncate(r.Stderr))
	default:
		return &ExecutionError{Section: section, ExitCode: r.ExitCode, Stderr: Truncate(r.Stderr)}
	}
}

// Truncate trims surrounding whitespace and bounds s to MaxOutputLen bytes,
// cutting on a rune boundary.
func Truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= MaxOutputLen {
		return s
	}
	n := MaxOutputLen
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Executor runs the meshtastic tool via os/exec.
type Executor struct {
	config Config
	logger *zap.Logger
}

// NewExecutor creates a new executor with the given configuration.
func NewExecutor(config Config, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ToolPath == "" {
		config.ToolPath = ResolveToolPath("")
	}
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = 20 * time.Second
	}
	return &Executor{
		config: config,
		logger: logger,
	}
}

// ToolPath returns the executable this executor runs.
func (e *Executor) ToolPath() string {
	return e.config.ToolPath
}

// Target returns the port or host the executor addresses.
func (e *Executor) Target() string {
	if e.config.Host != "" {
		return e.config.Host
	}
	return e.config.Port
}

// BaseArgs returns the connection arguments prepended to every run.
func (e *Executor) BaseArgs() []string {
	switch {
	case e.config.Host != "":
		return []string{"--host", e.config.Host}
	case e.config.Port != "":
		return []string{"--port", e.config.Port}
	}
	return nil
}

// Run executes the tool with the connection arguments followed by args and
// waits for it to exit or for timeout to elapse. Failures never surface as
// errors: they are encoded in Result.ExitCode.
func (e *Executor) Run(ctx context.Context, section string, args []string, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = e.config.DefaultTimeout
	}

	full := append(e.BaseArgs(), args...)
	logging.LogCommand(e.logger, section, e.config.ToolPath, full)

	start := time.Now()
	stdout, stderr, exitCode := e.execute(ctx, full, timeout)
	res := Result{
		Args:     full,
		ExitCode: exitCode,
		Stdout:   stdout,
		Stderr:   stderr,
		Duration: time.Since(start),
	}
	logging.LogCommandResult(e.logger, section, res.ExitCode, res.Duration)
	return res
}

func (e *Executor) execute(ctx context.Context, args []string, timeout time.Duration) (stdout, stderr string, exitCode int) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, e.config.ToolPath, args...)
	cmd.WaitDelay = 2 * time.Second
	hideWindow(cmd)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	switch {
	case err == nil:
		exitCode = 0
	case errors.Is(timeoutCtx.Err(), context.DeadlineExceeded):
		exitCode = ExitCodeTimeout
		if strings.TrimSpace(stderr) == "" {
			stderr = "TIMEOUT"
		}
	case errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist):
		exitCode = ExitCodeNotFound
		stderr = fmt.Sprintf("meshtastic tool not found: %v", err)
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			exitCode = exitErr.ExitCode()
		} else {
			// Killed by signal or failed to start for another reason
			exitCode = 1
			if strings.TrimSpace(stderr) == "" {
				stderr = err.Error()
			}
		}
	}

	e.logger.Debug("meshtastic output captured",
		zap.Int("stdout_size", len(stdout)),
		zap.Int("stderr_size", len(stderr)),
	)
	return stdout, stderr, exitCode
}
