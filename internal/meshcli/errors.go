package meshcli

import (
	"errors"
	"fmt"
	"strings"
)

// ErrToolNotFound is returned when the meshtastic tool cannot be located or started.
var ErrToolNotFound = errors.New("meshtastic tool not found")

// ExecutionError represents a tool run that exited non-zero.
type ExecutionError struct {
	// Section is the configuration section the run belonged to
	Section string
	// ExitCode is the process exit code
	ExitCode int
	// Stderr is the captured (truncated) stderr output
	Stderr string
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("meshtastic failed for %s (exit code %d)", e.Section, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// TimeoutError represents a tool run that was killed at its time bound.
type TimeoutError struct {
	// Section is the configuration section the run belonged to
	Section string
	// Timeout is the bound that was exceeded
	Timeout string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("meshtastic timed out for %s after %s\n"+
		"Hint: the device may be rebooting or the port is held by another program",
		e.Section, e.Timeout)
}

// PrerequisiteError represents a tool that was found but does not work.
type PrerequisiteError struct {
	// Path is the resolved tool path
	Path string
	// Details provides additional context
	Details string
	// Underlying error
	Err error
}

func (e *PrerequisiteError) Error() string {
	msg := fmt.Sprintf("meshtastic tool unusable: %s", e.Path)
	if e.Details != "" {
		msg += "\n" + e.Details
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\nError: %v", e.Err)
	}
	return msg
}

func (e *PrerequisiteError) Unwrap() error {
	return e.Err
}
