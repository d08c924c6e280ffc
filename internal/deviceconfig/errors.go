package deviceconfig

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for diff and apply operations

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNoChange is not a failure: the edited snapshot matches the device
	ErrTypeNoChange ErrorType = iota
	// ErrTypeExecutionTimeout indicates the configuration tool exceeded its time bound
	ErrTypeExecutionTimeout
	// ErrTypeExecutionError indicates the configuration tool exited non-zero
	ErrTypeExecutionError
	// ErrTypeToolNotFound indicates the configuration tool could not be started
	ErrTypeToolNotFound
	// ErrTypeReconnect indicates the device did not come back after an apply
	ErrTypeReconnect
	// ErrTypeSnapshot indicates the post-apply snapshot could not be read
	ErrTypeSnapshot
	// ErrTypeNoConnection indicates there is no device connection to apply against
	ErrTypeNoConnection
	// ErrTypeNoSnapshot indicates the original snapshot is missing
	ErrTypeNoSnapshot
	// ErrTypeValidation indicates an invalid configuration value
	ErrTypeValidation
	// ErrTypeParse indicates tool output could not be parsed
	ErrTypeParse
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNoChange:
		return "No Change"
	case ErrTypeExecutionTimeout:
		return "Execution Timeout"
	case ErrTypeExecutionError:
		return "Execution Error"
	case ErrTypeToolNotFound:
		return "Tool Not Found"
	case ErrTypeReconnect:
		return "Reconnect Failure"
	case ErrTypeSnapshot:
		return "Snapshot Failure"
	case ErrTypeNoConnection:
		return "No Connection"
	case ErrTypeNoSnapshot:
		return "No Snapshot"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeParse:
		return "Parse Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ApplyError represents an error raised while diffing or applying a configuration
type ApplyError struct {
	Type      ErrorType // Category of error
	Section   Section   // Section being applied (empty for sequence-level errors)
	Message   string    // Human-readable error message
	Err       error     // Underlying error (if any)
	Retryable bool      // Whether retrying the same operation may help
}

// Error implements the error interface
func (e *ApplyError) Error() string {
	prefix := e.Type.String()
	if e.Section != "" {
		prefix = fmt.Sprintf("%s [%s]", prefix, e.Section)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ApplyError) Unwrap() error {
	return e.Err
}

// NewExecutionError creates an error for a tool run that exited non-zero
func NewExecutionError(section Section, message string) *ApplyError {
	return &ApplyError{
		Type:    ErrTypeExecutionError,
		Section: section,
		Message: message,
	}
}

// NewTimeoutError creates an error for a tool run that hit its time bound
func NewTimeoutError(section Section, message string) *ApplyError {
	return &ApplyError{
		Type:      ErrTypeExecutionTimeout,
		Section:   section,
		Message:   message,
		Retryable: true,
	}
}

// NewToolNotFoundError creates an error for a missing configuration tool
func NewToolNotFoundError(path string) *ApplyError {
	return &ApplyError{
		Type:    ErrTypeToolNotFound,
		Message: fmt.Sprintf("configuration tool %q not found", path),
	}
}

// NewReconnectError creates an error for a device that did not come back
func NewReconnectError(port string, err error) *ApplyError {
	return &ApplyError{
		Type:      ErrTypeReconnect,
		Message:   fmt.Sprintf("device on %s was not ready after apply", port),
		Err:       err,
		Retryable: true,
	}
}

// NewSnapshotError creates an error for a failed post-apply read
func NewSnapshotError(err error) *ApplyError {
	return &ApplyError{
		Type:      ErrTypeSnapshot,
		Message:   "could not read configuration after apply",
		Err:       err,
		Retryable: true,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *ApplyError {
	return &ApplyError{
		Type:    ErrTypeParse,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *ApplyError {
	return &ApplyError{
		Type:    ErrTypeValidation,
		Message: message,
	}
}

// ErrNoConnection is returned when an apply is requested without a device connection.
var ErrNoConnection = &ApplyError{Type: ErrTypeNoConnection, Message: "not connected to a device"}

// ErrNoSnapshot is returned when an apply is requested without an original snapshot.
var ErrNoSnapshot = &ApplyError{Type: ErrTypeNoSnapshot, Message: "no configuration has been read from the device"}

func errorType(err error) (ErrorType, bool) {
	var applyErr *ApplyError
	if errors.As(err, &applyErr) {
		return applyErr.Type, true
	}
	return 0, false
}

// IsTimeoutError checks if an error is an execution timeout
func IsTimeoutError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeExecutionTimeout
}

// IsExecutionError checks if an error is a non-zero tool exit
func IsExecutionError(err error) bool {
	t, ok := errorType(err)
	return ok && (t == ErrTypeExecutionError || t == ErrTypeToolNotFound)
}

// IsReconnectError checks if an error is a reconnect failure
func IsReconnectError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeReconnect
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeValidation
}

// IsUnrecoverable reports whether an apply cannot start at all.
func IsUnrecoverable(err error) bool {
	t, ok := errorType(err)
	return ok && (t == ErrTypeNoConnection || t == ErrTypeNoSnapshot)
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var applyErr *ApplyError
	if errors.As(err, &applyErr) {
		return applyErr.Retryable
	}
	return false
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	var applyErr *ApplyError
	if !errors.As(err, &applyErr) {
		return "An unexpected error occurred. Please try again."
	}

	switch applyErr.Type {
	case ErrTypeExecutionTimeout:
		return strings.Join([]string{
			"The configuration tool did not finish in time.",
			"Troubleshooting:",
			"  • Check that the radio is powered and the USB cable is data-capable",
			"  • Close other programs holding the serial port",
			"  • The device may be rebooting; wait a few seconds and read it again",
		}, "\n")

	case ErrTypeExecutionError:
		return strings.Join([]string{
			"The configuration tool rejected the change.",
			"Troubleshooting:",
			"  • Check the tool output in the report for the failing key",
			"  • Verify the firmware supports the setting",
			"  • Sections after the failing one were not applied",
		}, "\n")

	case ErrTypeToolNotFound:
		return strings.Join([]string{
			"The meshtastic command line tool is not installed or not on PATH.",
			"Troubleshooting:",
			"  • Install it with: pip install meshtastic",
			"  • Or point MESHTASTIC_CLI at the executable",
		}, "\n")

	case ErrTypeReconnect:
		return strings.Join([]string{
			"The device did not come back after the changes were written.",
			"Troubleshooting:",
			"  • Region, preset and role changes reboot the radio; give it a moment",
			"  • Unplug and reconnect the device, then run 'meshcfg show'",
		}, "\n")

	case ErrTypeSnapshot:
		return "The changes were sent but the result could not be read back. Run 'meshcfg show' to check."

	case ErrTypeNoConnection:
		return strings.Join([]string{
			"No device is connected.",
			"Troubleshooting:",
			"  • Run 'meshcfg detect' to list serial ports",
			"  • Pass --port when more than one device is attached",
		}, "\n")

	case ErrTypeNoSnapshot:
		return "Read the current configuration before applying changes."

	case ErrTypeValidation:
		return "The configuration values are invalid. Check the error message for details."

	case ErrTypeParse:
		return "The configuration tool output was not understood. Check the tool version."

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var applyErr *ApplyError
	if !errors.As(err, &applyErr) {
		return err.Error()
	}

	switch applyErr.Type {
	case ErrTypeExecutionTimeout:
		return "Configuration tool timed out"
	case ErrTypeExecutionError:
		return "Configuration tool failed"
	case ErrTypeToolNotFound:
		return "meshtastic tool not found"
	case ErrTypeReconnect:
		return "Device did not reconnect"
	case ErrTypeSnapshot:
		return "Could not read configuration back"
	case ErrTypeNoConnection:
		return "Not connected"
	case ErrTypeNoSnapshot:
		return "No configuration loaded"
	default:
		return applyErr.Message
	}
}
