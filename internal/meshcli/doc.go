// Package meshcli runs the external meshtastic command line tool.
//
// Every call is a separate process bounded by its own timeout. The executor
// never streams output: stdout and stderr are captured in full and returned
// in a Result together with the exit status and the wall-clock duration.
// Process-level failures are folded into the exit status so callers only
// ever inspect a value:
//
//	0    success
//	124  the call hit its timeout and was killed (ExitCodeTimeout)
//	127  the tool could not be started (ExitCodeNotFound)
//	*    any other failure
//
// The tool is located by ResolveToolPath: an explicit override, then the
// MESHTASTIC_CLI environment variable, then a copy next to the running
// executable, then "meshtastic" on PATH.
//
// Argument lists are logged through the logging package, which masks
// channel keys and passwords before anything reaches a sink.
package meshcli
