// Package ui renders meshcfg output in the terminal.
//
// Components follow a "render and exit" pattern, with one exception:
//
//   - Header: banner naming the command and the device it targets
//   - RenderSnapshot / RenderDiff / RenderReport: styled text for show,
//     diff and apply; anything secret is masked before it is rendered
//   - Result: closing success, failure or warning box
//   - Confirm: "type yes" prompt before writing to the device
//   - ProgressModel: the live apply display, a Bubble Tea program fed by
//     orchestrator events
//
// RunApply runs the apply worker and the progress program side by side.
// When stdout is not a terminal the program is skipped and LineObserver
// prints one line per finished section instead.
//
// # Logging Integration
//
// zap logging is silent unless MESHCFG_LOG_LEVEL or --log-level enables
// it, so the curated output stays clean. Logs go to stderr.
package ui
