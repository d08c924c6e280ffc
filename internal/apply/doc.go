// Package apply writes a configuration diff to a Meshtastic device.
//
// The SectionExecutor turns one section of a deviceconfig.Diff into tool
// invocations and folds the outcome into a SectionResult:
//
//   - generic sections: one invocation with "--set key value" pairs sorted
//     by key, booleans as "true"/"false"
//   - owner: "--set-owner" / "--set-owner-short"
//   - channels: one "--ch-index N --ch-del" per delete (descending), then
//     one invocation per upsert (ascending). A secondary channel with a
//     name uses "--ch-add NAME"; keys are sent as "base64:<key>" or the
//     literal "default".
//
// The Orchestrator runs a whole apply:
//
//	Idle → Diffing → Detached → Executing → (WaitingReboot) →
//	Reconnecting → Snapshotting → Done | Aborted
//
// An empty diff stops at Diffing with a no_change report and never
// touches the connection. A failed or timed-out section stops the run:
// later sections get no result at all. After the writes the orchestrator
// waits SettleDelay when a reboot is expected or anything succeeded,
// reopens the transport on the same port, polls readiness for up to
// ReadyWindow, and reads a forced snapshot (falling back to a cached
// read). The connection is released when Apply returns, whatever
// happened.
//
// Failures are data: the caller always gets a complete Report. Only a
// missing connection or a missing original snapshot return an error.
package apply
