// Package device reads a Meshtastic node through the meshtastic command
// line tool and hands the result to the apply engine.
//
// A Session claims its port with an advisory lock file (flock on Unix,
// LockFileEx on Windows) so two meshcfg processes never drive the same
// radio. Closing the session releases the lock; the apply engine does this
// before it runs the tool for writes and reopens the port through a
// Transport afterwards.
//
// Reads use two tool commands:
//   - `--export-config` for the configuration. Keys are normalised from
//     camelCase to snake_case and the channel table is decoded from the
//     embedded channel URL, a base64url ChannelSet protobuf.
//   - `--device-metadata` for firmware version and hardware model. It also
//     serves as the readiness probe after a write.
package device
