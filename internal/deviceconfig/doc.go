// Package deviceconfig models a Meshtastic node's configuration and computes
// the minimal set of writes that turns one configuration into another.
//
// A Snapshot is a typed read of the device: owner, radio (LoRa), power,
// position, display, bluetooth and network settings, the channel table and
// the module sub-configurations. Every field the firmware may omit is a
// pointer, and nil means "not reported" or, in an edited snapshot,
// "leave alone". Channel keys are the exception: a nil or blank key in an
// edited channel resets it to the default key.
//
// # Diffing
//
// ComputeDiff compares an original snapshot with an edited one and returns
// a Diff keyed by Section:
//   - Generic sections use a static FieldMap from snapshot field names to
//     configuration tool keys ("channel_num" -> "lora.channel_num"). A field
//     is written only when the edited value is present and differs.
//   - Owner long and short names are compared independently.
//   - Modules follow the same rule, with blank text treated as absent and a
//     false boolean skipped when the device never reported the field.
//   - Channels are reconciled into a ChannelPlan of deletes (descending,
//     never index 0) and upserts (ascending) by ReconcileChannels.
//
// Example:
//
//	edited, err := deviceconfig.NewSnapshotBuilder(original).
//	    SetLoRaChannelNum(55).
//	    Build()
//	if err != nil {
//	    return err
//	}
//
//	diff := deviceconfig.NewDiffer(logger).ComputeDiff(original, edited)
//	// diff.Changeset(deviceconfig.SectionLoRa) == {"lora.channel_num": 55}
//
// # Verification
//
// Verify re-runs the differ with the post-apply snapshot as the original;
// whatever would still be written did not take.
//
// # Error Handling
//
// ApplyError carries an ErrorType covering the apply taxonomy (execution
// timeout, execution error, reconnect failure, snapshot failure, and the
// unrecoverable no-connection / no-snapshot cases). GetShortErrorMessage
// and GetTroubleshootingHint turn any of them into user-facing text.
package deviceconfig
