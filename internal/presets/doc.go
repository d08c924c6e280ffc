// Package presets stores named partial snapshots on disk.
//
// A preset is a snapshot YAML file <dir>/<name>.yaml holding only the
// fields it sets. Applying one overlays it on the device's current
// snapshot (deviceconfig.Overlay) and goes through the normal diff and
// apply path.
//
// Names are trimmed and stripped of spaces, then must be safe file names
// on every platform: no path separators, none of <>:"/\|?*, and not a
// Windows device name such as CON or COM1.
//
// Explicit channel keys never reach the preset file. Save moves them into
// the secret store under the label "<preset>:ch<index>" and writes the
// token instead; LoadResolved and ResolveSecrets turn tokens back into
// keys. A token that no longer resolves leaves the key unset so the
// channel key on the device is not changed.
package presets
