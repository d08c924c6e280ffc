package deviceconfig

import (
	"fmt"
	"strings"

	"github.com/muurk/meshcfg/internal/redact"
)

// Mismatch is a value the device did not take after an apply
type Mismatch struct {
	Section Section
	Key     string
	Want    any
}

// String renders the mismatch with secret values masked
func (m Mismatch) String() string {
	want := m.Want
	if redact.IsSecretKey(m.Key) {
		want = redact.Marker
	}
	return fmt.Sprintf("%s: %s expected %v", m.Section, m.Key, want)
}

// Verify compares the snapshot read back after an apply with the edited
// snapshot that was applied. Anything the differ would still write is a
// mismatch. Channel deletions that did not happen are reported too.
//
// Secret fields the firmware does not echo back (WiFi password, MQTT
// password) are skipped when the post-apply snapshot omits them.
func Verify(edited, post *Snapshot) []Mismatch {
	if edited == nil || post == nil {
		return nil
	}

	remaining := ComputeDiff(post, edited)
	var mismatches []Mismatch

	for _, section := range SectionOrder {
		if section == SectionChannels {
			continue
		}
		cs := remaining.Changeset(section)
		for _, key := range cs.Keys() {
			if redact.IsSecretKey(key) && !reportsSecret(post, section, key) {
				continue
			}
			mismatches = append(mismatches, Mismatch{Section: section, Key: key, Want: cs[key]})
		}
	}

	for _, idx := range remaining.Channels.Deletes {
		mismatches = append(mismatches, Mismatch{
			Section: SectionChannels,
			Key:     fmt.Sprintf("channel[%d]", idx),
			Want:    "deleted",
		})
	}
	for _, up := range remaining.Channels.Upserts {
		for _, key := range up.Fields.Keys() {
			if key == ChannelPSKKey && up.Fields[key] == DefaultPSK && hasDefaultKey(post, up.Index) {
				continue
			}
			mismatches = append(mismatches, Mismatch{
				Section: SectionChannels,
				Key:     fmt.Sprintf("channel[%d].%s", up.Index, key),
				Want:    up.Fields[key],
			})
		}
	}

	return mismatches
}

// reportsSecret reports whether the post-apply snapshot carries the secret at all
func reportsSecret(post *Snapshot, section Section, key string) bool {
	name := key[strings.LastIndexByte(key, '.')+1:]
	switch section {
	case SectionNetwork:
		_, ok := post.Network.Values()[name]
		return ok
	case SectionBluetooth:
		_, ok := post.Bluetooth.Values()[name]
		return ok
	case SectionModules:
		module := strings.SplitN(key, ".", 2)[0]
		_, ok := post.Modules.ModuleValues(module)[name]
		return ok
	}
	return true
}

// hasDefaultKey reports whether a channel reads back with the one-byte
// default key, which is what writing "default" produces.
func hasDefaultKey(post *Snapshot, index int) bool {
	ch, ok := post.ChannelByIndex(index)
	return ok && ch.PSK != nil && *ch.PSK == DefaultKeyBase64
}

// FormatMismatches renders mismatches one per line
func FormatMismatches(mismatches []Mismatch) string {
	if len(mismatches) == 0 {
		return "All values verified"
	}
	lines := make([]string, len(mismatches))
	for i, m := range mismatches {
		lines[i] = "  • " + m.String()
	}
	return fmt.Sprintf("%d value(s) did not verify:\n%s", len(mismatches), strings.Join(lines, "\n"))
}
