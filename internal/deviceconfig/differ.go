package deviceconfig

import (
	"reflect"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/meshcfg/internal/logging"
	"github.com/muurk/meshcfg/internal/redact"
)

// DiffSection compares one section's field values. A field is written only
// when the edited value is present and differs from the original; an
// absent edited value never produces a write, whatever the original holds.
func DiffSection(original, edited map[string]any, fields FieldMap) Changeset {
	cs := Changeset{}
	for _, f := range fields {
		ev, ok := edited[f.Name]
		if !ok || ev == nil {
			continue
		}
		if ov, ok := original[f.Name]; ok && reflect.DeepEqual(ov, ev) {
			continue
		}
		cs[f.Key] = ev
	}
	return cs
}

// Differ computes diffs between an original and an edited snapshot
type Differ struct {
	logger *zap.Logger
}

// NewDiffer creates a differ. A nil logger disables logging.
func NewDiffer(logger *zap.Logger) *Differ {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Differ{logger: logger}
}

// ComputeDiff returns the per-section writes needed to turn original into
// edited. The result is logged once, redacted.
func (d *Differ) ComputeDiff(original, edited *Snapshot) *Diff {
	diff := ComputeDiff(original, edited)
	logging.LogDiff(d.logger, diff.AsMap())
	if diff.RebootExpected() {
		d.logger.Debug("diff touches reboot-triggering fields")
	}
	return diff
}

// ComputeDiff is the pure form of Differ.ComputeDiff; it does not log.
func ComputeDiff(original, edited *Snapshot) *Diff {
	if original == nil {
		original = &Snapshot{}
	}
	if edited == nil {
		edited = &Snapshot{}
	}

	diff := &Diff{
		Sections: map[Section]Changeset{
			SectionDevice:    DiffSection(original.Device.Values(), edited.Device.Values(), DeviceFields),
			SectionOwner:     diffOwner(original.User, edited.User),
			SectionLoRa:      DiffSection(original.LoRa.Values(), edited.LoRa.Values(), LoRaFields),
			SectionPower:     DiffSection(original.Power.Values(), edited.Power.Values(), PowerFields),
			SectionPosition:  DiffSection(original.Position.Values(), edited.Position.Values(), PositionFields),
			SectionDisplay:   DiffSection(original.Display.Values(), edited.Display.Values(), DisplayFields),
			SectionBluetooth: DiffSection(original.Bluetooth.Values(), edited.Bluetooth.Values(), BluetoothFields),
			SectionNetwork:   DiffSection(original.Network.Values(), edited.Network.Values(), NetworkFields),
			SectionModules:   diffModules(original.Modules, edited.Modules),
		},
		Channels: ReconcileChannels(original.Channels, edited.Channels),
	}

	fixBluetoothPin(diff.Sections[SectionBluetooth])
	dropBlankSecrets(diff.Sections[SectionNetwork])

	return diff
}

// diffOwner compares long and short names independently
func diffOwner(original, edited *UserInfo) Changeset {
	cs := Changeset{}
	if edited == nil {
		return cs
	}
	if original == nil {
		original = &UserInfo{}
	}
	if edited.LongName != nil && (original.LongName == nil || *original.LongName != *edited.LongName) {
		cs[OwnerLongKey] = *edited.LongName
	}
	if edited.ShortName != nil && (original.ShortName == nil || *original.ShortName != *edited.ShortName) {
		cs[OwnerShortKey] = *edited.ShortName
	}
	return cs
}

// diffModules applies the section rule to every module, with blank text
// treated as absent and false booleans skipped when the original never
// reported the field.
func diffModules(original, edited *ModulesConfig) Changeset {
	cs := Changeset{}
	for _, name := range ModuleOrder {
		ov := original.ModuleValues(name)
		ev := edited.ModuleValues(name)

		for _, f := range ModuleFields[name] {
			evn := normalizeText(ev[f.Name])
			if evn == nil {
				continue
			}

			orig, present := ov[f.Name]
			if b, ok := evn.(bool); ok && !b && !present {
				continue
			}
			if present && reflect.DeepEqual(normalizeText(orig), evn) {
				continue
			}
			cs[f.Key] = evn
		}
	}
	return cs
}

// normalizeText trims strings and maps blank strings to nil
func normalizeText(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// fixBluetoothPin drops a blank PIN and sends an all-digit PIN as a number
func fixBluetoothPin(cs Changeset) {
	const key = "bluetooth.fixed_pin"
	v, ok := cs[key].(string)
	if !ok {
		return
	}
	s := strings.TrimSpace(v)
	if s == "" {
		delete(cs, key)
		return
	}
	if isDigits(s) {
		if n, err := strconv.Atoi(s); err == nil {
			cs[key] = n
		}
	}
}

// dropBlankSecrets removes secret fields whose edited value is blank.
// A blank password in an edit form means "unchanged", never "clear it".
func dropBlankSecrets(cs Changeset) {
	for k, v := range cs {
		if s, ok := v.(string); ok && redact.IsSecretKey(k) && strings.TrimSpace(s) == "" {
			delete(cs, k)
		}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
