package deviceconfig

import (
	"sort"
	"strings"
)

// channelNoiseDefaults are values an edit form fills in for fields the
// device never reported. Writing them would only echo the firmware default.
var channelNoiseDefaults = map[string]any{
	ChannelUplinkKey:    false,
	ChannelDownlinkKey:  false,
	ChannelPrecisionKey: 0,
}

// ReconcileChannels computes the channel operations that turn the original
// channel table into the edited one. The primary channel (index 0) is
// never deleted.
func ReconcileChannels(original, edited []Channel) ChannelPlan {
	byIdxOrig := make(map[int]Channel, len(original))
	for _, ch := range original {
		byIdxOrig[ch.Index] = ch
	}
	byIdxEdit := make(map[int]Channel, len(edited))
	for _, ch := range edited {
		byIdxEdit[ch.Index] = ch
	}

	plan := ChannelPlan{Deletes: []int{}, Upserts: []ChannelUpsert{}}

	for idx := range byIdxOrig {
		if idx == 0 {
			continue
		}
		if _, ok := byIdxEdit[idx]; !ok {
			plan.Deletes = append(plan.Deletes, idx)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(plan.Deletes)))

	indices := make([]int, 0, len(byIdxEdit))
	for idx := range byIdxEdit {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	for _, idx := range indices {
		orig, existed := byIdxOrig[idx]
		fields := diffChannel(orig, byIdxEdit[idx], existed)
		if !fields.IsEmpty() {
			plan.Upserts = append(plan.Upserts, ChannelUpsert{Index: idx, Fields: fields})
		}
	}

	return plan
}

func diffChannel(orig, edit Channel, existed bool) Changeset {
	fields := Changeset{}
	if !existed {
		orig = Channel{Index: edit.Index}
	}

	// Nil and blank keys are the same absent value; clearing a key resets
	// the channel to the default one.
	if op, ep := normalizePSK(orig.PSK), normalizePSK(edit.PSK); op != ep {
		if ep == "" {
			fields[ChannelPSKKey] = DefaultPSK
		} else {
			fields[ChannelPSKKey] = ep
		}
	}

	if edit.Name != nil && (orig.Name == nil || *orig.Name != *edit.Name) {
		fields[ChannelNameKey] = *edit.Name
	}

	diffChannelValue(fields, ChannelUplinkKey, boolValue(orig.UplinkEnabled), boolValue(edit.UplinkEnabled))
	diffChannelValue(fields, ChannelDownlinkKey, boolValue(orig.DownlinkEnabled), boolValue(edit.DownlinkEnabled))
	diffChannelValue(fields, ChannelPrecisionKey, intValue(orig.PositionPrecision), intValue(edit.PositionPrecision))

	return fields
}

func diffChannelValue(fields Changeset, key string, orig, edit any) {
	if edit == nil {
		return
	}
	if orig == nil && edit == channelNoiseDefaults[key] {
		return
	}
	if orig != edit {
		fields[key] = edit
	}
}

func boolValue(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

func intValue(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func normalizePSK(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// RenumberChannels prepares a user-edited channel list for diffing. Rows
// are ordered by their current index, the primary channel keeps index 0
// and secondary channels are numbered densely from 1, so stale indices left
// by presets or deleted rows never reach the reconciler.
func RenumberChannels(channels []Channel) []Channel {
	sorted := make([]Channel, len(channels))
	copy(sorted, channels)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	next := 1
	for i := range sorted {
		if sorted[i].Index == 0 {
			continue
		}
		sorted[i].Index = next
		next++
	}
	return sorted
}
