package deviceconfig

import (
	"sort"
)

// Changeset maps tool keys to the values that must be written.
type Changeset map[string]any

// IsEmpty reports whether there is nothing to write
func (c Changeset) IsEmpty() bool {
	return len(c) == 0
}

// Keys returns the changeset keys in lexical order
func (c Changeset) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ChannelUpsert is an insert-or-update of the channel at Index
type ChannelUpsert struct {
	Index  int       `json:"index"`
	Fields Changeset `json:"fields"`
}

// ChannelPlan is the ordered set of channel operations for one apply.
// Deletes run first in descending index order, then upserts ascending.
type ChannelPlan struct {
	Deletes []int           `json:"deletes"`
	Upserts []ChannelUpsert `json:"upserts"`
}

// IsEmpty reports whether the plan has no operations
func (p ChannelPlan) IsEmpty() bool {
	return len(p.Deletes) == 0 && len(p.Upserts) == 0
}

// Diff is the per-section result of comparing two snapshots
type Diff struct {
	Sections map[Section]Changeset
	Channels ChannelPlan
}

// Changeset returns the changeset of a non-channel section (never nil)
func (d *Diff) Changeset(section Section) Changeset {
	if d == nil || d.Sections[section] == nil {
		return Changeset{}
	}
	return d.Sections[section]
}

// SectionEmpty reports whether a section has nothing to write
func (d *Diff) SectionEmpty(section Section) bool {
	if section == SectionChannels {
		return d == nil || d.Channels.IsEmpty()
	}
	return d.Changeset(section).IsEmpty()
}

// IsEmpty reports whether every section is empty
func (d *Diff) IsEmpty() bool {
	for _, s := range SectionOrder {
		if !d.SectionEmpty(s) {
			return false
		}
	}
	return true
}

// ChangedSections returns the non-empty sections in apply order
func (d *Diff) ChangedSections() []Section {
	var out []Section
	for _, s := range SectionOrder {
		if !d.SectionEmpty(s) {
			out = append(out, s)
		}
	}
	return out
}

// RebootExpected reports whether any written field is known to restart the
// device (role, region, modem preset, bluetooth enabled).
func (d *Diff) RebootExpected() bool {
	for _, rs := range rebootSuspects {
		if _, ok := d.Changeset(rs.section)[rs.key]; ok {
			return true
		}
	}
	return false
}

// AsMap renders the diff as plain maps and slices, suitable for the
// redactor and for structured logging.
func (d *Diff) AsMap() map[string]any {
	out := make(map[string]any, len(SectionOrder))
	for _, s := range SectionOrder {
		if s == SectionChannels {
			upserts := make([]any, 0, len(d.Channels.Upserts))
			for _, u := range d.Channels.Upserts {
				upserts = append(upserts, map[string]any{
					"index":  u.Index,
					"fields": map[string]any(u.Fields),
				})
			}
			deletes := make([]any, 0, len(d.Channels.Deletes))
			for _, idx := range d.Channels.Deletes {
				deletes = append(deletes, idx)
			}
			out[string(s)] = map[string]any{"deletes": deletes, "upserts": upserts}
			continue
		}
		out[string(s)] = map[string]any(d.Changeset(s))
	}
	return out
}
