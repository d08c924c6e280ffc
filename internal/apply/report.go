package apply

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/muurk/meshcfg/internal/redact"
)

// Report is the complete outcome of one apply run. A section that was
// never attempted has no entry in Sections.
type Report struct {
	Status         Status
	State          State
	Sections       map[deviceconfig.Section]*SectionResult
	Errors         []*deviceconfig.ApplyError
	PostSnapshot   *deviceconfig.Snapshot
	Mismatches     []deviceconfig.Mismatch
	RebootExpected bool
	Diff           *deviceconfig.Diff
	Duration       time.Duration
}

func newReport() *Report {
	return &Report{
		Status:   StatusSuccess,
		State:    StateIdle,
		Sections: make(map[deviceconfig.Section]*SectionResult),
	}
}

func (r *Report) addError(err *deviceconfig.ApplyError) {
	r.Errors = append(r.Errors, err)
}

// Section returns the result of one section, if it was attempted.
func (r *Report) Section(section deviceconfig.Section) (*SectionResult, bool) {
	res, ok := r.Sections[section]
	return res, ok
}

// Attempted returns the attempted sections in apply order.
func (r *Report) Attempted() []deviceconfig.Section {
	var out []deviceconfig.Section
	for _, s := range deviceconfig.SectionOrder {
		if _, ok := r.Sections[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Degraded reports whether every section went through but the device
// could not be reconnected or read back.
func (r *Report) Degraded() bool {
	return r.Status != StatusError && len(r.Errors) > 0
}

// AsMap renders the report as plain maps and slices.
func (r *Report) AsMap() map[string]any {
	sections := make(map[string]any, len(r.Sections))
	for _, s := range r.Attempted() {
		sections[string(s)] = sectionMap(r.Sections[s])
	}

	errs := make([]any, 0, len(r.Errors))
	for _, e := range r.Errors {
		m := map[string]any{
			"type":    e.Type.String(),
			"message": e.Message,
		}
		if e.Section != "" {
			m["section"] = string(e.Section)
		}
		if e.Err != nil {
			m["cause"] = e.Err.Error()
		}
		errs = append(errs, m)
	}

	mismatches := make([]any, 0, len(r.Mismatches))
	for _, m := range r.Mismatches {
		mismatches = append(mismatches, m.String())
	}

	out := map[string]any{
		"status":          string(r.Status),
		"state":           r.State.String(),
		"reboot_expected": r.RebootExpected,
		"duration_s":      r.Duration.Seconds(),
		"sections":        sections,
		"errors":          errs,
		"mismatches":      mismatches,
	}
	if r.Diff != nil {
		out["diff"] = r.Diff.AsMap()
	}
	if r.PostSnapshot != nil {
		out["post_snapshot"] = snapshotMap(r.PostSnapshot)
	}
	return out
}

// Redacted returns AsMap passed through the redactor. Use it for anything
// written outside the process.
func (r *Report) Redacted() map[string]any {
	out, _ := redact.Value(r.AsMap()).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	return out
}

func sectionMap(res *SectionResult) map[string]any {
	m := map[string]any{
		"status":         string(res.Status),
		"duration_s":     res.Duration.Seconds(),
		"fields_changed": stringsToAny(res.ChangedFields),
		"stdout":         res.Stdout,
		"stderr":         res.Stderr,
	}
	if res.Section == deviceconfig.SectionChannels {
		m["deleted"] = opsMap(res.Deleted)
		m["upserts"] = opsMap(res.Upserts)
	}
	return m
}

func opsMap(ops []OpResult) []any {
	out := make([]any, 0, len(ops))
	for _, op := range ops {
		out = append(out, map[string]any{
			"index":          op.Index,
			"status":         string(op.Status),
			"duration_s":     op.Duration.Seconds(),
			"fields_changed": stringsToAny(op.ChangedFields),
			"stdout":         op.Stdout,
			"stderr":         op.Stderr,
		})
	}
	return out
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// snapshotMap converts a snapshot through its JSON form so the redactor
// sees plain maps keyed like the snapshot file.
func snapshotMap(s *deviceconfig.Snapshot) map[string]any {
	data, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

// SummaryLine is one human-readable row of an apply summary.
type SummaryLine struct {
	Section  string
	Status   string
	Duration time.Duration
	Fields   []string
	Response string
	Errors   string
	// Ops holds channel deletes and upserts
	Ops []SummaryLine
}

var sectionTitles = map[deviceconfig.Section]string{
	deviceconfig.SectionLoRa: "LoRa",
}

// SectionTitle returns the display name of a section.
func SectionTitle(s deviceconfig.Section) string {
	if t, ok := sectionTitles[s]; ok {
		return t
	}
	name := string(s)
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// PrettyStatus maps a status to Success, Error, Timeout or No change.
func PrettyStatus(s Status) string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusError:
		return "Error"
	case StatusTimeout:
		return "Timeout"
	case StatusNoChange:
		return "No change"
	case "":
		return "Unknown"
	default:
		str := string(s)
		return strings.ToUpper(str[:1]) + str[1:]
	}
}

// Summarize turns a report into display rows in apply order.
func Summarize(r *Report) []SummaryLine {
	if r == nil {
		return nil
	}
	var lines []SummaryLine
	for _, s := range r.Attempted() {
		res := r.Sections[s]
		line := SummaryLine{
			Section:  SectionTitle(s),
			Status:   PrettyStatus(res.Status),
			Duration: res.Duration,
			Fields:   res.ChangedFields,
			Response: res.Stdout,
			Errors:   res.Stderr,
		}
		for _, op := range res.Deleted {
			line.Ops = append(line.Ops, opLine("delete", op))
		}
		for _, op := range res.Upserts {
			line.Ops = append(line.Ops, opLine("upsert", op))
		}
		lines = append(lines, line)
	}
	return lines
}

func opLine(kind string, op OpResult) SummaryLine {
	return SummaryLine{
		Section:  kind + " #" + strconv.Itoa(op.Index),
		Status:   PrettyStatus(op.Status),
		Duration: op.Duration,
		Fields:   op.ChangedFields,
		Response: op.Stdout,
		Errors:   op.Stderr,
	}
}
