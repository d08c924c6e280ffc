package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/muurk/meshcfg/internal/apply"
	"github.com/muurk/meshcfg/internal/deviceconfig"
	"github.com/muurk/meshcfg/internal/redact"
)

// Snapshot output formats.
const (
	FormatDetailed = "detailed"
	FormatCompact  = "compact"
	FormatYAML     = "yaml"
)

// RenderSnapshot renders a snapshot in one of the output formats. Section
// headings of the text formats are styled; YAML is emitted as-is.
func RenderSnapshot(snap *deviceconfig.Snapshot, format string) (string, error) {
	if snap == nil {
		return "", fmt.Errorf("no snapshot to render")
	}
	switch format {
	case FormatYAML:
		data, err := snap.Marshal()
		if err != nil {
			return "", err
		}
		return string(data), nil
	case FormatCompact:
		return snap.FormatCompact(), nil
	case FormatDetailed, "":
		return styleHeadings(snap.FormatDetailed()), nil
	default:
		return "", fmt.Errorf("unknown format %q (want %s, %s or %s)", format, FormatDetailed, FormatCompact, FormatYAML)
	}
}

// styleHeadings colors the "=== Title ===" lines of the text formatter.
func styleHeadings(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if strings.HasPrefix(l, "=== ") && strings.HasSuffix(l, " ===") {
			lines[i] = SectionTitleStyle.Render(strings.Trim(l, "= "))
		}
	}
	return strings.Join(lines, "\n")
}

// RenderDiff renders the redacted changesets of diff followed by the
// redacted command lines an apply would run.
func RenderDiff(diff *deviceconfig.Diff) string {
	if diff == nil || diff.IsEmpty() {
		return KeyStyle.Render("No changes.") + "\n"
	}

	var b strings.Builder
	for _, section := range diff.ChangedSections() {
		b.WriteString(SectionTitleStyle.Render(apply.SectionTitle(section)))
		b.WriteString("\n")

		if section == deviceconfig.SectionChannels {
			for _, idx := range diff.Channels.Deletes {
				b.WriteString(fmt.Sprintf("  %s channel %d\n", ErrorMessageStyle.Render("delete"), idx))
			}
			for _, u := range diff.Channels.Upserts {
				b.WriteString(fmt.Sprintf("  %s channel %d\n", SuccessTitleStyle.Render("upsert"), u.Index))
				writeChangeset(&b, "    ", u.Fields)
			}
			continue
		}
		writeChangeset(&b, "  ", diff.Changeset(section))
	}

	if diff.RebootExpected() {
		b.WriteString("\n")
		b.WriteString(WarningTitleStyle.Render(WarningMarker + " The device is expected to reboot."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(SectionTitleStyle.Render("Planned commands"))
	b.WriteString("\n")
	for _, inv := range apply.Plan(diff) {
		b.WriteString(CommandStyle.Render("meshtastic " + strings.Join(redact.Args(inv.Args), " ")))
		b.WriteString("\n")
	}
	return b.String()
}

func writeChangeset(b *strings.Builder, indent string, cs deviceconfig.Changeset) {
	masked, _ := redact.Value(map[string]any(cs)).(map[string]any)
	keys := make([]string, 0, len(masked))
	for k := range masked {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(indent + KeyStyle.Render(k+" = ") + ValueStyle.Render(fmt.Sprint(masked[k])) + "\n")
	}
}

// RenderReport renders an apply report as a status table followed by its
// errors and verification warnings.
func RenderReport(report *apply.Report) string {
	if report == nil {
		return ""
	}
	if report.Status == apply.StatusNoChange {
		return KeyStyle.Render("No changes; nothing was written.") + "\n"
	}

	var b strings.Builder
	for _, line := range apply.Summarize(report) {
		writeSummaryLine(&b, "", line)
		for _, op := range line.Ops {
			writeSummaryLine(&b, "    ", op)
		}
	}

	if len(report.Errors) > 0 {
		b.WriteString("\n")
		b.WriteString(ErrorTitleStyle.Render("Errors"))
		b.WriteString("\n")
		for _, e := range report.Errors {
			b.WriteString("  " + ErrorMessageStyle.Render(deviceconfig.GetShortErrorMessage(e)) + "\n")
			if e.Message != "" {
				b.WriteString("    " + NoteStyle.Render(e.Message) + "\n")
			}
		}
	}

	if len(report.Mismatches) > 0 {
		b.WriteString("\n")
		b.WriteString(WarningTitleStyle.Render(WarningMarker + " Not confirmed by the device"))
		b.WriteString("\n")
		for _, m := range report.Mismatches {
			b.WriteString("  " + m.String() + "\n")
		}
	}
	return b.String()
}

func writeSummaryLine(b *strings.Builder, indent string, line apply.SummaryLine) {
	marker := StatusStyle(line.Status).Render(StatusMarker(line.Status))
	b.WriteString(fmt.Sprintf("%s%s %-14s %-10s %s",
		indent, marker, line.Section, StatusStyle(line.Status).Render(line.Status),
		KeyStyle.Render(line.Duration.Round(10*time.Millisecond).String())))
	if len(line.Fields) > 0 {
		b.WriteString("  " + NoteStyle.Render(strings.Join(line.Fields, ", ")))
	}
	b.WriteString("\n")
	if line.Status == "Error" || line.Status == "Timeout" {
		if out := firstLine(line.Errors); out != "" {
			b.WriteString(indent + "    " + ErrorMessageStyle.Render(out) + "\n")
		}
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
