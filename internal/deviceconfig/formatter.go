package deviceconfig

import (
	"fmt"
	"sort"
	"strings"

	"github.com/muurk/meshcfg/internal/redact"
)

// Summary returns a one-line summary of the snapshot
func (s *Snapshot) Summary() string {
	name, hw, fw, port := "unknown", "unknown", "unknown", "?"
	if s.User != nil && s.User.LongName != nil {
		name = *s.User.LongName
	}
	if s.User != nil && s.User.HWModel != nil {
		hw = *s.User.HWModel
	}
	if s.Metadata != nil {
		if s.Metadata.FirmwareVersion != nil {
			fw = *s.Metadata.FirmwareVersion
		}
		if s.Metadata.Port != nil {
			port = *s.Metadata.Port
		}
		if hw == "unknown" && s.Metadata.HWModel != nil {
			hw = *s.Metadata.HWModel
		}
	}
	return fmt.Sprintf("%s (%s) @ %s (FW: %s)", name, hw, port, fw)
}

// FormatOwner returns a formatted string with owner information
func (s *Snapshot) FormatOwner() string {
	var b strings.Builder

	b.WriteString("=== Owner ===\n")
	if s.User == nil {
		b.WriteString("(not reported)\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Long Name:  %s\n", text(s.User.LongName)))
	b.WriteString(fmt.Sprintf("Short Name: %s\n", text(s.User.ShortName)))
	b.WriteString(fmt.Sprintf("Node ID:    %s\n", text(s.User.ID)))
	b.WriteString(fmt.Sprintf("Hardware:   %s\n", text(s.User.HWModel)))

	return b.String()
}

// FormatSection returns a formatted string with the fields of one section.
// Secret fields are shown as set/unset, never by value.
func FormatSection(title string, values map[string]any) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("=== %s ===\n", title))
	if len(values) == 0 {
		b.WriteString("(not reported)\n")
		return b.String()
	}

	keys := make([]string, 0, len(values))
	width := 0
	for k := range values {
		keys = append(keys, k)
		if len(k) > width {
			width = len(k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := values[k]
		if redact.IsSecretKey(k) {
			v = maskedValue(v)
		}
		b.WriteString(fmt.Sprintf("%-*s  %v\n", width, k+":", v))
	}

	return b.String()
}

// FormatChannels returns a formatted string with the channel table
func (s *Snapshot) FormatChannels() string {
	var b strings.Builder

	b.WriteString("=== Channels ===\n")
	if len(s.Channels) == 0 {
		b.WriteString("(none)\n")
		return b.String()
	}

	for _, ch := range s.Channels {
		role := "SECONDARY"
		if ch.Index == 0 {
			role = "PRIMARY"
		}
		b.WriteString(fmt.Sprintf("[%d] %-12s %-9s key:%-8s up:%-5s down:%-5s precision:%s\n",
			ch.Index,
			text(ch.Name),
			role,
			pskState(ch),
			flag(ch.UplinkEnabled),
			flag(ch.DownlinkEnabled),
			number(ch.PositionPrecision)))
	}

	return b.String()
}

// FormatCompact returns a compact multi-line format suitable for terminal display
func (s *Snapshot) FormatCompact() string {
	var b strings.Builder

	b.WriteString(s.Summary() + "\n")
	if s.Device != nil {
		b.WriteString(fmt.Sprintf("Role:     %s\n", text(s.Device.Role)))
	}
	if s.LoRa != nil {
		b.WriteString(fmt.Sprintf("Radio:    %s / %s (slot %s, hops %s)\n",
			text(s.LoRa.Region), text(s.LoRa.ModemPreset), number(s.LoRa.ChannelNum), number(s.LoRa.HopLimit)))
	}
	names := make([]string, 0, len(s.Channels))
	for _, ch := range s.Channels {
		name := fmt.Sprintf("%d:%s", ch.Index, text(ch.Name))
		if ch.GPSEnabled() {
			name += "(pos)"
		}
		names = append(names, name)
	}
	b.WriteString(fmt.Sprintf("Channels: %s\n", strings.Join(names, " ")))

	return b.String()
}

// FormatDetailed returns a comprehensive formatted string with all configuration details
func (s *Snapshot) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(s.FormatOwner())
	for _, sec := range []struct {
		title  string
		values map[string]any
	}{
		{"Device", s.Device.Values()},
		{"LoRa", s.LoRa.Values()},
		{"Power", s.Power.Values()},
		{"Position", s.Position.Values()},
		{"Display", s.Display.Values()},
		{"Bluetooth", s.Bluetooth.Values()},
		{"Network", s.Network.Values()},
	} {
		b.WriteString("\n")
		b.WriteString(FormatSection(sec.title, sec.values))
	}
	b.WriteString("\n")
	b.WriteString(s.FormatChannels())

	for _, name := range ModuleOrder {
		values := s.Modules.ModuleValues(name)
		if len(values) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(FormatSection("Module "+name, values))
	}

	return b.String()
}

func maskedValue(v any) string {
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return "(unset)"
	}
	return "(set)"
}

func pskState(ch Channel) string {
	switch {
	case ch.PSK != nil && (*ch.PSK == DefaultKeyBase64 || *ch.PSK == DefaultPSK):
		return "default"
	case ch.PSKPresent || (ch.PSK != nil && *ch.PSK != ""):
		return "custom"
	default:
		return "none"
	}
}

func text(p *string) string {
	if p == nil || *p == "" {
		return "-"
	}
	return *p
}

func number(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *p)
}

func flag(p *bool) string {
	if p == nil {
		return "-"
	}
	if *p {
		return "yes"
	}
	return "no"
}
