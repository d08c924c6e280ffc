package device

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/muurk/meshcfg/internal/deviceconfig"
	"gopkg.in/yaml.v3"
)

// exportDoc is the layout written by `meshtastic --export-config` after
// key normalisation.
type exportDoc struct {
	Owner      *string `yaml:"owner"`
	OwnerShort *string `yaml:"owner_short"`
	ChannelURL string  `yaml:"channel_url"`
	Config     struct {
		Device    *deviceconfig.DeviceSection    `yaml:"device"`
		Power     *deviceconfig.PowerSection     `yaml:"power"`
		LoRa      *deviceconfig.LoRaSection      `yaml:"lora"`
		Position  *deviceconfig.PositionSection  `yaml:"position"`
		Display   *deviceconfig.DisplaySection   `yaml:"display"`
		Bluetooth *deviceconfig.BluetoothSection `yaml:"bluetooth"`
		Network   *deviceconfig.NetworkSection   `yaml:"network"`
	} `yaml:"config"`
	ModuleConfig *deviceconfig.ModulesConfig `yaml:"module_config"`
}

// keyAliases covers names whose camelCase form does not split back to the
// protobuf field name.
var keyAliases = map[string]string{
	"use12h_clock": "use_12h_clock",
}

var topLevelKey = regexp.MustCompile(`^[A-Za-z_]+:`)

// ParseExportConfig parses the output of `meshtastic --export-config`. Keys
// may be camelCase or snake_case depending on the tool version; both map
// onto the snapshot schema. Channels are decoded from channel_url.
func ParseExportConfig(out []byte) (*deviceconfig.Snapshot, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(stripPreamble(out), &root); err != nil {
		return nil, deviceconfig.NewParseError("export-config output is not YAML", err)
	}
	if len(root.Content) == 0 {
		return nil, deviceconfig.NewParseError("export-config output is empty", nil)
	}
	normalizeKeys(&root)

	var doc exportDoc
	if err := root.Decode(&doc); err != nil {
		return nil, deviceconfig.NewParseError("unexpected export-config layout", err)
	}

	snap := &deviceconfig.Snapshot{
		Device:    doc.Config.Device,
		Power:     doc.Config.Power,
		LoRa:      doc.Config.LoRa,
		Position:  doc.Config.Position,
		Display:   doc.Config.Display,
		Bluetooth: doc.Config.Bluetooth,
		Network:   doc.Config.Network,
		Modules:   doc.ModuleConfig,
	}
	if doc.Owner != nil || doc.OwnerShort != nil {
		snap.User = &deviceconfig.UserInfo{LongName: doc.Owner, ShortName: doc.OwnerShort}
	}

	if doc.ChannelURL != "" {
		channels, err := DecodeChannelURL(doc.ChannelURL)
		if err != nil {
			return nil, deviceconfig.NewParseError("invalid channel_url", err)
		}
		snap.Channels = channels
	}
	return snap, nil
}

// stripPreamble drops status lines such as "Connected to radio" printed
// before the YAML document.
func stripPreamble(out []byte) []byte {
	lines := bytes.Split(out, []byte("\n"))
	for i, line := range lines {
		trimmed := bytes.TrimSpace(line)
		if bytes.HasPrefix(trimmed, []byte("#")) || topLevelKey.Match(line) {
			return bytes.Join(lines[i:], []byte("\n"))
		}
	}
	return out
}

// normalizeKeys rewrites every mapping key in the tree to snake_case.
func normalizeKeys(n *yaml.Node) {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind == yaml.ScalarNode {
				k.Value = SnakeCase(k.Value)
			}
		}
	}
	for _, c := range n.Content {
		normalizeKeys(c)
	}
}

// SnakeCase converts a camelCase protobuf JSON name to its field name.
// Names already in snake_case are returned unchanged.
func SnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && s[i-1] != '_' {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if alias, ok := keyAliases[out]; ok {
		return alias
	}
	return out
}
