package device

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/muurk/meshcfg/internal/deviceconfig"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the Meshtastic ChannelSet and ChannelSettings messages.
const (
	fieldChannelSetSettings = 1
	fieldChannelSetLoRa     = 2

	fieldSettingsPSK      = 2
	fieldSettingsName     = 3
	fieldSettingsUplink   = 5
	fieldSettingsDownlink = 6
	fieldSettingsModule   = 7

	fieldModulePrecision = 1
)

// ChannelRole values as reported for URL-decoded channels.
const (
	RolePrimary   = "PRIMARY"
	RoleSecondary = "SECONDARY"
)

var errNoFragment = errors.New("channel URL has no '#' fragment")

// channelSettings is the subset of ChannelSettings this tool edits
type channelSettings struct {
	psk       []byte
	name      string
	uplink    bool
	downlink  bool
	precision uint64
}

// DecodeChannelURL decodes a https://meshtastic.org/e/#... channel URL into
// channel records. The URL only carries enabled channels, in table order;
// the first is the primary and gets index 0, the rest are numbered densely
// from 1.
func DecodeChannelURL(url string) ([]deviceconfig.Channel, error) {
	i := strings.IndexByte(url, '#')
	if i < 0 {
		return nil, errNoFragment
	}
	frag := strings.TrimSpace(url[i+1:])
	// the tool appends ?add=true for additive URLs
	if q := strings.IndexByte(frag, '?'); q >= 0 {
		frag = frag[:q]
	}

	data, err := decodeFragment(frag)
	if err != nil {
		return nil, fmt.Errorf("decode channel URL: %w", err)
	}

	settings, err := parseChannelSet(data)
	if err != nil {
		return nil, fmt.Errorf("parse channel set: %w", err)
	}

	channels := make([]deviceconfig.Channel, 0, len(settings))
	for idx, s := range settings {
		ch := deviceconfig.Channel{
			Index:             idx,
			UplinkEnabled:     deviceconfig.Ptr(s.uplink),
			DownlinkEnabled:   deviceconfig.Ptr(s.downlink),
			PositionPrecision: deviceconfig.Ptr(int(s.precision)),
			PSKPresent:        len(s.psk) > 0,
			Role:              deviceconfig.Ptr(RoleSecondary),
		}
		if idx == 0 {
			ch.Role = deviceconfig.Ptr(RolePrimary)
		}
		if s.name != "" {
			ch.Name = deviceconfig.Ptr(s.name)
		}
		if len(s.psk) > 0 {
			ch.PSK = deviceconfig.Ptr(base64.StdEncoding.EncodeToString(s.psk))
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

// decodeFragment accepts URL-safe base64 with or without padding.
func decodeFragment(frag string) ([]byte, error) {
	frag = strings.TrimRight(frag, "=")
	frag = strings.NewReplacer("+", "-", "/", "_").Replace(frag)
	return base64.RawURLEncoding.DecodeString(frag)
}

func parseChannelSet(b []byte) ([]channelSettings, error) {
	var out []channelSettings
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]

		if num == fieldChannelSetSettings && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			s, err := parseChannelSettings(v)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
			b = b[n:]
			continue
		}

		// lora_config (field 2) and unknown fields are skipped
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
	}
	return out, nil
}

func parseChannelSettings(b []byte) (channelSettings, error) {
	var s channelSettings
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return s, protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == fieldSettingsPSK && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return s, protowire.ParseError(n)
			}
			s.psk = append([]byte(nil), v...)
			b = b[n:]
		case num == fieldSettingsName && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return s, protowire.ParseError(n)
			}
			s.name = string(v)
			b = b[n:]
		case (num == fieldSettingsUplink || num == fieldSettingsDownlink) && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return s, protowire.ParseError(n)
			}
			if num == fieldSettingsUplink {
				s.uplink = protowire.DecodeBool(v)
			} else {
				s.downlink = protowire.DecodeBool(v)
			}
			b = b[n:]
		case num == fieldSettingsModule && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return s, protowire.ParseError(n)
			}
			p, err := parseModuleSettings(v)
			if err != nil {
				return s, err
			}
			s.precision = p
			b = b[n:]
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return s, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return s, nil
}

func parseModuleSettings(b []byte) (uint64, error) {
	var precision uint64
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		b = b[n:]
		if num == fieldModulePrecision && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			precision = v
			b = b[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		b = b[n:]
	}
	return precision, nil
}
