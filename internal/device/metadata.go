package device

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/muurk/meshcfg/internal/deviceconfig"
)

var metadataLine = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*:\s*(.*?)\s*$`)

// ParseMetadata extracts the firmware self-description from the output of
// `meshtastic --device-metadata`. It returns nil when no known field was
// found, which usually means the device never answered.
func ParseMetadata(out string) *deviceconfig.Metadata {
	var md deviceconfig.Metadata
	found := false

	for _, line := range strings.Split(out, "\n") {
		m := metadataLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key := SnakeCase(m[1])
		val := strings.Trim(m[2], `"`)

		switch key {
		case "firmware_version":
			md.FirmwareVersion = deviceconfig.Ptr(val)
		case "hw_model":
			md.HWModel = deviceconfig.Ptr(val)
		case "device_state_version":
			n, err := strconv.Atoi(val)
			if err != nil {
				continue
			}
			md.DeviceStateVersion = deviceconfig.Ptr(n)
		case "has_wifi", "has_bluetooth", "has_ethernet":
			b, err := strconv.ParseBool(val)
			if err != nil {
				continue
			}
			switch key {
			case "has_wifi":
				md.HasWifi = deviceconfig.Ptr(b)
			case "has_bluetooth":
				md.HasBluetooth = deviceconfig.Ptr(b)
			default:
				md.HasEthernet = deviceconfig.Ptr(b)
			}
		default:
			continue
		}
		found = true
	}

	if !found {
		return nil
	}
	return &md
}
