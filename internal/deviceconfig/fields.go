package deviceconfig

// Section names a top-level configuration group
type Section string

const (
	SectionDevice    Section = "device"
	SectionOwner     Section = "owner"
	SectionLoRa      Section = "lora"
	SectionPower     Section = "power"
	SectionPosition  Section = "position"
	SectionDisplay   Section = "display"
	SectionBluetooth Section = "bluetooth"
	SectionNetwork   Section = "network"
	SectionChannels  Section = "channels"
	SectionModules   Section = "modules"
)

// SectionOrder is the order in which sections are written to the device.
var SectionOrder = []Section{
	SectionDevice,
	SectionOwner,
	SectionLoRa,
	SectionPower,
	SectionPosition,
	SectionDisplay,
	SectionBluetooth,
	SectionNetwork,
	SectionChannels,
	SectionModules,
}

// Owner changeset keys
const (
	OwnerLongKey  = "owner_long"
	OwnerShortKey = "owner_short"
)

// Channel changeset keys
const (
	ChannelNameKey      = "name"
	ChannelPSKKey       = "psk"
	ChannelUplinkKey    = "uplink_enabled"
	ChannelDownlinkKey  = "downlink_enabled"
	ChannelPrecisionKey = "module_settings.position_precision"

	// DefaultPSK asks the firmware to use its well-known default key.
	DefaultPSK = "default"

	// DefaultKeyBase64 is how the default key reads back from the device.
	DefaultKeyBase64 = "AQ=="
)

// Field maps a snapshot field name to the key the configuration tool expects
type Field struct {
	Name string
	Key  string
}

// FieldMap is a section's static list of writable fields
type FieldMap []Field

// fieldsFor builds a FieldMap whose tool keys are "<prefix>.<name>"
func fieldsFor(prefix string, names ...string) FieldMap {
	fm := make(FieldMap, len(names))
	for i, n := range names {
		fm[i] = Field{Name: n, Key: prefix + "." + n}
	}
	return fm
}

var (
	DeviceFields = fieldsFor("device", "role")

	LoRaFields = fieldsFor("lora",
		"region", "modem_preset", "channel_num", "hop_limit", "tx_enabled", "tx_power")

	PowerFields = fieldsFor("power",
		"ls_secs", "wait_bluetooth_secs", "min_wake_secs")

	PositionFields = fieldsFor("position",
		"gps_update_interval", "position_broadcast_smart_enabled", "broadcast_smart_minimum_distance",
		"broadcast_smart_minimum_interval_secs", "position_broadcast_secs")

	DisplayFields = fieldsFor("display",
		"screen_on_secs", "gps_format", "auto_screen_carousel_secs", "units", "oled", "displaymode",
		"heading_bold", "flip_screen", "compass_north_top", "wake_on_tap_or_motion",
		"compass_orientation", "use_12h_clock")

	BluetoothFields = fieldsFor("bluetooth", "enabled", "fixed_pin", "mode")

	NetworkFields = fieldsFor("network",
		"ntp_server", "wifi_enabled", "wifi_ssid", "wifi_psk", "eth_enabled", "rsyslog_server")
)

// ModuleOrder lists the module sub-configurations the engine writes
var ModuleOrder = []string{
	"mqtt", "serial", "store_forward", "range_test", "telemetry", "canned_message",
	"audio", "remote_hardware", "neighbor_info", "ambient_lighting", "detection_sensor", "paxcounter",
}

// ModuleFields holds the field map of every module in ModuleOrder
var ModuleFields = map[string]FieldMap{
	"mqtt": fieldsFor("mqtt",
		"enabled", "address", "username", "password", "root", "json_enabled", "tls_enabled",
		"proxy_to_client_enabled", "map_reporting_enabled"),
	"serial": fieldsFor("serial",
		"enabled", "echo", "rxd", "txd", "baud", "timeout", "mode", "override_console_serial_port"),
	"store_forward": fieldsFor("store_forward",
		"enabled", "heartbeat", "records", "history_return_max", "history_return_window", "is_server"),
	"range_test": fieldsFor("range_test", "enabled", "sender", "save"),
	"telemetry": fieldsFor("telemetry",
		"device_update_interval", "environment_update_interval", "environment_measurement_enabled",
		"environment_screen_enabled", "environment_display_fahrenheit", "air_quality_enabled",
		"air_quality_interval", "power_measurement_enabled", "power_update_interval",
		"power_screen_enabled", "health_measurement_enabled", "health_update_interval",
		"health_screen_enabled"),
	"canned_message": fieldsFor("canned_message", "enabled", "allow_input_source", "send_bell"),
	"audio": fieldsFor("audio",
		"codec2_enabled", "ptt_pin", "bitrate", "i2s_ws", "i2s_sd", "i2s_din", "i2s_sck"),
	"remote_hardware": fieldsFor("remote_hardware", "enabled"),
	"neighbor_info":   fieldsFor("neighbor_info", "enabled", "update_interval", "transmit_over_lora"),
	"ambient_lighting": fieldsFor("ambient_lighting",
		"led_state", "current", "red", "green", "blue"),
	"detection_sensor": fieldsFor("detection_sensor",
		"enabled", "minimum_broadcast_secs", "detection_trigger_type", "state_broadcast_secs",
		"send_bell", "name", "monitor_pin", "use_pullup"),
	"paxcounter": fieldsFor("paxcounter", "enabled", "paxcounter_update_interval"),
}

// rebootSuspect is a field whose change makes the firmware restart
type rebootSuspect struct {
	section Section
	key     string
}

var rebootSuspects = []rebootSuspect{
	{SectionDevice, "device.role"},
	{SectionLoRa, "lora.region"},
	{SectionLoRa, "lora.modem_preset"},
	{SectionBluetooth, "bluetooth.enabled"},
}
