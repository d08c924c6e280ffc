package deviceconfig

import (
	"fmt"
	"os"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

// Snapshot is a full read of a device's configuration. Every field that is
// optional at the protocol level is a pointer; nil means "not reported".
type Snapshot struct {
	User      *UserInfo         `yaml:"user,omitempty" json:"user,omitempty"`
	Metadata  *Metadata         `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	MyInfo    *MyInfo           `yaml:"my_info,omitempty" json:"my_info,omitempty"`
	Device    *DeviceSection    `yaml:"device,omitempty" json:"device,omitempty"`
	Power     *PowerSection     `yaml:"power,omitempty" json:"power,omitempty"`
	LoRa      *LoRaSection      `yaml:"lora,omitempty" json:"lora,omitempty"`
	Position  *PositionSection  `yaml:"position,omitempty" json:"position,omitempty"`
	Display   *DisplaySection   `yaml:"display,omitempty" json:"display,omitempty"`
	Bluetooth *BluetoothSection `yaml:"bluetooth,omitempty" json:"bluetooth,omitempty"`
	Network   *NetworkSection   `yaml:"network,omitempty" json:"network,omitempty"`
	Channels  []Channel         `yaml:"channels,omitempty" json:"channels,omitempty"`
	Modules   *ModulesConfig    `yaml:"modules,omitempty" json:"modules,omitempty"`
}

// UserInfo is the node's owner record
type UserInfo struct {
	ID        *string `yaml:"id,omitempty" json:"id,omitempty"`
	LongName  *string `yaml:"long_name,omitempty" json:"long_name,omitempty"`
	ShortName *string `yaml:"short_name,omitempty" json:"short_name,omitempty"`
	MacAddr   *string `yaml:"macaddr,omitempty" json:"macaddr,omitempty"`
	HWModel   *string `yaml:"hw_model,omitempty" json:"hw_model,omitempty"`
}

// Metadata is the firmware's self-description
type Metadata struct {
	Port               *string `yaml:"port,omitempty" json:"port,omitempty"`
	FirmwareVersion    *string `yaml:"firmware_version,omitempty" json:"firmware_version,omitempty"`
	DeviceStateVersion *int    `yaml:"device_state_version,omitempty" json:"device_state_version,omitempty"`
	HWModel            *string `yaml:"hw_model,omitempty" json:"hw_model,omitempty"`
	HasWifi            *bool   `yaml:"has_wifi,omitempty" json:"has_wifi,omitempty"`
	HasBluetooth       *bool   `yaml:"has_bluetooth,omitempty" json:"has_bluetooth,omitempty"`
	HasEthernet        *bool   `yaml:"has_ethernet,omitempty" json:"has_ethernet,omitempty"`
}

// MyInfo identifies the local node
type MyInfo struct {
	NodeNum     *uint32 `yaml:"my_node_num,omitempty" json:"my_node_num,omitempty"`
	RebootCount *int    `yaml:"reboot_count,omitempty" json:"reboot_count,omitempty"`
	DeviceID    *string `yaml:"device_id,omitempty" json:"device_id,omitempty"`
}

// DeviceSection holds config.device
type DeviceSection struct {
	Role                  *string `yaml:"role,omitempty" json:"role,omitempty"`
	RebroadcastMode       *string `yaml:"rebroadcast_mode,omitempty" json:"rebroadcast_mode,omitempty"`
	NodeInfoBroadcastSecs *int    `yaml:"node_info_broadcast_secs,omitempty" json:"node_info_broadcast_secs,omitempty"`
	SerialEnabled         *bool   `yaml:"serial_enabled,omitempty" json:"serial_enabled,omitempty"`
	LedHeartbeatDisabled  *bool   `yaml:"led_heartbeat_disabled,omitempty" json:"led_heartbeat_disabled,omitempty"`
	Tzdef                 *string `yaml:"tzdef,omitempty" json:"tzdef,omitempty"`
}

// PowerSection holds config.power
type PowerSection struct {
	LsSecs            *int  `yaml:"ls_secs,omitempty" json:"ls_secs,omitempty"`
	WaitBluetoothSecs *int  `yaml:"wait_bluetooth_secs,omitempty" json:"wait_bluetooth_secs,omitempty"`
	MinWakeSecs       *int  `yaml:"min_wake_secs,omitempty" json:"min_wake_secs,omitempty"`
	SdsSecs           *int  `yaml:"sds_secs,omitempty" json:"sds_secs,omitempty"`
	IsPowerSaving     *bool `yaml:"is_power_saving,omitempty" json:"is_power_saving,omitempty"`
}

// LoRaSection holds config.lora, the radio settings
type LoRaSection struct {
	Region      *string `yaml:"region,omitempty" json:"region,omitempty"`
	ModemPreset *string `yaml:"modem_preset,omitempty" json:"modem_preset,omitempty"`
	ChannelNum  *int    `yaml:"channel_num,omitempty" json:"channel_num,omitempty"`
	HopLimit    *int    `yaml:"hop_limit,omitempty" json:"hop_limit,omitempty"`
	TxEnabled   *bool   `yaml:"tx_enabled,omitempty" json:"tx_enabled,omitempty"`
	TxPower     *int    `yaml:"tx_power,omitempty" json:"tx_power,omitempty"`
	UsePreset   *bool   `yaml:"use_preset,omitempty" json:"use_preset,omitempty"`
}

// PositionSection holds config.position
type PositionSection struct {
	GPSUpdateInterval                 *int    `yaml:"gps_update_interval,omitempty" json:"gps_update_interval,omitempty"`
	PositionBroadcastSmartEnabled     *bool   `yaml:"position_broadcast_smart_enabled,omitempty" json:"position_broadcast_smart_enabled,omitempty"`
	BroadcastSmartMinimumDistance     *int    `yaml:"broadcast_smart_minimum_distance,omitempty" json:"broadcast_smart_minimum_distance,omitempty"`
	BroadcastSmartMinimumIntervalSecs *int    `yaml:"broadcast_smart_minimum_interval_secs,omitempty" json:"broadcast_smart_minimum_interval_secs,omitempty"`
	PositionBroadcastSecs             *int    `yaml:"position_broadcast_secs,omitempty" json:"position_broadcast_secs,omitempty"`
	GPSMode                           *string `yaml:"gps_mode,omitempty" json:"gps_mode,omitempty"`
	FixedPosition                     *bool   `yaml:"fixed_position,omitempty" json:"fixed_position,omitempty"`
}

// DisplaySection holds config.display
type DisplaySection struct {
	ScreenOnSecs           *int    `yaml:"screen_on_secs,omitempty" json:"screen_on_secs,omitempty"`
	GPSFormat              *string `yaml:"gps_format,omitempty" json:"gps_format,omitempty"`
	AutoScreenCarouselSecs *int    `yaml:"auto_screen_carousel_secs,omitempty" json:"auto_screen_carousel_secs,omitempty"`
	Units                  *string `yaml:"units,omitempty" json:"units,omitempty"`
	OLED                   *string `yaml:"oled,omitempty" json:"oled,omitempty"`
	DisplayMode            *string `yaml:"displaymode,omitempty" json:"displaymode,omitempty"`
	HeadingBold            *bool   `yaml:"heading_bold,omitempty" json:"heading_bold,omitempty"`
	FlipScreen             *bool   `yaml:"flip_screen,omitempty" json:"flip_screen,omitempty"`
	CompassNorthTop        *bool   `yaml:"compass_north_top,omitempty" json:"compass_north_top,omitempty"`
	WakeOnTapOrMotion      *bool   `yaml:"wake_on_tap_or_motion,omitempty" json:"wake_on_tap_or_motion,omitempty"`
	CompassOrientation     *string `yaml:"compass_orientation,omitempty" json:"compass_orientation,omitempty"`
	Use12hClock            *bool   `yaml:"use_12h_clock,omitempty" json:"use_12h_clock,omitempty"`
}

// BluetoothSection holds config.bluetooth. FixedPin is kept as text so a
// blank entry can be told apart from a PIN; the differ converts it.
type BluetoothSection struct {
	Enabled  *bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	FixedPin *string `yaml:"fixed_pin,omitempty" json:"fixed_pin,omitempty"`
	Mode     *string `yaml:"mode,omitempty" json:"mode,omitempty"`
}

// NetworkSection holds config.network
type NetworkSection struct {
	NTPServer     *string `yaml:"ntp_server,omitempty" json:"ntp_server,omitempty"`
	WifiEnabled   *bool   `yaml:"wifi_enabled,omitempty" json:"wifi_enabled,omitempty"`
	WifiSSID      *string `yaml:"wifi_ssid,omitempty" json:"wifi_ssid,omitempty"`
	WifiPSK       *string `yaml:"wifi_psk,omitempty" json:"wifi_psk,omitempty"`
	EthEnabled    *bool   `yaml:"eth_enabled,omitempty" json:"eth_enabled,omitempty"`
	RsyslogServer *string `yaml:"rsyslog_server,omitempty" json:"rsyslog_server,omitempty"`
}

// Channel is one entry of the device's channel table. Index 0 is the
// primary channel and can never be deleted.
type Channel struct {
	Index             int     `yaml:"index" json:"index"`
	Name              *string `yaml:"name,omitempty" json:"name,omitempty"`
	UplinkEnabled     *bool   `yaml:"uplink_enabled,omitempty" json:"uplink_enabled,omitempty"`
	DownlinkEnabled   *bool   `yaml:"downlink_enabled,omitempty" json:"downlink_enabled,omitempty"`
	PositionPrecision *int    `yaml:"position_precision,omitempty" json:"position_precision,omitempty"`
	PSK               *string `yaml:"psk,omitempty" json:"psk,omitempty"`
	PSKPresent        bool    `yaml:"psk_present,omitempty" json:"psk_present,omitempty"`
	Role              *string `yaml:"role,omitempty" json:"role,omitempty"`
}

// GPSEnabled reports whether the channel shares position at all
func (c Channel) GPSEnabled() bool {
	return c.PositionPrecision != nil && *c.PositionPrecision > 0
}

// Ptr returns a pointer to v. Handy for building snapshots by hand.
func Ptr[T any](v T) *T {
	return &v
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{}
	if err := copier.CopyWithOption(out, s, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched kinds, which cannot happen for same-type copies.
		panic(fmt.Sprintf("deviceconfig: clone snapshot: %v", err))
	}
	return out
}

// ChannelByIndex returns the channel with the given index.
func (s *Snapshot) ChannelByIndex(index int) (Channel, bool) {
	if s == nil {
		return Channel{}, false
	}
	for _, ch := range s.Channels {
		if ch.Index == index {
			return ch, true
		}
	}
	return Channel{}, false
}

// ParseSnapshot decodes a YAML (or JSON) snapshot document
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, NewParseError("failed to parse snapshot", err)
	}
	return &snap, nil
}

// LoadSnapshot reads a snapshot file from disk
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return ParseSnapshot(data)
}

// Marshal encodes the snapshot as YAML
func (s *Snapshot) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// put stores *p under key when p is set
func put[T any](m map[string]any, key string, p *T) {
	if p != nil {
		m[key] = *p
	}
}

// Values returns the set fields of the section keyed by field name
func (d *DeviceSection) Values() map[string]any {
	m := map[string]any{}
	if d == nil {
		return m
	}
	put(m, "role", d.Role)
	put(m, "rebroadcast_mode", d.RebroadcastMode)
	put(m, "node_info_broadcast_secs", d.NodeInfoBroadcastSecs)
	put(m, "serial_enabled", d.SerialEnabled)
	put(m, "led_heartbeat_disabled", d.LedHeartbeatDisabled)
	put(m, "tzdef", d.Tzdef)
	return m
}

// Values returns the set fields of the section keyed by field name
func (p *PowerSection) Values() map[string]any {
	m := map[string]any{}
	if p == nil {
		return m
	}
	put(m, "ls_secs", p.LsSecs)
	put(m, "wait_bluetooth_secs", p.WaitBluetoothSecs)
	put(m, "min_wake_secs", p.MinWakeSecs)
	put(m, "sds_secs", p.SdsSecs)
	put(m, "is_power_saving", p.IsPowerSaving)
	return m
}

// Values returns the set fields of the section keyed by field name
func (l *LoRaSection) Values() map[string]any {
	m := map[string]any{}
	if l == nil {
		return m
	}
	put(m, "region", l.Region)
	put(m, "modem_preset", l.ModemPreset)
	put(m, "channel_num", l.ChannelNum)
	put(m, "hop_limit", l.HopLimit)
	put(m, "tx_enabled", l.TxEnabled)
	put(m, "tx_power", l.TxPower)
	put(m, "use_preset", l.UsePreset)
	return m
}

// Values returns the set fields of the section keyed by field name
func (p *PositionSection) Values() map[string]any {
	m := map[string]any{}
	if p == nil {
		return m
	}
	put(m, "gps_update_interval", p.GPSUpdateInterval)
	put(m, "position_broadcast_smart_enabled", p.PositionBroadcastSmartEnabled)
	put(m, "broadcast_smart_minimum_distance", p.BroadcastSmartMinimumDistance)
	put(m, "broadcast_smart_minimum_interval_secs", p.BroadcastSmartMinimumIntervalSecs)
	put(m, "position_broadcast_secs", p.PositionBroadcastSecs)
	put(m, "gps_mode", p.GPSMode)
	put(m, "fixed_position", p.FixedPosition)
	return m
}

// Values returns the set fields of the section keyed by field name
func (d *DisplaySection) Values() map[string]any {
	m := map[string]any{}
	if d == nil {
		return m
	}
	put(m, "screen_on_secs", d.ScreenOnSecs)
	put(m, "gps_format", d.GPSFormat)
	put(m, "auto_screen_carousel_secs", d.AutoScreenCarouselSecs)
	put(m, "units", d.Units)
	put(m, "oled", d.OLED)
	put(m, "displaymode", d.DisplayMode)
	put(m, "heading_bold", d.HeadingBold)
	put(m, "flip_screen", d.FlipScreen)
	put(m, "compass_north_top", d.CompassNorthTop)
	put(m, "wake_on_tap_or_motion", d.WakeOnTapOrMotion)
	put(m, "compass_orientation", d.CompassOrientation)
	put(m, "use_12h_clock", d.Use12hClock)
	return m
}

// Values returns the set fields of the section keyed by field name
func (b *BluetoothSection) Values() map[string]any {
	m := map[string]any{}
	if b == nil {
		return m
	}
	put(m, "enabled", b.Enabled)
	put(m, "fixed_pin", b.FixedPin)
	put(m, "mode", b.Mode)
	return m
}

// Values returns the set fields of the section keyed by field name
func (n *NetworkSection) Values() map[string]any {
	m := map[string]any{}
	if n == nil {
		return m
	}
	put(m, "ntp_server", n.NTPServer)
	put(m, "wifi_enabled", n.WifiEnabled)
	put(m, "wifi_ssid", n.WifiSSID)
	put(m, "wifi_psk", n.WifiPSK)
	put(m, "eth_enabled", n.EthEnabled)
	put(m, "rsyslog_server", n.RsyslogServer)
	return m
}
