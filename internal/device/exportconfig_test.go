package device

import "testing"

func sampleExport(channelURL string) string {
	return `Connected to radio
# start of Meshtastic configure yaml
channel_url: ` + channelURL + `
config:
  bluetooth:
    enabled: true
    fixedPin: 123456
    mode: FIXED_PIN
  device:
    nodeInfoBroadcastSecs: 10800
    role: ROUTER
    serialEnabled: true
  display:
    screenOnSecs: 600
    use12hClock: true
  lora:
    hopLimit: 3
    modemPreset: LONG_FAST
    region: EU_868
    txEnabled: true
    txPower: 27
    usePreset: true
    bandwidth: 250
  network:
    ntpServer: meshtastic.pool.ntp.org
    wifiPsk: hunter2
  position:
    gpsUpdateInterval: 120
    positionBroadcastSmartEnabled: true
  power:
    lsSecs: 300
  security:
    privateKey: base64:secret
location:
  lat: 47.1
module_config:
  mqtt:
    address: mqtt.meshtastic.org
    enabled: true
  rangeTest:
    enabled: false
  storeForward:
    records: 50
owner: Hilltop relay
owner_short: HTR
`
}

func TestParseExportConfig(t *testing.T) {
	url := testChannelURL(
		testSettings([]byte{1}, "", false, 0),
		testSettings([]byte{1}, "ops", true, 13),
	)

	snap, err := ParseExportConfig([]byte(sampleExport(url)))
	if err != nil {
		t.Fatalf("ParseExportConfig() error = %v", err)
	}

	if *snap.User.LongName != "Hilltop relay" || *snap.User.ShortName != "HTR" {
		t.Errorf("owner = %+v", snap.User)
	}
	if *snap.Device.Role != "ROUTER" || *snap.Device.NodeInfoBroadcastSecs != 10800 {
		t.Errorf("device = %+v", snap.Device)
	}
	if *snap.LoRa.Region != "EU_868" || *snap.LoRa.ModemPreset != "LONG_FAST" || *snap.LoRa.HopLimit != 3 {
		t.Errorf("lora = %+v", snap.LoRa)
	}
	if snap.LoRa.ChannelNum != nil {
		t.Error("absent channel_num should stay nil")
	}
	if *snap.Bluetooth.FixedPin != "123456" {
		t.Errorf("fixed_pin = %q", *snap.Bluetooth.FixedPin)
	}
	if *snap.Network.WifiPSK != "hunter2" {
		t.Errorf("wifi_psk = %v", snap.Network.WifiPSK)
	}
	if !*snap.Display.Use12hClock {
		t.Error("use_12h_clock not mapped")
	}
	if *snap.Position.GPSUpdateInterval != 120 || !*snap.Position.PositionBroadcastSmartEnabled {
		t.Errorf("position = %+v", snap.Position)
	}
	if *snap.Power.LsSecs != 300 {
		t.Errorf("ls_secs = %d", *snap.Power.LsSecs)
	}

	if snap.Modules == nil || !*snap.Modules.MQTT.Enabled || *snap.Modules.MQTT.Address != "mqtt.meshtastic.org" {
		t.Fatalf("mqtt module = %+v", snap.Modules)
	}
	if snap.Modules.RangeTest == nil || *snap.Modules.RangeTest.Enabled {
		t.Error("range_test.enabled=false should be present")
	}
	if *snap.Modules.StoreForward.Records != 50 {
		t.Error("store_forward not mapped")
	}

	if len(snap.Channels) != 2 || *snap.Channels[1].Name != "ops" {
		t.Errorf("channels = %+v", snap.Channels)
	}
}

func TestParseExportConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		out  string
	}{
		{"empty", ""},
		{"not yaml", "config: [unclosed"},
		{"bad channel url", "channel_url: https://meshtastic.org/e/#!!!\nowner: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseExportConfig([]byte(tt.out)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hopLimit", "hop_limit"},
		{"hop_limit", "hop_limit"},
		{"lsSecs", "ls_secs"},
		{"positionBroadcastSmartEnabled", "position_broadcast_smart_enabled"},
		{"codec2Enabled", "codec2_enabled"},
		{"i2sWs", "i2s_ws"},
		{"use12hClock", "use_12h_clock"},
		{"region", "region"},
	}
	for _, tt := range tests {
		if got := SnakeCase(tt.in); got != tt.want {
			t.Errorf("SnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseMetadata(t *testing.T) {
	out := `Connected to radio
firmware_version: "2.3.2.63df972"
device_state_version: 23
canShutdown: true
hasWifi: true
hasBluetooth: false
position_flags: 811
hw_model: HELTEC_V3
`
	md := ParseMetadata(out)
	if md == nil {
		t.Fatal("ParseMetadata() = nil")
	}
	if *md.FirmwareVersion != "2.3.2.63df972" {
		t.Errorf("firmware = %q", *md.FirmwareVersion)
	}
	if *md.HWModel != "HELTEC_V3" {
		t.Errorf("hw_model = %q", *md.HWModel)
	}
	if *md.DeviceStateVersion != 23 {
		t.Errorf("device_state_version = %d", *md.DeviceStateVersion)
	}
	if !*md.HasWifi || *md.HasBluetooth {
		t.Errorf("has_wifi/has_bluetooth = %v/%v", *md.HasWifi, *md.HasBluetooth)
	}
	if md.HasEthernet != nil {
		t.Error("unreported has_ethernet should be nil")
	}

	if ParseMetadata("Connected to radio\nError: timed out\n") != nil {
		t.Error("output without metadata should give nil")
	}
}
