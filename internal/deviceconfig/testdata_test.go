package deviceconfig

// sampleSnapshot returns a fully populated snapshot as read from a device
func sampleSnapshot() *Snapshot {
	return &Snapshot{
		User: &UserInfo{
			ID:        Ptr("!db295bf8"),
			LongName:  Ptr("Hilltop relay"),
			ShortName: Ptr("HTR"),
			HWModel:   Ptr("HELTEC_V3"),
		},
		Metadata: &Metadata{
			Port:            Ptr("/dev/ttyUSB0"),
			FirmwareVersion: Ptr("2.5.15.79da236"),
		},
		Device: &DeviceSection{Role: Ptr("CLIENT")},
		LoRa: &LoRaSection{
			Region:      Ptr("US"),
			ModemPreset: Ptr("LONG_FAST"),
			ChannelNum:  Ptr(20),
			HopLimit:    Ptr(3),
			TxEnabled:   Ptr(true),
			TxPower:     Ptr(30),
		},
		Power: &PowerSection{LsSecs: Ptr(300), MinWakeSecs: Ptr(10)},
		Position: &PositionSection{
			PositionBroadcastSecs:         Ptr(900),
			PositionBroadcastSmartEnabled: Ptr(true),
		},
		Display:   &DisplaySection{ScreenOnSecs: Ptr(60), FlipScreen: Ptr(false)},
		Bluetooth: &BluetoothSection{Enabled: Ptr(true), FixedPin: Ptr("123456"), Mode: Ptr("FIXED_PIN")},
		Network:   &NetworkSection{WifiEnabled: Ptr(false), NTPServer: Ptr("meshtastic.pool.ntp.org")},
		Channels: []Channel{
			{Index: 0, Name: Ptr(""), PSK: Ptr("AQ=="), PSKPresent: true, UplinkEnabled: Ptr(false), DownlinkEnabled: Ptr(false), PositionPrecision: Ptr(13)},
			{Index: 1, Name: Ptr("ops"), PSK: Ptr("RySCKAybPsBEVVZFj/x9NIhzub1L683th6Nh6bnzeMU="), PSKPresent: true, PositionPrecision: Ptr(0)},
		},
		Modules: &ModulesConfig{
			MQTT:      &MQTTModule{Enabled: Ptr(false), Address: Ptr("mqtt.meshtastic.org")},
			Telemetry: &TelemetryModule{DeviceUpdateInterval: Ptr(1800)},
		},
	}
}
