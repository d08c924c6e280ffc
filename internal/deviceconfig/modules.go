package deviceconfig

// ModulesConfig holds the optional module sub-configurations
type ModulesConfig struct {
	MQTT            *MQTTModule            `yaml:"mqtt,omitempty" json:"mqtt,omitempty"`
	Serial          *SerialModule          `yaml:"serial,omitempty" json:"serial,omitempty"`
	StoreForward    *StoreForwardModule    `yaml:"store_forward,omitempty" json:"store_forward,omitempty"`
	RangeTest       *RangeTestModule       `yaml:"range_test,omitempty" json:"range_test,omitempty"`
	Telemetry       *TelemetryModule       `yaml:"telemetry,omitempty" json:"telemetry,omitempty"`
	CannedMessage   *CannedMessageModule   `yaml:"canned_message,omitempty" json:"canned_message,omitempty"`
	Audio           *AudioModule           `yaml:"audio,omitempty" json:"audio,omitempty"`
	RemoteHardware  *RemoteHardwareModule  `yaml:"remote_hardware,omitempty" json:"remote_hardware,omitempty"`
	NeighborInfo    *NeighborInfoModule    `yaml:"neighbor_info,omitempty" json:"neighbor_info,omitempty"`
	AmbientLighting *AmbientLightingModule `yaml:"ambient_lighting,omitempty" json:"ambient_lighting,omitempty"`
	DetectionSensor *DetectionSensorModule `yaml:"detection_sensor,omitempty" json:"detection_sensor,omitempty"`
	Paxcounter      *PaxcounterModule      `yaml:"paxcounter,omitempty" json:"paxcounter,omitempty"`
}

type MQTTModule struct {
	Enabled              *bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Address              *string `yaml:"address,omitempty" json:"address,omitempty"`
	Username             *string `yaml:"username,omitempty" json:"username,omitempty"`
	Password             *string `yaml:"password,omitempty" json:"password,omitempty"`
	Root                 *string `yaml:"root,omitempty" json:"root,omitempty"`
	JSONEnabled          *bool   `yaml:"json_enabled,omitempty" json:"json_enabled,omitempty"`
	TLSEnabled           *bool   `yaml:"tls_enabled,omitempty" json:"tls_enabled,omitempty"`
	ProxyToClientEnabled *bool   `yaml:"proxy_to_client_enabled,omitempty" json:"proxy_to_client_enabled,omitempty"`
	MapReportingEnabled  *bool   `yaml:"map_reporting_enabled,omitempty" json:"map_reporting_enabled,omitempty"`
}

type SerialModule struct {
	Enabled                   *bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Echo                      *bool   `yaml:"echo,omitempty" json:"echo,omitempty"`
	RXD                       *int    `yaml:"rxd,omitempty" json:"rxd,omitempty"`
	TXD                       *int    `yaml:"txd,omitempty" json:"txd,omitempty"`
	Baud                      *string `yaml:"baud,omitempty" json:"baud,omitempty"`
	Timeout                   *int    `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Mode                      *string `yaml:"mode,omitempty" json:"mode,omitempty"`
	OverrideConsoleSerialPort *bool   `yaml:"override_console_serial_port,omitempty" json:"override_console_serial_port,omitempty"`
}

type StoreForwardModule struct {
	Enabled             *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Heartbeat           *bool `yaml:"heartbeat,omitempty" json:"heartbeat,omitempty"`
	Records             *int  `yaml:"records,omitempty" json:"records,omitempty"`
	HistoryReturnMax    *int  `yaml:"history_return_max,omitempty" json:"history_return_max,omitempty"`
	HistoryReturnWindow *int  `yaml:"history_return_window,omitempty" json:"history_return_window,omitempty"`
	IsServer            *bool `yaml:"is_server,omitempty" json:"is_server,omitempty"`
}

type RangeTestModule struct {
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Sender  *int  `yaml:"sender,omitempty" json:"sender,omitempty"`
	Save    *bool `yaml:"save,omitempty" json:"save,omitempty"`
}

type TelemetryModule struct {
	DeviceUpdateInterval          *int  `yaml:"device_update_interval,omitempty" json:"device_update_interval,omitempty"`
	EnvironmentUpdateInterval     *int  `yaml:"environment_update_interval,omitempty" json:"environment_update_interval,omitempty"`
	EnvironmentMeasurementEnabled *bool `yaml:"environment_measurement_enabled,omitempty" json:"environment_measurement_enabled,omitempty"`
	EnvironmentScreenEnabled      *bool `yaml:"environment_screen_enabled,omitempty" json:"environment_screen_enabled,omitempty"`
	EnvironmentDisplayFahrenheit  *bool `yaml:"environment_display_fahrenheit,omitempty" json:"environment_display_fahrenheit,omitempty"`
	AirQualityEnabled             *bool `yaml:"air_quality_enabled,omitempty" json:"air_quality_enabled,omitempty"`
	AirQualityInterval            *int  `yaml:"air_quality_interval,omitempty" json:"air_quality_interval,omitempty"`
	PowerMeasurementEnabled       *bool `yaml:"power_measurement_enabled,omitempty" json:"power_measurement_enabled,omitempty"`
	PowerUpdateInterval           *int  `yaml:"power_update_interval,omitempty" json:"power_update_interval,omitempty"`
	PowerScreenEnabled            *bool `yaml:"power_screen_enabled,omitempty" json:"power_screen_enabled,omitempty"`
	HealthMeasurementEnabled      *bool `yaml:"health_measurement_enabled,omitempty" json:"health_measurement_enabled,omitempty"`
	HealthUpdateInterval          *int  `yaml:"health_update_interval,omitempty" json:"health_update_interval,omitempty"`
	HealthScreenEnabled           *bool `yaml:"health_screen_enabled,omitempty" json:"health_screen_enabled,omitempty"`
}

type CannedMessageModule struct {
	Enabled          *bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	AllowInputSource *string `yaml:"allow_input_source,omitempty" json:"allow_input_source,omitempty"`
	SendBell         *bool   `yaml:"send_bell,omitempty" json:"send_bell,omitempty"`
}

type AudioModule struct {
	Codec2Enabled *bool   `yaml:"codec2_enabled,omitempty" json:"codec2_enabled,omitempty"`
	PTTPin        *int    `yaml:"ptt_pin,omitempty" json:"ptt_pin,omitempty"`
	Bitrate       *string `yaml:"bitrate,omitempty" json:"bitrate,omitempty"`
	I2SWS         *int    `yaml:"i2s_ws,omitempty" json:"i2s_ws,omitempty"`
	I2SSD         *int    `yaml:"i2s_sd,omitempty" json:"i2s_sd,omitempty"`
	I2SDIN        *int    `yaml:"i2s_din,omitempty" json:"i2s_din,omitempty"`
	I2SSCK        *int    `yaml:"i2s_sck,omitempty" json:"i2s_sck,omitempty"`
}

type RemoteHardwareModule struct {
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
}

type NeighborInfoModule struct {
	Enabled          *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	UpdateInterval   *int  `yaml:"update_interval,omitempty" json:"update_interval,omitempty"`
	TransmitOverLoRa *bool `yaml:"transmit_over_lora,omitempty" json:"transmit_over_lora,omitempty"`
}

type AmbientLightingModule struct {
	LEDState *bool `yaml:"led_state,omitempty" json:"led_state,omitempty"`
	Current  *int  `yaml:"current,omitempty" json:"current,omitempty"`
	Red      *int  `yaml:"red,omitempty" json:"red,omitempty"`
	Green    *int  `yaml:"green,omitempty" json:"green,omitempty"`
	Blue     *int  `yaml:"blue,omitempty" json:"blue,omitempty"`
}

type DetectionSensorModule struct {
	Enabled              *bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	MinimumBroadcastSecs *int    `yaml:"minimum_broadcast_secs,omitempty" json:"minimum_broadcast_secs,omitempty"`
	DetectionTriggerType *string `yaml:"detection_trigger_type,omitempty" json:"detection_trigger_type,omitempty"`
	StateBroadcastSecs   *int    `yaml:"state_broadcast_secs,omitempty" json:"state_broadcast_secs,omitempty"`
	SendBell             *bool   `yaml:"send_bell,omitempty" json:"send_bell,omitempty"`
	Name                 *string `yaml:"name,omitempty" json:"name,omitempty"`
	MonitorPin           *int    `yaml:"monitor_pin,omitempty" json:"monitor_pin,omitempty"`
	UsePullup            *bool   `yaml:"use_pullup,omitempty" json:"use_pullup,omitempty"`
}

type PaxcounterModule struct {
	Enabled                  *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	PaxcounterUpdateInterval *int  `yaml:"paxcounter_update_interval,omitempty" json:"paxcounter_update_interval,omitempty"`
}

// ModuleValues returns the set fields of the named module. Unknown or
// unreported modules yield an empty map.
func (mc *ModulesConfig) ModuleValues(name string) map[string]any {
	m := map[string]any{}
	if mc == nil {
		return m
	}

	switch name {
	case "mqtt":
		if v := mc.MQTT; v != nil {
			put(m, "enabled", v.Enabled)
			put(m, "address", v.Address)
			put(m, "username", v.Username)
			put(m, "password", v.Password)
			put(m, "root", v.Root)
			put(m, "json_enabled", v.JSONEnabled)
			put(m, "tls_enabled", v.TLSEnabled)
			put(m, "proxy_to_client_enabled", v.ProxyToClientEnabled)
			put(m, "map_reporting_enabled", v.MapReportingEnabled)
		}
	case "serial":
		if v := mc.Serial; v != nil {
			put(m, "enabled", v.Enabled)
			put(m, "echo", v.Echo)
			put(m, "rxd", v.RXD)
			put(m, "txd", v.TXD)
			put(m, "baud", v.Baud)
			put(m, "timeout", v.Timeout)
			put(m, "mode", v.Mode)
			put(m, "override_console_serial_port", v.OverrideConsoleSerialPort)
		}
	case "store_forward":
		if v := mc.StoreForward; v != nil {
			put(m, "enabled", v.Enabled)
			put(m, "heartbeat", v.Heartbeat)
			put(m, "records", v.Records)
			put(m, "history_return_max", v.HistoryReturnMax)
			put(m, "history_return_window", v.HistoryReturnWindow)
			put(m, "is_server", v.IsServer)
		}
	case "range_test":
		if v := mc.RangeTest; v != nil {
			put(m, "enabled", v.Enabled)
			put(m, "sender", v.Sender)
			put(m, "save", v.Save)
		}
	case "telemetry":
		if v := mc.Telemetry; v != nil {
			put(m, "device_update_interval", v.DeviceUpdateInterval)
			put(m, "environment_update_interval", v.EnvironmentUpdateInterval)
			put(m, "environment_measurement_enabled", v.EnvironmentMeasurementEnabled)
			put(m, "environment_screen_enabled", v.EnvironmentScreenEnabled)
			put(m, "environment_display_fahrenheit", v.EnvironmentDisplayFahrenheit)
			put(m, "air_quality_enabled", v.AirQualityEnabled)
			put(m, "air_quality_interval", v.AirQualityInterval)
			put(m, "power_measurement_enabled", v.PowerMeasurementEnabled)
			put(m, "power_update_interval", v.PowerUpdateInterval)
			put(m, "power_screen_enabled", v.PowerScreenEnabled)
			put(m, "health_measurement_enabled", v.HealthMeasurementEnabled)
			put(m, "health_update_interval", v.HealthUpdateInterval)
			put(m, "health_screen_enabled", v.HealthScreenEnabled)
		}
	case "canned_message":
		if v := mc.CannedMessage; v != nil {
			put(m, "enabled", v.Enabled)
			put(m, "allow_input_source", v.AllowInputSource)
			put(m, "send_bell", v.SendBell)
		}
	case "audio":
		if v := mc.Audio; v != nil {
			put(m, "codec2_enabled", v.Codec2Enabled)
			put(m, "ptt_pin", v.PTTPin)
			put(m, "bitrate", v.Bitrate)
			put(m, "i2s_ws", v.I2SWS)
			put(m, "i2s_sd", v.I2SSD)
			put(m, "i2s_din", v.I2SDIN)
			put(m, "i2s_sck", v.I2SSCK)
		}
	case "remote_hardware":
		if v := mc.RemoteHardware; v != nil {
			put(m, "enabled", v.Enabled)
		}
	case "neighbor_info":
		if v := mc.NeighborInfo; v != nil {
			put(m, "enabled", v.Enabled)
			put(m, "update_interval", v.UpdateInterval)
			put(m, "transmit_over_lora", v.TransmitOverLoRa)
		}
	case "ambient_lighting":
		if v := mc.AmbientLighting; v != nil {
			put(m, "led_state", v.LEDState)
			put(m, "current", v.Current)
			put(m, "red", v.Red)
			put(m, "green", v.Green)
			put(m, "blue", v.Blue)
		}
	case "detection_sensor":
		if v := mc.DetectionSensor; v != nil {
			put(m, "enabled", v.Enabled)
			put(m, "minimum_broadcast_secs", v.MinimumBroadcastSecs)
			put(m, "detection_trigger_type", v.DetectionTriggerType)
			put(m, "state_broadcast_secs", v.StateBroadcastSecs)
			put(m, "send_bell", v.SendBell)
			put(m, "name", v.Name)
			put(m, "monitor_pin", v.MonitorPin)
			put(m, "use_pullup", v.UsePullup)
		}
	case "paxcounter":
		if v := mc.Paxcounter; v != nil {
			put(m, "enabled", v.Enabled)
			put(m, "paxcounter_update_interval", v.PaxcounterUpdateInterval)
		}
	}

	return m
}
