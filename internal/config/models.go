package config

import (
	"sort"
	"time"
)

// DefaultDiscoveryTimeout is the mDNS browse time in seconds.
const DefaultDiscoveryTimeout = 3

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by device ID
	Preferences *Preferences       `yaml:"preferences,omitempty"`

	path string
}

// Device is what meshcfg remembers about a radio it has connected to.
type Device struct {
	Nickname string    `yaml:"nickname,omitempty"`
	LastPort string    `yaml:"last_port,omitempty"`
	HWModel  string    `yaml:"hw_model,omitempty"`
	Firmware string    `yaml:"firmware,omitempty"`
	LastSeen time.Time `yaml:"last_seen,omitempty"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	PreferredPort    string `yaml:"preferred_port,omitempty"`    // Port of the last successful connection
	ToolPath         string `yaml:"tool_path,omitempty"`         // meshtastic executable override
	DiscoveryTimeout int    `yaml:"discovery_timeout,omitempty"` // mDNS browse time in seconds
}

func defaultPreferences() *Preferences {
	return &Preferences{DiscoveryTimeout: DefaultDiscoveryTimeout}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     registryVersion,
		Devices:     make(map[string]*Device),
		Preferences: defaultPreferences(),
	}
}

// Path returns the file the registry is saved to, if known.
func (r *Registry) Path() string {
	return r.path
}

// GetDevice retrieves device metadata by ID.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(id string) *Device {
	return r.Devices[id]
}

// EnsureDevice returns the entry for id, creating it if needed.
func (r *Registry) EnsureDevice(id string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}
	if device, exists := r.Devices[id]; exists {
		return device
	}
	device := &Device{}
	r.Devices[id] = device
	return device
}

// RecordConnection notes a successful connection: the device entry is
// refreshed and port becomes the preferred port.
func (r *Registry) RecordConnection(id, port, hwModel, firmware string) {
	device := r.EnsureDevice(id)
	device.LastPort = port
	device.LastSeen = time.Now()
	if hwModel != "" {
		device.HWModel = hwModel
	}
	if firmware != "" {
		device.Firmware = firmware
	}
	r.prefs().PreferredPort = port
}

// SetDeviceNickname sets a user-friendly nickname for a device.
func (r *Registry) SetDeviceNickname(id, nickname string) {
	r.EnsureDevice(id).Nickname = nickname
}

// PreferredPort returns the port of the last successful connection.
func (r *Registry) PreferredPort() string {
	return r.prefs().PreferredPort
}

// ToolPath returns the configured meshtastic executable, if any.
func (r *Registry) ToolPath() string {
	return r.prefs().ToolPath
}

// DiscoveryTimeout returns the mDNS browse time.
func (r *Registry) DiscoveryTimeout() time.Duration {
	secs := r.prefs().DiscoveryTimeout
	if secs <= 0 {
		secs = DefaultDiscoveryTimeout
	}
	return time.Duration(secs) * time.Second
}

// DeviceIDs returns known device IDs, most recently seen first.
func (r *Registry) DeviceIDs() []string {
	ids := make([]string, 0, len(r.Devices))
	for id := range r.Devices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := r.Devices[ids[i]], r.Devices[ids[j]]
		if !a.LastSeen.Equal(b.LastSeen) {
			return a.LastSeen.After(b.LastSeen)
		}
		return ids[i] < ids[j]
	})
	return ids
}

func (r *Registry) prefs() *Preferences {
	if r.Preferences == nil {
		r.Preferences = defaultPreferences()
	}
	return r.Preferences
}
