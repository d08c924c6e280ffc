package config

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	t.Setenv(EnvConfigDir, "")

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if !strings.Contains(configDir, "meshcfg") {
		t.Errorf("GetConfigDir() = %v, should contain 'meshcfg'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Roaming") {
			t.Errorf("Windows config dir should be under AppData, got: %v", configDir)
		}
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigDir_Overrides(t *testing.T) {
	t.Setenv(EnvConfigDir, "/tmp/meshcfg-test")
	if dir, _ := GetConfigDir(); dir != "/tmp/meshcfg-test" {
		t.Errorf("GetConfigDir() = %v, want env override", dir)
	}

	if runtime.GOOS == "linux" {
		t.Setenv(EnvConfigDir, "")
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		if dir, _ := GetConfigDir(); dir != filepath.Join("/xdg", "meshcfg") {
			t.Errorf("GetConfigDir() = %v, want XDG path", dir)
		}
	}
}

func TestConfigPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	tests := []struct {
		name string
		get  func() (string, error)
		want string
	}{
		{"config", GetConfigPath, filepath.Join(dir, "config.yaml")},
		{"presets", PresetsDir, filepath.Join(dir, "presets")},
		{"secrets", SecretsDir, filepath.Join(dir, "secrets")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.get()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Devices == nil {
		t.Error("NewRegistry().Devices should not be nil")
	}
	if reg.DiscoveryTimeout() != 3*time.Second {
		t.Errorf("DiscoveryTimeout() = %v, want 3s", reg.DiscoveryTimeout())
	}
	if reg.PreferredPort() != "" {
		t.Error("new registry should have no preferred port")
	}
}

func TestRegistryEnsureDevice(t *testing.T) {
	reg := NewRegistry()

	device1 := reg.EnsureDevice("/dev/ttyUSB0")
	if device1 == nil {
		t.Fatal("EnsureDevice() returned nil")
	}
	if device2 := reg.EnsureDevice("/dev/ttyUSB0"); device1 != device2 {
		t.Error("EnsureDevice() should return same instance for same ID")
	}
	if device3 := reg.EnsureDevice("/dev/ttyACM0"); device1 == device3 {
		t.Error("EnsureDevice() should create new instance for different ID")
	}
}

func TestRegistryRecordConnection(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.RecordConnection("/dev/ttyUSB0", "/dev/ttyUSB0", "TBEAM", "2.5.6")
	after := time.Now()

	device := reg.GetDevice("/dev/ttyUSB0")
	if device == nil {
		t.Fatal("Device should exist after RecordConnection()")
	}
	if device.LastPort != "/dev/ttyUSB0" || device.HWModel != "TBEAM" || device.Firmware != "2.5.6" {
		t.Errorf("device = %+v", device)
	}
	if device.LastSeen.Before(before) || device.LastSeen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", device.LastSeen, before, after)
	}
	if reg.PreferredPort() != "/dev/ttyUSB0" {
		t.Errorf("PreferredPort() = %q", reg.PreferredPort())
	}

	// blank metadata keeps what is known
	reg.RecordConnection("/dev/ttyUSB0", "/dev/ttyUSB1", "", "")
	if device.HWModel != "TBEAM" || device.LastPort != "/dev/ttyUSB1" {
		t.Errorf("device after second connect = %+v", device)
	}
}

func TestRegistryDeviceIDs(t *testing.T) {
	reg := NewRegistry()
	now := time.Now()
	reg.EnsureDevice("old").LastSeen = now.Add(-time.Hour)
	reg.EnsureDevice("new").LastSeen = now
	reg.EnsureDevice("b").LastSeen = now.Add(-2 * time.Hour)
	reg.EnsureDevice("a").LastSeen = now.Add(-2 * time.Hour)

	want := []string{"new", "old", "a", "b"}
	if got := reg.DeviceIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("DeviceIDs() = %v, want %v", got, want)
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	reg.SetDeviceNickname("/dev/ttyUSB0", "Hilltop")
	reg.RecordConnection("/dev/ttyUSB0", "/dev/ttyUSB0", "HELTEC_V3", "")
	reg.Preferences.ToolPath = "/opt/meshtastic"

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	if reg.Path() != path {
		t.Errorf("Path() = %q", reg.Path())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# meshcfg configuration") {
		t.Error("config file lacks header")
	}

	loaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	device := loaded.GetDevice("/dev/ttyUSB0")
	if device == nil || device.Nickname != "Hilltop" || device.HWModel != "HELTEC_V3" {
		t.Errorf("loaded device = %+v", device)
	}
	if loaded.PreferredPort() != "/dev/ttyUSB0" || loaded.ToolPath() != "/opt/meshtastic" {
		t.Errorf("loaded preferences = %+v", loaded.Preferences)
	}

	device.Nickname = "Valley"
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	again, _ := LoadRegistryFrom(path)
	if again.GetDevice("/dev/ttyUSB0").Nickname != "Valley" {
		t.Error("Save() did not write back to the loaded path")
	}
}

func TestLoadRegistryFrom_Errors(t *testing.T) {
	dir := t.TempDir()

	missing, err := LoadRegistryFrom(filepath.Join(dir, "none.yaml"))
	if err != nil || missing == nil || missing.Version != 1 {
		t.Errorf("missing file should give a default registry, got %v, %v", missing, err)
	}

	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "version: [1"},
		{"wrong version", "version: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadRegistryFrom(path); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func BenchmarkEnsureDevice(b *testing.B) {
	reg := NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.EnsureDevice("/dev/ttyUSB0")
	}
}
