// Package config manages meshcfg's persistent state.
//
// The registry is a YAML file holding preferences (preferred port, tool
// path, discovery timeout) and what is known about radios meshcfg has
// connected to. Presets and the secret store live in subdirectories of
// the same configuration directory.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/meshcfg/config.yaml or $HOME/.config/meshcfg/config.yaml
//   - macOS: $HOME/.config/meshcfg/config.yaml
//   - Windows: %APPDATA%\meshcfg\config.yaml
//
// MESHCFG_CONFIG_DIR overrides the directory.
//
// # Security
//
// Channel keys are never stored in the registry.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    return err
//	}
//	registry.RecordConnection(id.ID, id.Port, id.HWModel, id.FirmwareVersion)
//	if err := registry.Save(); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
