// Package config manages the controller's YAML configuration file.
//
// The file holds the serial line settings, codec options, display labels
// for the matrix ports, and the network bridge settings. Command-line flags
// override anything read here.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/blackbird/config.yaml or $HOME/.config/blackbird/config.yaml
//   - macOS: $HOME/.config/blackbird/config.yaml
//   - Windows: %LOCALAPPDATA%\blackbird\config.yaml
//
// BLACKBIRD_CONFIG overrides the location.
//
// # Usage Example
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = cfg.SetOutputLabel(2, "Bedroom")
//	if err := cfg.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// Load uses sync.Once; writes are serialized by a package mutex and replace
// the file atomically.
package config
