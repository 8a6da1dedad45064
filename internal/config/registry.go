package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "blackbird"
	configFile = "config.yaml"

	// ConfigPathEnvVar overrides the config file location
	ConfigPathEnvVar = "BLACKBIRD_CONFIG"
)

var (
	// Global config instance (loaded lazily)
	globalFile     *File
	globalFileOnce sync.Once
	globalFileErr  error

	// Mutex for thread-safe file operations
	fileMutex sync.Mutex
)

// GetConfigDir returns the OS-appropriate configuration directory for the application.
//   - Linux: $XDG_CONFIG_HOME/blackbird or $HOME/.config/blackbird
//   - macOS: $HOME/.config/blackbird
//   - Windows: %LOCALAPPDATA%\blackbird
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the configuration file.
// BLACKBIRD_CONFIG takes precedence when set.
func GetConfigPath() (string, error) {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load loads the configuration file once per process.
// If the file doesn't exist, returns defaults.
func Load() (*File, error) {
	globalFileOnce.Do(func() {
		path, err := GetConfigPath()
		if err != nil {
			globalFileErr = fmt.Errorf("failed to get config path: %w", err)
			return
		}
		globalFile, globalFileErr = LoadFrom(path)
	})
	return globalFile, globalFileErr
}

// LoadFrom reads and validates the configuration at path.
// A missing file yields defaults.
func LoadFrom(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewFile(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if f.Version == 0 {
		f.Version = CurrentVersion
	}
	f.fillDefaults()
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &f, nil
}

// Save writes the configuration to the default path
func (f *File) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return f.SaveTo(path)
}

// SaveTo writes the configuration to path.
// Performs an atomic write to prevent corruption on crash.
func (f *File) SaveTo(path string) error {
	if err := f.Validate(); err != nil {
		return err
	}

	fileMutex.Lock()
	defer fileMutex.Unlock()

	// Create directory with user-only permissions (0700)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Blackbird 4x4 HDMI matrix controller configuration
#
# serial.read_timeout uses Go duration syntax (500ms, 2s).
# labels name the matrix ports for display; the matrix does not store them.
#
# Location: ` + path + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

// CreateDefaultConfig writes a default configuration with example labels to
// path unless a file already exists there.
func CreateDefaultConfig(path string) (*File, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("config file already exists: %s", path)
	}

	f := NewFile()
	f.Serial.Port = defaultPortName()
	f.Labels.Inputs[1] = "Media player"
	f.Labels.Outputs[1] = "Living room TV"

	if err := f.SaveTo(path); err != nil {
		return nil, err
	}
	return f, nil
}

func defaultPortName() string {
	switch runtime.GOOS {
	case "windows":
		return "COM3"
	case "darwin":
		return "/dev/cu.usbserial"
	default:
		return "/dev/ttyUSB0"
	}
}
