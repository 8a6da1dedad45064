package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "blackbird") {
		t.Errorf("GetConfigDir() = %v, should contain 'blackbird'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if got != filepath.Join("/tmp/xdg", "blackbird") {
		t.Errorf("GetConfigDir() = %v", got)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "/etc/blackbird.yaml")

	got, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if got != "/etc/blackbird.yaml" {
		t.Errorf("GetConfigPath() = %v", got)
	}
}

func TestNewFile(t *testing.T) {
	f := NewFile()

	if f.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", f.Version, CurrentVersion)
	}
	if f.Serial.BaudRate != DefaultBaudRate || f.Serial.ReadTimeout != DefaultReadTimeout {
		t.Errorf("Serial = %+v", f.Serial)
	}
	if f.Server.Listen != DefaultListen || !f.Server.Advertise {
		t.Errorf("Server = %+v", f.Server)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFrom_Missing(t *testing.T) {
	f, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if f.Serial.BaudRate != DefaultBaudRate {
		t.Errorf("BaudRate = %d, want default", f.Serial.BaudRate)
	}
}

func TestLoadFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `version: 1
serial:
  port: /dev/ttyUSB3
  baud_rate: 9600
  read_timeout: 500ms
protocol:
  verify_checksum: true
labels:
  inputs:
    1: Apple TV
    2: PS5
  outputs:
    3: Bedroom
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	f, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if f.Serial.Port != "/dev/ttyUSB3" || f.Serial.BaudRate != 9600 {
		t.Errorf("Serial = %+v", f.Serial)
	}
	if f.Serial.ReadTimeout != 500*time.Millisecond {
		t.Errorf("ReadTimeout = %v, want 500ms", f.Serial.ReadTimeout)
	}
	if !f.Protocol.VerifyChecksum {
		t.Error("VerifyChecksum = false, want true")
	}
	if f.Server.Listen != DefaultListen {
		t.Errorf("missing server section not defaulted: %+v", f.Server)
	}

	if got := f.InputLabel(2); got != "Input 2 (PS5)" {
		t.Errorf("InputLabel(2) = %q", got)
	}
	if got := f.InputLabel(4); got != "Input 4" {
		t.Errorf("InputLabel(4) = %q", got)
	}
	if got := f.OutputLabel(3); got != "Output 3 (Bedroom)" {
		t.Errorf("OutputLabel(3) = %q", got)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad yaml", content: "serial: [unterminated"},
		{name: "future version", content: "version: 7\n"},
		{name: "negative baud", content: "version: 1\nserial:\n  baud_rate: -1\n  read_timeout: 1s\n"},
		{name: "label port 5", content: "version: 1\nlabels:\n  inputs:\n    5: Nope\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Error("LoadFrom() error = nil, want error")
			}
		})
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	f := NewFile()
	f.Serial.Port = "COM4"
	f.Serial.ReadTimeout = 750 * time.Millisecond
	if err := f.SetOutputLabel(1, "Projector"); err != nil {
		t.Fatalf("SetOutputLabel() error = %v", err)
	}

	if err := f.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.Serial.Port != "COM4" || loaded.Serial.ReadTimeout != 750*time.Millisecond {
		t.Errorf("Serial = %+v", loaded.Serial)
	}
	if loaded.Labels.Outputs[1] != "Projector" {
		t.Errorf("Outputs = %v", loaded.Labels.Outputs)
	}
}

func TestSetLabel(t *testing.T) {
	f := NewFile()
	if err := f.SetInputLabel(5, "x"); err == nil {
		t.Error("SetInputLabel(5) error = nil")
	}
	_ = f.SetInputLabel(1, "Roku")
	_ = f.SetInputLabel(1, "")
	if _, ok := f.Labels.Inputs[1]; ok {
		t.Error("empty label did not remove the name")
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	f, err := CreateDefaultConfig(path)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if f.Serial.Port == "" {
		t.Error("default port not set")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Blackbird") {
		t.Errorf("missing header comment:\n%s", data)
	}

	if _, err := CreateDefaultConfig(path); err == nil {
		t.Error("second CreateDefaultConfig() did not refuse to overwrite")
	}
}

func TestLoad_UsesEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nserial:\n  port: /dev/ttyACM0\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	const callers = 8
	files := make([]*File, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			files[i], errs[i] = Load()
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("Load() error = %v", errs[i])
		}
		if files[i] != files[0] {
			t.Errorf("Load() call %d returned a different *File", i)
		}
	}
	if files[0].Serial.Port != "/dev/ttyACM0" {
		t.Errorf("Port = %q", files[0].Serial.Port)
	}
}
