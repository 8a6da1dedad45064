package config

import (
	"fmt"
	"time"

	"github.com/Cody994/21905-SerialController/internal/protocol"
)

// CurrentVersion is the config file format version
const CurrentVersion = 1

// Defaults
const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = 2 * time.Second
	DefaultListen      = ":8421"
	DefaultInstance    = "Blackbird"
)

// File represents the entire user configuration file
type File struct {
	Version  int             `yaml:"version"`
	Serial   *SerialConfig   `yaml:"serial,omitempty"`
	Protocol *ProtocolConfig `yaml:"protocol,omitempty"`
	Labels   *Labels         `yaml:"labels,omitempty"`
	Server   *ServerConfig   `yaml:"server,omitempty"`
}

// SerialConfig holds the RS-232 settings
type SerialConfig struct {
	Port        string        `yaml:"port,omitempty"` // e.g. /dev/ttyUSB0 or COM3
	BaudRate    int           `yaml:"baud_rate"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// ProtocolConfig holds codec options
type ProtocolConfig struct {
	VerifyChecksum bool `yaml:"verify_checksum"`
}

// Labels are user names for the matrix ports, keyed by port number 1-4.
// The matrix itself stores no names.
type Labels struct {
	Inputs  map[int]string `yaml:"inputs,omitempty"`
	Outputs map[int]string `yaml:"outputs,omitempty"`
}

// ServerConfig holds network bridge settings
type ServerConfig struct {
	Listen    string `yaml:"listen"`
	Advertise bool   `yaml:"advertise"` // Announce the bridge over mDNS
	Instance  string `yaml:"instance"`  // mDNS instance name
	TLSCert   string `yaml:"tls_cert,omitempty"`
	TLSKey    string `yaml:"tls_key,omitempty"`
}

// NewFile creates a File with default values
func NewFile() *File {
	f := &File{Version: CurrentVersion}
	f.fillDefaults()
	return f
}

// fillDefaults initializes missing sections and zero values
func (f *File) fillDefaults() {
	if f.Serial == nil {
		f.Serial = &SerialConfig{}
	}
	if f.Serial.BaudRate == 0 {
		f.Serial.BaudRate = DefaultBaudRate
	}
	if f.Serial.ReadTimeout == 0 {
		f.Serial.ReadTimeout = DefaultReadTimeout
	}
	if f.Protocol == nil {
		f.Protocol = &ProtocolConfig{}
	}
	if f.Labels == nil {
		f.Labels = &Labels{}
	}
	if f.Labels.Inputs == nil {
		f.Labels.Inputs = make(map[int]string)
	}
	if f.Labels.Outputs == nil {
		f.Labels.Outputs = make(map[int]string)
	}
	if f.Server == nil {
		f.Server = &ServerConfig{Advertise: true}
	}
	if f.Server.Listen == "" {
		f.Server.Listen = DefaultListen
	}
	if f.Server.Instance == "" {
		f.Server.Instance = DefaultInstance
	}
}

// Validate checks value ranges
func (f *File) Validate() error {
	if f.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", f.Version, CurrentVersion)
	}
	if f.Serial != nil {
		if f.Serial.BaudRate <= 0 {
			return fmt.Errorf("serial.baud_rate must be positive, got %d", f.Serial.BaudRate)
		}
		if f.Serial.ReadTimeout <= 0 {
			return fmt.Errorf("serial.read_timeout must be positive, got %s", f.Serial.ReadTimeout)
		}
	}
	if f.Labels != nil {
		for n := range f.Labels.Inputs {
			if err := protocol.CheckRange("labels.inputs key", n, protocol.MinPort, protocol.MaxPort); err != nil {
				return err
			}
		}
		for n := range f.Labels.Outputs {
			if err := protocol.CheckRange("labels.outputs key", n, protocol.MinPort, protocol.MaxPort); err != nil {
				return err
			}
		}
	}
	return nil
}

// InputLabel returns "Input N" or "Input N (label)"
func (f *File) InputLabel(n int) string {
	return portLabel("Input", n, f.labelMap(true))
}

// OutputLabel returns "Output N" or "Output N (label)"
func (f *File) OutputLabel(n int) string {
	return portLabel("Output", n, f.labelMap(false))
}

// SetInputLabel names an input; an empty label removes the name
func (f *File) SetInputLabel(n int, label string) error {
	return f.setLabel(true, n, label)
}

// SetOutputLabel names an output; an empty label removes the name
func (f *File) SetOutputLabel(n int, label string) error {
	return f.setLabel(false, n, label)
}

func (f *File) setLabel(input bool, n int, label string) error {
	if err := protocol.CheckRange("port", n, protocol.MinPort, protocol.MaxPort); err != nil {
		return err
	}
	f.fillDefaults()
	m := f.labelMap(input)
	if label == "" {
		delete(m, n)
	} else {
		m[n] = label
	}
	return nil
}

func (f *File) labelMap(input bool) map[int]string {
	if f == nil || f.Labels == nil {
		return nil
	}
	if input {
		return f.Labels.Inputs
	}
	return f.Labels.Outputs
}

func portLabel(kind string, n int, labels map[int]string) string {
	if name := labels[n]; name != "" {
		return fmt.Sprintf("%s %d (%s)", kind, n, name)
	}
	return fmt.Sprintf("%s %d", kind, n)
}
