package transport

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/Cody994/21905-SerialController/internal/logging"
)

const (
	// DefaultBaudRate is the matrix's factory RS-232 setting
	DefaultBaudRate = 115200

	// DefaultReadTimeout bounds each reply read
	DefaultReadTimeout = 2 * time.Second
)

// ErrTimeout matches any *TimeoutError
var ErrTimeout = errors.New("serial read timed out")

// TimeoutError reports a read that ended before enough bytes arrived
type TimeoutError struct {
	Got  int
	Want int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("serial read timed out after %d of %d bytes", e.Got, e.Want)
}

// Timeout is always true
func (e *TimeoutError) Timeout() bool { return true }

// Is lets errors.Is match ErrTimeout
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Config describes how to open the serial line
type Config struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration
}

// withDefaults fills zero fields
func (c Config) withDefaults() Config {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	return c
}

// port is the subset of serial.Port the transport uses
type port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	ResetInputBuffer() error
	SetReadTimeout(t time.Duration) error
	Close() error
}

// openPort is replaced in tests
var openPort = func(name string, mode *serial.Mode) (port, error) {
	return serial.Open(name, mode)
}

// listPorts is replaced in tests
var listPorts = serial.GetPortsList

// Serial is an open RS-232 connection to the matrix.
// It implements matrix.Transport.
type Serial struct {
	mu   sync.Mutex
	port port
	name string
	cfg  Config
}

// Open opens cfg.Port at 8N1 with the configured baud rate and read timeout
func Open(cfg Config) (*Serial, error) {
	cfg = cfg.withDefaults()
	if cfg.Port == "" {
		return nil, errors.New("no serial port given (use --port or set serial.port in the config file)")
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := openPort(cfg.Port, mode)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("the port '%s' was not found", cfg.Port)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Port, err)
	}
	if err := p.SetReadTimeout(cfg.ReadTimeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", cfg.Port, err)
	}

	logging.Info("Serial port opened",
		zap.String("port", cfg.Port),
		zap.Int("baud", cfg.BaudRate),
		zap.Duration("read_timeout", cfg.ReadTimeout),
	)

	return &Serial{port: p, name: cfg.Port, cfg: cfg}, nil
}

// Name returns the port path
func (s *Serial) Name() string {
	return s.name
}

// Write discards stale input, then writes all of p
func (s *Serial) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Leftover bytes from an earlier timed-out reply would shift this one
	if err := s.port.ResetInputBuffer(); err != nil {
		return 0, fmt.Errorf("reset input buffer: %w", err)
	}

	written := 0
	for written < len(p) {
		n, err := s.port.Write(p[written:])
		written += n
		if err != nil {
			return written, err
		}
		if n == 0 {
			break
		}
	}
	return written, nil
}

// ReadFull reads exactly n bytes. A read that returns nothing means the
// port's read timeout expired and yields a *TimeoutError.
func (s *Serial) ReadFull(n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, n)
	got := 0
	for got < n {
		m, err := s.port.Read(buf[got:])
		got += m
		if err != nil {
			return nil, err
		}
		if m == 0 {
			logging.LogRawBytes("Partial serial reply", buf[:got])
			return nil, &TimeoutError{Got: got, Want: n}
		}
	}
	return buf, nil
}

// Close releases the port
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}

// ListPorts returns the serial ports present on this machine, sorted
func ListPorts() ([]string, error) {
	ports, err := listPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	sort.Strings(ports)
	return ports, nil
}

// PortExists reports whether name is one of the machine's serial ports
func PortExists(name string) (bool, error) {
	ports, err := ListPorts()
	if err != nil {
		return false, err
	}
	for _, p := range ports {
		if p == name {
			return true, nil
		}
	}
	return false, nil
}
