package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Cody994/21905-SerialController/internal/discovery"
	"github.com/Cody994/21905-SerialController/internal/logging"
	"github.com/Cody994/21905-SerialController/internal/matrix"
	"github.com/Cody994/21905-SerialController/internal/version"
)

// DefaultShutdownTimeout bounds graceful shutdown
const DefaultShutdownTimeout = 10 * time.Second

// Config holds the server configuration
type Config struct {
	Listen          string // host:port, e.g. ":8421"
	Advertise       bool   // Announce the bridge over mDNS
	Instance        string // mDNS instance name
	SerialPort      string // Reported in the mDNS TXT record
	ShutdownTimeout time.Duration

	// TLSCert and TLSKey switch the listener to HTTPS and WSS when both
	// are set (PEM file paths)
	TLSCert string
	TLSKey  string
}

// tlsEnabled reports whether the listener should use TLS
func (c Config) tlsEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// Server exposes one matrix over HTTP and WebSocket
type Server struct {
	config Config
	matrix *matrix.Matrix

	// mu serializes matrix access across all clients
	mu sync.Mutex

	httpServer *http.Server
	listener   net.Listener
	advert     *discovery.Advertisement

	clientsMu sync.Mutex
	clients   map[*wsClient]struct{}
}

// New creates a new Server instance
func New(m *matrix.Matrix, config Config) *Server {
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = DefaultShutdownTimeout
	}
	s := &Server{
		config:  config,
		matrix:  m,
		clients: make(map[*wsClient]struct{}),
	}
	s.httpServer = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler (used by tests with httptest)
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the bound listen address once Start has been called
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start binds the listener, starts serving in the background, and
// advertises the bridge if configured
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}

	if s.config.tlsEnabled() {
		tlsConfig, err := NewTLSConfig(s.config.TLSCert, s.config.TLSKey)
		if err != nil {
			listener.Close()
			return err
		}
		listener = tls.NewListener(listener, tlsConfig)
	}
	s.listener = listener

	logging.Info("Bridge listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("serial_port", s.config.SerialPort),
		zap.Bool("tls", s.config.tlsEnabled()),
	)

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	if s.config.Advertise {
		port := listener.Addr().(*net.TCPAddr).Port
		txt := []string{
			"version=" + version.Version,
			"serial=" + s.config.SerialPort,
			"ws=/ws",
		}
		if s.config.tlsEnabled() {
			txt = append(txt, "tls=1")
		}
		advert, err := discovery.Advertise(s.config.Instance, port, txt)
		if err != nil {
			// The bridge still works without mDNS
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			s.advert = advert
		}
	}

	return nil
}

// Run starts the server and blocks until ctx is done or SIGINT/SIGTERM
// arrives, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logging.Info("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if s.advert != nil {
		s.advert.Shutdown()
		s.advert = nil
	}

	// Hijacked WebSocket connections are not tracked by http.Server
	s.closeClients()

	err := s.httpServer.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		logging.Warn("Shutdown timeout, forcing close")
		err = s.httpServer.Close()
	}

	logging.Sync()
	return err
}

// ActiveConnections returns the number of open WebSocket clients
func (s *Server) ActiveConnections() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}
