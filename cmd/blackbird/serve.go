package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Cody994/21905-SerialController/internal/logging"
	"github.com/Cody994/21905-SerialController/internal/matrix"
	"github.com/Cody994/21905-SerialController/internal/server"
)

func newServeCmd(o *options) *cobra.Command {
	var (
		listen    string
		advertise bool
		instance  string
		tlsCert   string
		tlsKey    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Share the matrix on the network over HTTP and WebSocket",
		Long: `Run a bridge that holds the serial port and accepts commands from the
network. Requests from all clients are sent to the matrix one at a time.

Endpoints:
  GET  /api/health              liveness and version
  GET  /api/status              full matrix state
  GET  /api/routing             source of every output
  GET  /api/edid/{input}        EDID profile of an input
  GET  /api/device-type         device type byte
  POST /api/route               route an input
  POST /api/power, /api/beep    switch on or off
  POST /api/edid, /api/edid/copy
  POST /api/reboot, /api/factory-reset
  POST /api/command             any operation as a request envelope
  GET  /ws                      WebSocket, one request envelope per message

With --advertise the bridge announces itself over mDNS so
'blackbird bridges' can find it. With --tls-cert and --tls-key it serves
HTTPS and WSS instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			// A long-running service logs at info unless told otherwise
			if o.logLevel == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
				if err := logging.Initialize("info"); err != nil {
					return err
				}
			}

			flags := cmd.Flags()
			if !flags.Changed("listen") {
				listen = o.file.Server.Listen
			}
			if !flags.Changed("advertise") {
				advertise = o.file.Server.Advertise
			}
			if !flags.Changed("instance") {
				instance = o.file.Server.Instance
			}
			if !flags.Changed("tls-cert") {
				tlsCert = o.file.Server.TLSCert
			}
			if !flags.Changed("tls-key") {
				tlsKey = o.file.Server.TLSKey
			}
			if (tlsCert == "") != (tlsKey == "") {
				return errors.New("--tls-cert and --tls-key must be given together")
			}

			return o.withMatrix(func(m *matrix.Matrix) error {
				logging.Info("Starting bridge",
					zap.String("listen", listen),
					zap.Bool("advertise", advertise),
					zap.String("instance", instance),
				)
				srv := server.New(m, server.Config{
					Listen:     listen,
					Advertise:  advertise,
					Instance:   instance,
					SerialPort: o.portName(),
					TLSCert:    tlsCert,
					TLSKey:     tlsKey,
				})
				return srv.Run(cmd.Context())
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&listen, "listen", "", "Address to listen on (default from config, :8421)")
	f.BoolVar(&advertise, "advertise", true, "Announce the bridge over mDNS")
	f.StringVar(&instance, "instance", "", "mDNS instance name (default from config)")
	f.StringVar(&tlsCert, "tls-cert", "", "PEM certificate; serves HTTPS and WSS together with --tls-key")
	f.StringVar(&tlsKey, "tls-key", "", "PEM private key for --tls-cert")
	return cmd
}
