package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/Cody994/21905-SerialController/internal/logging"
	"github.com/Cody994/21905-SerialController/internal/version"
)

// maxBodySize bounds request bodies on the JSON API
const maxBodySize = 64 << 10

// routes registers the HTTP API and the WebSocket endpoint
func (s *Server) routes() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/health", s.handleHealth)
	api.Handle("GET /api/status", s.handleOp(OpStatus))
	api.Handle("GET /api/routing", s.handleOp(OpRouting))
	api.Handle("GET /api/device-type", s.handleOp(OpDeviceType))
	api.HandleFunc("GET /api/edid/{input}", s.handleEDIDGet)
	api.Handle("POST /api/route", s.handleOp(OpRoute))
	api.Handle("POST /api/power", s.handleOp(OpPower))
	api.Handle("POST /api/beep", s.handleOp(OpBeep))
	api.Handle("POST /api/edid", s.handleOp(OpEDIDSet))
	api.Handle("POST /api/edid/copy", s.handleOp(OpEDIDCopy))
	api.Handle("POST /api/reboot", s.handleOp(OpReboot))
	api.Handle("POST /api/factory-reset", s.handleOp(OpFactoryReset))
	api.HandleFunc("POST /api/command", s.handleCommand)

	mux := http.NewServeMux()
	mux.Handle("/api/", logRequests(api))
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

// handleOp runs op with the request body as its args
func (s *Server) handleOp(op string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		args, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			writeResponse(w, respond("", nil, badRequest(err)))
			return
		}
		result, err := s.execute(r.Context(), Request{Op: op, Args: args})
		writeResponse(w, respond("", result, err))
	})
}

// handleCommand accepts a full Request envelope, as sent over the WebSocket
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeResponse(w, respond("", nil, badRequest(err)))
		return
	}
	result, err := s.execute(r.Context(), req)
	writeResponse(w, respond(req.ID, result, err))
}

func (s *Server) handleEDIDGet(w http.ResponseWriter, r *http.Request) {
	input, err := strconv.Atoi(r.PathValue("input"))
	if err != nil {
		writeResponse(w, respond("", nil, badRequest(err)))
		return
	}
	args, _ := json.Marshal(edidGetArgs{Input: input})
	result, err := s.execute(r.Context(), Request{Op: OpEDIDGet, Args: args})
	writeResponse(w, respond("", result, err))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		version.BuildInfo
	}{"ok", version.Info()})
}

// statusCode maps an error kind to an HTTP status
func statusCode(resp Response) int {
	if resp.OK {
		return http.StatusOK
	}
	switch resp.Error.Kind {
	case KindBadRequest, KindInvalidOperand:
		return http.StatusBadRequest
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindTransport, KindChecksum, KindMalformed:
		return http.StatusBadGateway
	case KindCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeResponse(w http.ResponseWriter, resp Response) {
	writeJSON(w, statusCode(resp), resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("Failed to write response", zap.Error(err))
	}
}

// statusRecorder captures the status code for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status)
	})
}
