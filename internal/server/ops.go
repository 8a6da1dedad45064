package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Cody994/21905-SerialController/internal/logging"
	"github.com/Cody994/21905-SerialController/internal/matrix"
	"github.com/Cody994/21905-SerialController/internal/protocol"
)

// Operation names accepted in Request.Op
const (
	OpStatus       = "status"
	OpRouting      = "routing"
	OpRoute        = "route"
	OpPower        = "power"
	OpBeep         = "beep"
	OpEDIDSet      = "edid.set"
	OpEDIDCopy     = "edid.copy"
	OpEDIDGet      = "edid.get"
	OpReboot       = "reboot"
	OpFactoryReset = "factory_reset"
	OpDeviceType   = "device_type"
)

// ErrBadRequest marks malformed or unknown requests
var ErrBadRequest = errors.New("bad request")

// Request is one command envelope
type Request struct {
	ID   string          `json:"id,omitempty"`
	Op   string          `json:"op"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Response answers one Request
type Response struct {
	ID     string     `json:"id,omitempty"`
	OK     bool       `json:"ok"`
	Result any        `json:"result,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed request
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// Argument payloads

type routeArgs struct {
	Input   int   `json:"input"`
	Outputs []int `json:"outputs"`
	All     bool  `json:"all"`
}

type switchArgs struct {
	On *bool `json:"on"`
}

type edidSetArgs struct {
	Profile int `json:"profile"`
	Input   int `json:"input"`
}

type edidCopyArgs struct {
	Output  int   `json:"output"`
	Targets []int `json:"targets"`
}

type edidGetArgs struct {
	Input int `json:"input"`
}

type factoryResetArgs struct {
	Confirm bool `json:"confirm"`
}

// EDIDResult answers edid.get
type EDIDResult struct {
	Input   int    `json:"input"`
	Profile int    `json:"profile"`
	Name    string `json:"name"`
}

// DeviceTypeResult answers device_type
type DeviceTypeResult struct {
	DeviceType string `json:"device_type"`
}

// execute runs one operation against the matrix. Calls are serialized so
// only one frame exchange is ever in flight on the serial line.
func (s *Server) execute(ctx context.Context, req Request) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.Debug("Executing request", zap.String("op", req.Op), zap.String("id", req.ID))

	m := s.matrix
	switch req.Op {
	case OpStatus:
		return m.Snapshot(ctx)

	case OpRouting:
		return m.QueryRoutingAll(ctx)

	case OpRoute:
		var a routeArgs
		if err := decodeArgs(req.Args, &a); err != nil {
			return nil, err
		}
		if a.All {
			return nil, m.RouteInputAll(ctx, a.Input)
		}
		return nil, m.RouteInput(ctx, a.Input, a.Outputs...)

	case OpPower:
		on, err := decodeSwitch(req.Args)
		if err != nil {
			return nil, err
		}
		return nil, m.Power(ctx, on)

	case OpBeep:
		on, err := decodeSwitch(req.Args)
		if err != nil {
			return nil, err
		}
		return nil, m.Beep(ctx, on)

	case OpEDIDSet:
		var a edidSetArgs
		if err := decodeArgs(req.Args, &a); err != nil {
			return nil, err
		}
		return nil, m.SetEDIDProfile(ctx, protocol.EDIDProfile(a.Profile), a.Input)

	case OpEDIDCopy:
		var a edidCopyArgs
		if err := decodeArgs(req.Args, &a); err != nil {
			return nil, err
		}
		return nil, m.CopyEDID(ctx, a.Output, a.Targets...)

	case OpEDIDGet:
		var a edidGetArgs
		if err := decodeArgs(req.Args, &a); err != nil {
			return nil, err
		}
		p, err := m.QueryEDIDProfile(ctx, a.Input)
		if err != nil {
			return nil, err
		}
		return EDIDResult{Input: a.Input, Profile: int(p), Name: p.String()}, nil

	case OpReboot:
		return nil, m.Reboot(ctx)

	case OpFactoryReset:
		var a factoryResetArgs
		if err := decodeArgs(req.Args, &a); err != nil {
			return nil, err
		}
		if !a.Confirm {
			return nil, fmt.Errorf("factory_reset requires {\"confirm\": true}: %w", ErrBadRequest)
		}
		return nil, m.FactoryReset(ctx)

	case OpDeviceType:
		b, err := m.QueryDeviceType(ctx)
		if err != nil {
			return nil, err
		}
		return DeviceTypeResult{DeviceType: fmt.Sprintf("0x%02X", b)}, nil

	default:
		return nil, fmt.Errorf("unknown op %q: %w", req.Op, ErrBadRequest)
	}
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing args: %w", ErrBadRequest)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid args: %v: %w", err, ErrBadRequest)
	}
	return nil
}

func decodeSwitch(raw json.RawMessage) (bool, error) {
	var a switchArgs
	if err := decodeArgs(raw, &a); err != nil {
		return false, err
	}
	if a.On == nil {
		return false, fmt.Errorf("missing \"on\": %w", ErrBadRequest)
	}
	return *a.On, nil
}

// respond turns an execute result into a Response
func respond(id string, result any, err error) Response {
	if err != nil {
		return Response{ID: id, Error: errorBody(err)}
	}
	return Response{ID: id, OK: true, Result: result}
}

// Error kinds reported in ErrorBody.Kind
const (
	KindBadRequest     = "bad_request"
	KindInvalidOperand = "invalid_operand"
	KindTimeout        = "timeout"
	KindTransport      = "transport"
	KindChecksum       = "checksum_mismatch"
	KindMalformed      = "malformed_response"
	KindCanceled       = "canceled"
	KindInternal       = "internal"
)

func errorKind(err error) string {
	var te *matrix.TransportError
	switch {
	case errors.Is(err, ErrBadRequest):
		return KindBadRequest
	case matrix.IsInvalidOperand(err):
		return KindInvalidOperand
	case errors.As(err, &te) && te.Timeout():
		return KindTimeout
	case matrix.IsTransportError(err):
		return KindTransport
	case errors.Is(err, matrix.ErrChecksumMismatch):
		return KindChecksum
	case matrix.IsMalformedResponse(err):
		return KindMalformed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}

func errorBody(err error) *ErrorBody {
	kind := errorKind(err)
	body := &ErrorBody{Kind: kind, Message: err.Error()}
	if kind != KindBadRequest && kind != KindInternal {
		body.Hint = matrix.TroubleshootingHint(err)
	}
	return body
}

func badRequest(err error) error {
	return fmt.Errorf("%v: %w", err, ErrBadRequest)
}
