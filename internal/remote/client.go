package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Cody994/21905-SerialController/internal/discovery"
	"github.com/Cody994/21905-SerialController/internal/logging"
	"github.com/Cody994/21905-SerialController/internal/matrix"
	"github.com/Cody994/21905-SerialController/internal/protocol"
	"github.com/Cody994/21905-SerialController/internal/server"
	"github.com/Cody994/21905-SerialController/internal/version"
)

const (
	// DefaultTimeout covers a full status read (18 exchanges) on a slow line
	DefaultTimeout = 45 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 2

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 5 * time.Second

	maxResponseSize = 1 << 20
)

// Client talks to a bridge started with 'blackbird serve'
type Client struct {
	// BaseURL is the bridge root (e.g., "http://192.168.1.20:8421")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff doubles RetryDelay after each attempt
	UseExponentialBackoff bool
}

// NewClient creates a client for the bridge at baseURL. A bare host:port
// gets an http:// prefix.
func NewClient(baseURL string) *Client {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		BaseURL:               strings.TrimRight(baseURL, "/"),
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
	}
}

// ForBridge creates a client for a discovered bridge
func ForBridge(b *discovery.Bridge) *Client {
	return NewClient(b.BaseURL())
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// Health is the bridge's /api/health answer
type Health struct {
	Status string `json:"status"`
	version.BuildInfo
}

// Health checks that the bridge is up and returns its build
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	err := c.withRetry(ctx, "health", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/health", nil)
		if err != nil {
			return &Error{Type: ErrTypeNetwork, Message: "failed to create request", Err: err}
		}
		body, status, err := c.send(req)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return &Error{Type: ErrTypeHTTP, StatusCode: status, Message: fmt.Sprintf("unexpected status code: %d", status)}
		}
		if err := json.Unmarshal(body, &h); err != nil {
			return &Error{Type: ErrTypeParse, Message: "failed to parse health response", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Do runs one operation on the bridge and decodes its result into result,
// which may be nil. Operations that change nothing on a second run are
// retried on network failures; reboot and factory reset never are.
func (c *Client) Do(ctx context.Context, op string, args any, result any) error {
	reqBody := server.Request{Op: op}
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("encode %s args: %w", op, err)
		}
		reqBody.Args = raw
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}

	attempt := func() error {
		return c.doAttempt(ctx, op, payload, result)
	}
	if op == server.OpReboot || op == server.OpFactoryReset {
		return attempt()
	}
	return c.withRetry(ctx, op, attempt)
}

// envelope mirrors server.Response with the result left raw
type envelope struct {
	ID     string            `json:"id,omitempty"`
	OK     bool              `json:"ok"`
	Result json.RawMessage   `json:"result,omitempty"`
	Error  *server.ErrorBody `json:"error,omitempty"`
}

func (c *Client) doAttempt(ctx context.Context, op string, payload []byte, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/command", bytes.NewReader(payload))
	if err != nil {
		return &Error{Type: ErrTypeNetwork, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := c.send(req)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if status != http.StatusOK {
			return &Error{Type: ErrTypeHTTP, StatusCode: status, Message: fmt.Sprintf("unexpected status code: %d", status)}
		}
		return &Error{Type: ErrTypeParse, StatusCode: status, Message: "failed to parse response", Err: err}
	}

	if !env.OK {
		if env.Error == nil {
			return &Error{Type: ErrTypeParse, StatusCode: status, Message: "failed response without an error body"}
		}
		return &Error{
			Type:       ErrTypeRemote,
			StatusCode: status,
			Kind:       env.Error.Kind,
			Message:    env.Error.Message,
			Hint:       env.Error.Hint,
		}
	}

	if result != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, result); err != nil {
			return &Error{Type: ErrTypeParse, StatusCode: status, Message: fmt.Sprintf("failed to parse %s result", op), Err: err}
		}
	}
	return nil
}

// send performs req and reads a bounded body
func (c *Client) send(req *http.Request) ([]byte, int, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, classifyNetworkError("request to bridge failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, classifyNetworkError("failed to read response body", err)
	}
	return body, resp.StatusCode, nil
}

// withRetry runs fn until it succeeds, fails with a non-retryable error,
// or runs out of attempts
func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	currentDelay := c.RetryDelay

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			logging.Debug("Retrying bridge request",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Duration("delay", currentDelay),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(currentDelay):
			case <-ctx.Done():
				return lastErr
			}

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
	}

	return lastErr
}

// Typed helpers, one per bridge operation

// Status returns the full matrix state
func (c *Client) Status(ctx context.Context) (*matrix.Snapshot, error) {
	var s matrix.Snapshot
	if err := c.Do(ctx, server.OpStatus, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Routing returns the source of every output
func (c *Client) Routing(ctx context.Context) ([]matrix.Route, error) {
	var routes []matrix.Route
	if err := c.Do(ctx, server.OpRouting, nil, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// Route sends input to outputs
func (c *Client) Route(ctx context.Context, input int, outputs ...int) error {
	return c.Do(ctx, server.OpRoute, map[string]any{"input": input, "outputs": outputs}, nil)
}

// RouteAll sends input to every output
func (c *Client) RouteAll(ctx context.Context, input int) error {
	return c.Do(ctx, server.OpRoute, map[string]any{"input": input, "all": true}, nil)
}

// Power switches the matrix on or into standby
func (c *Client) Power(ctx context.Context, on bool) error {
	return c.Do(ctx, server.OpPower, map[string]bool{"on": on}, nil)
}

// Beep switches the front panel beep
func (c *Client) Beep(ctx context.Context, on bool) error {
	return c.Do(ctx, server.OpBeep, map[string]bool{"on": on}, nil)
}

// SetEDIDProfile assigns a built-in profile to input
func (c *Client) SetEDIDProfile(ctx context.Context, profile protocol.EDIDProfile, input int) error {
	return c.Do(ctx, server.OpEDIDSet, map[string]int{"profile": int(profile), "input": input}, nil)
}

// CopyEDID copies the EDID on output to targets (0 = all inputs)
func (c *Client) CopyEDID(ctx context.Context, output int, targets ...int) error {
	return c.Do(ctx, server.OpEDIDCopy, map[string]any{"output": output, "targets": targets}, nil)
}

// EDIDProfile returns the profile assigned to input
func (c *Client) EDIDProfile(ctx context.Context, input int) (*server.EDIDResult, error) {
	var r server.EDIDResult
	if err := c.Do(ctx, server.OpEDIDGet, map[string]int{"input": input}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeviceType returns the device type byte as the bridge formats it
func (c *Client) DeviceType(ctx context.Context) (string, error) {
	var r server.DeviceTypeResult
	if err := c.Do(ctx, server.OpDeviceType, nil, &r); err != nil {
		return "", err
	}
	return r.DeviceType, nil
}

// Reboot restarts the matrix
func (c *Client) Reboot(ctx context.Context) error {
	return c.Do(ctx, server.OpReboot, nil, nil)
}

// FactoryReset restores factory settings; the bridge requires confirm
func (c *Client) FactoryReset(ctx context.Context) error {
	return c.Do(ctx, server.OpFactoryReset, map[string]bool{"confirm": true}, nil)
}
