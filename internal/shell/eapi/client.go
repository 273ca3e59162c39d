// Package eapi implements the device command API client: JSON-RPC
// style batches of CLI commands over HTTPS POST, plus the stateful
// configuration-session protocol built on top of them.
package eapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mvantol/fabricpush/internal/core/domain"
)

// CommandEndpoint is the fixed path every device exposes the command
// API on.
const CommandEndpoint = "/command-api"

// DefaultTimeout bounds each protocol round trip.
const DefaultTimeout = 30 * time.Second

// =============================================================================
// Client
// =============================================================================

// Config holds the settings for one device connection.
type Config struct {
	// Host is the inventory hostname, used in logs and error messages.
	Host string

	// Address is the reachable host[:port] for the command API.
	Address string

	Credentials domain.Credentials

	// Timeout bounds each round trip. Default 30s.
	Timeout time.Duration

	// VerifySSL enables strict TLS verification. Off by default:
	// lab devices ship self-signed certificates.
	VerifySSL bool
}

// Client owns one device connection and drives the configuration
// session protocol against it. Not safe for concurrent use; the
// orchestrator creates one client per attempt.
type Client struct {
	cfg       Config
	endpoint  string
	http      *http.Client
	logger    *slog.Logger
	connected bool
	reqID     int
}

// NewClient creates a client for one device. Connect must be called
// before any other operation.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:      cfg,
		endpoint: fmt.Sprintf("https://%s%s", cfg.Address, CommandEndpoint),
		logger:   logger.With("component", "eapi", "host", cfg.Host),
	}
}

// Connect builds the transport and probes the device with a lightweight
// command, confirming both reachability and credential validity.
func (c *Client) Connect(ctx context.Context) error {
	c.http = &http.Client{
		Timeout: c.cfg.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: !c.cfg.VerifySSL,
			},
		},
	}

	if _, err := c.runCmds(ctx, []string{"show version"}); err != nil {
		return err
	}

	c.connected = true
	c.logger.Debug("connected", "address", c.cfg.Address, "credentials", c.cfg.Credentials)
	return nil
}

// Close releases the transport. Idempotent; callers invoke it on every
// exit path.
func (c *Client) Close() {
	if c.http != nil {
		c.http.CloseIdleConnections()
	}
	c.connected = false
}

// =============================================================================
// Wire Types
// =============================================================================

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      string    `json:"id"`
}

type rpcParams struct {
	Version int      `json:"version"`
	Cmds    []string `json:"cmds"`
	Format  string   `json:"format"`
}

type rpcResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Result  []cmdOutput `json:"result"`
	Error   *rpcError   `json:"error"`
}

type cmdOutput struct {
	Output string `json:"output"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// Command Execution
// =============================================================================

// runCmds sends one batch of commands and returns the per-command text
// outputs. A device-level error fails the whole batch; commands before
// the failing one have already executed on the device.
func (c *Client) runCmds(ctx context.Context, cmds []string) ([]string, error) {
	c.reqID++
	payload := rpcRequest{
		JSONRPC: "2.0",
		Method:  "runCmds",
		Params:  rpcParams{Version: 1, Cmds: cmds, Format: "text"},
		ID:      fmt.Sprintf("%s-%d", c.cfg.Host, c.reqID),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ProtocolError{Host: c.cfg.Host, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &ConnectError{Host: c.cfg.Host, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.Credentials.Username, c.cfg.Credentials.Password)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ConnectError{Host: c.cfg.Host, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &AuthError{Host: c.cfg.Host, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &ProtocolError{Host: c.cfg.Host, Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(raw))}
	}

	var result rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ProtocolError{Host: c.cfg.Host, Err: fmt.Errorf("decode response: %w", err)}
	}
	if result.Error != nil {
		return nil, &commandError{Code: result.Error.Code, Message: result.Error.Message}
	}
	if len(result.Result) != len(cmds) {
		return nil, &ProtocolError{Host: c.cfg.Host, Err: fmt.Errorf("got %d outputs for %d commands", len(result.Result), len(cmds))}
	}

	outputs := make([]string, len(result.Result))
	for i, out := range result.Result {
		outputs[i] = out.Output
	}
	return outputs, nil
}
