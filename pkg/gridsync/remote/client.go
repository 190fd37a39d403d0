// Package remote talks to the sheet backend. Reads use a callback-script bridge with a hard
// timeout; writes are fire-and-forget with optional confirmation.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ukaji3/gridsync-go/pkg/gridsync/values"
)

// DefaultTimeout bounds a read when no timeout is configured.
const DefaultTimeout = 12 * time.Second

const maxBodyBytes = 32 << 20

// WriteMode selects how much of a write response the client inspects.
type WriteMode string

const (
	// WriteOpaque closes the response unread; a sent request counts as delivered.
	WriteOpaque WriteMode = "opaque"
	// WriteReadable checks the status code and the {error} field of the JSON body.
	WriteReadable WriteMode = "readable"
)

// Outcome classifies a completed write.
type Outcome int

const (
	// SentUnconfirmed means the request left without a network error but nothing was read back.
	SentUnconfirmed Outcome = iota
	// ConfirmedOK means the backend acknowledged the write.
	ConfirmedOK
	// ConfirmedError means the backend answered with a failure.
	ConfirmedError
)

func (o Outcome) String() string {
	switch o {
	case SentUnconfirmed:
		return "sent-unconfirmed"
	case ConfirmedOK:
		return "confirmed-ok"
	case ConfirmedError:
		return "confirmed-error"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// WriteResult is the result of Save.
type WriteResult struct {
	Outcome Outcome
	// Message is the backend or status message for ConfirmedError.
	Message string
}

// Err returns a *RemoteError for ConfirmedError results and nil otherwise.
func (r WriteResult) Err() error {
	if r.Outcome != ConfirmedError {
		return nil
	}
	return &RemoteError{Op: "update", Message: r.Message}
}

// Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	writeMode  WriteMode
	logger     *slog.Logger
	callbacks  *callbacks
	newName    func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the read timeout. Non-positive values keep DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithWriteMode sets the write mode.
func WithWriteMode(m WriteMode) Option {
	return func(c *Client) {
		if m != "" {
			c.writeMode = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		writeMode:  WriteOpaque,
		logger:     slog.Default(),
		callbacks:  newCallbacks(),
		newName:    newCallbackName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the sheet. Exactly one of three events settles it: the callback fires, the
// request fails, or the timeout elapses. The callback is deregistered on every path.
func (c *Client) Load(ctx context.Context, endpoint string) (*Payload, error) {
	name := c.newName()
	resolved := c.callbacks.register(name)
	defer c.callbacks.release(name)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	failed := make(chan error, 1)
	go func() {
		if err := c.runScript(ctx, endpoint, name); err != nil {
			failed <- err
		}
	}()

	select {
	case p := <-resolved:
		c.logger.Debug("callback resolved", "callback", name, "columns", len(p.Columns), "rows", len(p.Rows))
		return p, nil
	case err := <-failed:
		c.logger.Debug("load failed", "callback", name, "error", err)
		return nil, &TransportError{Kind: ErrLoadFailed, Err: err}
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.logger.Debug("load timed out", "callback", name, "timeout", c.timeout)
			return nil, &TransportError{Kind: ErrLoadTimeout}
		}
		return nil, ctx.Err()
	}
}

// runScript fetches the callback script and dispatches its invocation. A script that names
// a callback nobody is waiting for is dropped without error.
func (c *Client) runScript(ctx context.Context, endpoint, name string) error {
	target, err := callbackURL(endpoint, name)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/javascript, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	callee, arg, err := parseInvocation(body)
	if err != nil {
		return err
	}
	if callee == "" {
		callee = name
	}

	p, err := decodePayload(arg)
	if err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	if !c.callbacks.invoke(callee, p) {
		c.logger.Debug("ignoring invocation of unknown callback", "callback", callee)
	}
	return nil
}

func callbackURL(endpoint, name string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("action", "get")
	q.Set("callback", name)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Save posts the table. Only a failure to send is returned as an error; what the backend
// said, if anything could be read, is in the WriteResult.
func (c *Client) Save(ctx context.Context, endpoint string, columns []string, rows [][]values.Scalar) (WriteResult, error) {
	if columns == nil {
		columns = []string{}
	}
	if rows == nil {
		rows = [][]values.Scalar{}
	}
	body, err := json.Marshal(UpdateRequest{Action: "update", Columns: columns, Rows: rows})
	if err != nil {
		return WriteResult{}, fmt.Errorf("failed to encode update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return WriteResult{}, &TransportError{Kind: ErrSaveFailed, Err: err}
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return WriteResult{}, &TransportError{Kind: ErrSaveFailed, Err: err}
	}
	defer resp.Body.Close()

	if c.writeMode == WriteOpaque {
		c.logger.Debug("update sent", "rows", len(rows))
		return WriteResult{Outcome: SentUnconfirmed}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return WriteResult{Outcome: ConfirmedError, Message: fmt.Sprintf("save failed: %d", resp.StatusCode)}, nil
	}

	var out updateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		return WriteResult{Outcome: ConfirmedError, Message: fmt.Sprintf("invalid response: %v", err)}, nil
	}
	if out.Error != "" {
		return WriteResult{Outcome: ConfirmedError, Message: out.Error}, nil
	}
	return WriteResult{Outcome: ConfirmedOK}, nil
}

// Endpoint binds a Client to one backend URL.
type Endpoint struct {
	client *Client
	url    string
}

// Endpoint returns c bound to rawURL.
func (c *Client) Endpoint(rawURL string) *Endpoint {
	return &Endpoint{client: c, url: rawURL}
}

// URL returns the bound backend URL.
func (e *Endpoint) URL() string { return e.url }

// Load calls Client.Load on the bound URL.
func (e *Endpoint) Load(ctx context.Context) (*Payload, error) {
	return e.client.Load(ctx, e.url)
}

// Save calls Client.Save on the bound URL.
func (e *Endpoint) Save(ctx context.Context, columns []string, rows [][]values.Scalar) (WriteResult, error) {
	return e.client.Save(ctx, e.url, columns, rows)
}
