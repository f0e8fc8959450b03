package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rileyhilliard/procdash/internal/errors"
	"github.com/rileyhilliard/procdash/pkg/sshutil"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 4 << 10

// HTTPClient talks to a backend over its JSON HTTP API.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	tunnel  *sshutil.Tunnel
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout bounds every request, including reading the body.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

// WithTunnel routes every connection through an SSH tunnel. The backend URL
// host is then resolved on the far side.
func WithTunnel(t *sshutil.Tunnel) ClientOption {
	return func(c *HTTPClient) {
		c.tunnel = t
		c.http.Transport = &http.Transport{
			DialContext:         t.DialContext,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     30 * time.Second,
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client (tests use httptest's).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) { c.http = hc }
}

// NewHTTPClient returns a client for the backend at rawURL.
func NewHTTPClient(rawURL string, opts ...ClientOption) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil || u.Host == "" {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid backend URL %q", rawURL),
			"Use something like http://127.0.0.1:8787")
	}

	c := &HTTPClient{
		baseURL: u,
		http: &http.Client{
			Timeout: 2 * time.Second,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: 2 * time.Second}).DialContext,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend address this client talks to.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL.String()
}

// Close releases idle connections and the SSH tunnel, if any.
func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	if c.tunnel != nil {
		return c.tunnel.Close()
	}
	return nil
}

func (c *HTTPClient) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/snapshot", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *HTTPClient) Start(ctx context.Context, name string) error {
	return c.entityAction(ctx, name, ActionStart)
}

func (c *HTTPClient) Stop(ctx context.Context, name string) error {
	return c.entityAction(ctx, name, ActionStop)
}

func (c *HTTPClient) Restart(ctx context.Context, name string) error {
	return c.entityAction(ctx, name, ActionRestart)
}

func (c *HTTPClient) OpenFolder(ctx context.Context, name string) error {
	return c.entityAction(ctx, name, ActionOpenFolder)
}

func (c *HTTPClient) RestartAll(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/restart-all", nil, nil)
}

func (c *HTTPClient) KillCMD(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/kill/cmd", nil, nil)
}

func (c *HTTPClient) KillNode(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/kill/node", nil, nil)
}

func (c *HTTPClient) GetConfigModel(ctx context.Context) (*ConfigModel, error) {
	var model ConfigModel
	if err := c.do(ctx, http.MethodGet, "/api/config", nil, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

func (c *HTTPClient) SaveConfigModel(ctx context.Context, model ConfigModel) error {
	return c.do(ctx, http.MethodPut, "/api/config", model, nil)
}

func (c *HTTPClient) entityAction(ctx context.Context, name string, action Action) error {
	return c.do(ctx, http.MethodPost, "/api/processes/"+url.PathEscape(name)+"/"+string(action), nil, nil)
}

// errorBody is the JSON shape of a non-2xx response.
type errorBody struct {
	Error string `json:"error"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "Couldn't encode request for "+path)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return errors.Wrap(err, "Couldn't build request for "+path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrBackend,
			fmt.Sprintf("%s %s failed", method, path),
			"Is the backend running at "+c.baseURL.String()+"?")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(raw))
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
		if msg == "" {
			msg = resp.Status
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, fmt.Sprintf("Backend sent an unreadable response to %s", path))
	}
	return nil
}

// Error is a backend-side rejection (non-2xx response).
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
