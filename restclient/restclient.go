// Package restclient holds the HTTP mechanics shared by the subscription
// manager and geofencing service clients: base url, basic auth, timeouts,
// TLS verification and JSON bodies.
package restclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Config is the SUBSCRIPTION-MANAGER-API section of the facade configuration file.
type Config struct {
	Host  string `yaml:"host"`
	HTTPS bool   `yaml:"https"`
	// Timeout of a single request in seconds. Defaults to 30.
	Timeout int `yaml:"timeout"`
	// Verify enables TLS certificate verification. Verification stays on
	// unless the key is explicitly set to false.
	Verify   *bool  `yaml:"verify"`
	Username string `yaml:"username" env:"SM_API_USERNAME"`
	Password string `yaml:"password" env:"SM_API_PASSWORD"`
	// BasePath is prepended to every endpoint path.
	BasePath string `yaml:"base_path"`
}

func (c Config) verifyTLS() bool {
	return c.Verify == nil || *c.Verify
}

// BaseURL returns the url every request path is resolved against.
func (c Config) BaseURL() (*url.URL, error) {
	if c.Host == "" {
		return nil, errors.New("api host is not configured")
	}
	scheme := "http"
	if c.HTTPS {
		scheme = "https"
	}
	return &url.URL{
		Scheme: scheme,
		Host:   c.Host,
		Path:   "/" + strings.Trim(c.BasePath, "/"),
	}, nil
}

// APIError is returned for responses with a non 2xx status code.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api error: %d %s", e.StatusCode, e.Detail)
}

// StatusCode returns the status code of err if it is or wraps an *APIError.
func StatusCode(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	return 0, false
}

// Client performs JSON requests against a REST API.
type Client struct {
	base     *url.URL
	http     *http.Client
	username string
	password string
}

// New creates a client from cfg.
func New(cfg Config) (*Client, error) {
	base, err := cfg.BaseURL()
	if err != nil {
		return nil, err
	}

	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !cfg.verifyTLS() {
		// nolint: gosec
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		base:     base,
		http:     &http.Client{Timeout: timeout, Transport: transport},
		username: cfg.Username,
		password: cfg.Password,
	}, nil
}

// NewWithHTTPClient creates a client from cfg that sends its requests with hc.
func NewWithHTTPClient(cfg Config, hc *http.Client) (*Client, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	c.http = hc
	return c, nil
}

// Do sends a request with in encoded as JSON body (if not nil) and decodes
// the JSON response into out (if not nil).
func (c *Client) Do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	// an empty body leaves out untouched
	if r := json.NewDecoder(resp.Body).Decode(out); r != nil && !errors.Is(r, io.EOF) {
		return fmt.Errorf("decode response of %s %s: %w", method, path, r)
	}
	return nil
}

func (c *Client) url(path string) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	return u.String()
}

const maxErrorBody = 4096

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Detail != "" {
		apiErr.Detail = body.Detail
	} else {
		apiErr.Detail = strings.TrimSpace(string(raw))
	}
	return apiErr
}
