package nanoleaf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	// defaultPort is the TCP port the panel API listens on.
	defaultPort = "16021"

	// defaultTimeout bounds each HTTP request.
	defaultTimeout = 10 * time.Second
)

// errUnauthorized marks a 401/403 from the panel so the adapter can attach
// pairing guidance.
var errUnauthorized = errors.New("nanoleaf: unauthorised")

// errTransport marks a failure that happened before the panel replied, so
// the adapter can separate reachability problems from rejected operations.
var errTransport = errors.New("nanoleaf: transport failure")

// client performs token-authenticated requests against one panel.
type client struct {
	base string
	http *http.Client
}

// newClient resolves the panel address. A bare host gets the default panel
// port appended; "host:port" is used as given (tests rely on this).
func newClient(addr, token string, timeout time.Duration) *client {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, defaultPort)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &client{
		base: fmt.Sprintf("http://%s/api/v1/%s", addr, token),
		http: &http.Client{Timeout: timeout},
	}
}

// do issues one request and returns the response body. Transport failures
// are returned as-is; HTTP-level failures become errUnauthorized or a plain
// error, and the adapter layer maps all of them onto the device taxonomy.
func (c *client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errTransport, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("panel returned %s", resp.Status)
	}
	return payload, nil
}

func (c *client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *client) put(ctx context.Context, path string, body any) error {
	_, err := c.do(ctx, http.MethodPut, path, body)
	return err
}
