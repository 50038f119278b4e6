package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/goliatone/go-authwidget/pkg/record"
)

// Client calls a remote call route. It implements record.Caller so widgets
// can run against a live host.
type Client struct {
	endpoint string
	http     *http.Client
	header   http.Header
	nextID   atomic.Int64
}

var _ record.Caller = (*Client)(nil)

// ClientOptionFn configures a Client.
type ClientOptionFn func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(client *http.Client) ClientOptionFn {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithHeader adds a header to every request, e.g. a session cookie.
func WithHeader(key, value string) ClientOptionFn {
	return func(c *Client) {
		c.header.Add(key, value)
	}
}

// NewClient targets endpoint, the full URL of the call route.
func NewClient(endpoint string, fns ...ClientOptionFn) *Client {
	c := &Client{
		endpoint: strings.TrimSpace(endpoint),
		http:     http.DefaultClient,
		header:   http.Header{},
	}
	for _, fn := range fns {
		if fn != nil {
			fn(c)
		}
	}
	return c
}

// Call implements record.Caller. JSON-RPC errors are returned as *Error.
func (c *Client) Call(ctx context.Context, model, method string, args []any) (json.RawMessage, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("rpc: client endpoint not configured")
	}
	if args == nil {
		args = []any{}
	}
	id := c.nextID.Add(1)
	payload, err := json.Marshal(Request{
		JSONRPC: Version,
		Method:  "call",
		ID:      json.RawMessage(strconv.FormatInt(id, 10)),
		Params:  CallParams{Model: model, Method: method, Args: args},
	})
	if err != nil {
		return nil, fmt.Errorf("rpc: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("rpc: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc: %s.%s: %w", model, method, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, StatusError{Code: res.StatusCode, Err: fmt.Errorf("rpc: %s.%s: unexpected status %d", model, method, res.StatusCode)}
	}

	var envelope Response
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("rpc: decode response: %w", err)
	}
	if envelope.Error != nil {
		return nil, envelope.Error
	}
	if len(envelope.Result) == 0 {
		return json.RawMessage("null"), nil
	}
	return envelope.Result, nil
}
