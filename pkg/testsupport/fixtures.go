package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-authwidget/pkg/popup"
	"github.com/goliatone/go-authwidget/pkg/record"
)

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Call is one recorded remote call.
type Call struct {
	Model  string
	Method string
	Args   []any
}

// ScriptedCaller is a record.Caller returning a fixed result. When Gate is
// set, calls block until it is closed or the context ends.
type ScriptedCaller struct {
	Result any
	Err    error
	Gate   chan struct{}

	mu    sync.Mutex
	calls []Call
}

var _ record.Caller = (*ScriptedCaller)(nil)

// Call implements record.Caller.
func (c *ScriptedCaller) Call(ctx context.Context, model, method string, args []any) (json.RawMessage, error) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Model: model, Method: method, Args: append([]any(nil), args...)})
	c.mu.Unlock()

	if c.Gate != nil {
		select {
		case <-c.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.Err != nil {
		return nil, c.Err
	}
	if raw, ok := c.Result.(json.RawMessage); ok {
		return raw, nil
	}
	payload, err := json.Marshal(c.Result)
	if err != nil {
		return nil, errors.Join(errors.New("testsupport: marshal scripted result"), err)
	}
	return payload, nil
}

// Calls returns the recorded calls.
func (c *ScriptedCaller) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// RecordingOpener records popup requests instead of opening windows.
type RecordingOpener struct {
	Err error

	mu       sync.Mutex
	requests []popup.Request
}

var _ popup.Opener = (*RecordingOpener)(nil)

// Open implements popup.Opener.
func (o *RecordingOpener) Open(url, target, features string) error {
	if o.Err != nil {
		return o.Err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, popup.Request{URL: url, Target: target, Features: features})
	return nil
}

// Requests returns the recorded popup requests.
func (o *RecordingOpener) Requests() []popup.Request {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]popup.Request(nil), o.requests...)
}
