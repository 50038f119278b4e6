package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func echoID(_ context.Context, args []any) (any, error) {
	id, err := IDArg(args, 0)
	if err != nil {
		return nil, err
	}
	return map[string]any{"id": id}, nil
}

func TestDispatcher_RegisterAndCall(t *testing.T) {
	d := NewDispatcher()
	if err := d.Register("g2p.reg.id", "get_auth_oauth_provider", echoID); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := d.Register("g2p.reg.id", "get_auth_oauth_provider", echoID); !errors.Is(err, ErrDuplicateMethod) {
		t.Fatalf("expected ErrDuplicateMethod, got %v", err)
	}
	if err := d.Register("", "x", echoID); err == nil {
		t.Fatalf("expected error for missing model")
	}
	if err := d.Register("m", "x", nil); err == nil {
		t.Fatalf("expected error for nil method")
	}

	raw, err := d.Call(context.Background(), "g2p.reg.id", "get_auth_oauth_provider", []any{int64(7)})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if string(raw) != `{"id":7}` {
		t.Fatalf("unexpected payload %s", raw)
	}

	if diff := cmp.Diff([]string{"g2p.reg.id.get_auth_oauth_provider"}, d.Methods()); diff != "" {
		t.Fatalf("methods mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatcher_UnknownMethod(t *testing.T) {
	d := NewDispatcher()
	if _, err := d.Call(context.Background(), "res.partner", "read", nil); !errors.Is(err, ErrMethodNotFound) {
		t.Fatalf("expected ErrMethodNotFound, got %v", err)
	}
}

func TestDispatcher_CancelledContext(t *testing.T) {
	d := NewDispatcher()
	d.MustRegister("m", "x", echoID)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Call(ctx, "m", "x", []any{1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIDArg(t *testing.T) {
	cases := []struct {
		name string
		args []any
		want int64
		ok   bool
	}{
		{name: "int64", args: []any{int64(3)}, want: 3, ok: true},
		{name: "float", args: []any{float64(4)}, want: 4, ok: true},
		{name: "json number", args: []any{json.Number("5")}, want: 5, ok: true},
		{name: "id list", args: []any{[]any{float64(6)}}, want: 6, ok: true},
		{name: "missing", args: nil},
		{name: "zero", args: []any{0}},
		{name: "string", args: []any{"7"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := IDArg(tc.args, 0)
			if !tc.ok {
				if !errors.Is(err, ErrInvalidParams) {
					t.Fatalf("expected ErrInvalidParams, got %v", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("want %d, got %d (%v)", tc.want, got, err)
			}
		})
	}
}
