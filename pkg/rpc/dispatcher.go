package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-authwidget/pkg/record"
)

var (
	// ErrMethodNotFound is returned for a model/method pair nobody registered.
	ErrMethodNotFound = errors.New("rpc: method not found")
	// ErrDuplicateMethod is returned when registering a pair twice.
	ErrDuplicateMethod = errors.New("rpc: method already registered")
	// ErrInvalidParams is returned by methods rejecting their arguments.
	ErrInvalidParams = errors.New("rpc: invalid params")
)

// MethodFunc implements one remote method. args are the positional call
// arguments; the result is encoded as JSON.
type MethodFunc func(ctx context.Context, args []any) (any, error)

// Dispatcher routes calls to registered methods keyed by model and method.
type Dispatcher struct {
	mu      sync.RWMutex
	methods map[string]MethodFunc
}

var _ record.Caller = (*Dispatcher)(nil)

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{methods: make(map[string]MethodFunc)}
}

// Register binds fn to model.method.
func (d *Dispatcher) Register(model, method string, fn MethodFunc) error {
	model = strings.TrimSpace(model)
	method = strings.TrimSpace(method)
	if model == "" || method == "" {
		return errors.New("rpc: model and method are required")
	}
	if fn == nil {
		return fmt.Errorf("rpc: method %s.%s has nil implementation", model, method)
	}

	key := methodKey(model, method)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.methods[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateMethod, key)
	}
	d.methods[key] = fn
	return nil
}

// MustRegister panics if Register fails.
func (d *Dispatcher) MustRegister(model, method string, fn MethodFunc) {
	if err := d.Register(model, method, fn); err != nil {
		panic(err)
	}
}

// Methods lists the registered "model.method" keys in sorted order.
func (d *Dispatcher) Methods() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]string, 0, len(d.methods))
	for key := range d.methods {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Invoke runs model.method with args.
func (d *Dispatcher) Invoke(ctx context.Context, model, method string, args []any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	fn, ok := d.methods[methodKey(model, method)]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, methodKey(model, method))
	}
	return fn(ctx, args)
}

// Call implements record.Caller by invoking the method in process and
// encoding its result.
func (d *Dispatcher) Call(ctx context.Context, model, method string, args []any) (json.RawMessage, error) {
	result, err := d.Invoke(ctx, model, method, args)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("rpc: encode %s result: %w", methodKey(model, method), err)
	}
	return payload, nil
}

// IDArg reads the record id at position idx. It accepts the forms a decoded
// JSON payload or an in-process caller produce: numbers, json.Number and
// [id] lists.
func IDArg(args []any, idx int) (int64, error) {
	if idx < 0 || idx >= len(args) {
		return 0, fmt.Errorf("%w: missing argument %d", ErrInvalidParams, idx)
	}
	id, ok := record.Many2OneID(args[idx])
	if !ok || id <= 0 {
		return 0, fmt.Errorf("%w: argument %d is not a record id", ErrInvalidParams, idx)
	}
	return id, nil
}

func methodKey(model, method string) string {
	return model + "." + method
}
