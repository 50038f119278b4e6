// Package authstatus implements the registry id authentication status field
// widget: a status label plus an "Authenticate" button that opens the linked
// OAuth provider in a popup.
package authstatus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-authwidget/pkg/i18n"
	"github.com/goliatone/go-authwidget/pkg/popup"
	"github.com/goliatone/go-authwidget/pkg/provider"
	"github.com/goliatone/go-authwidget/pkg/record"
	"github.com/goliatone/go-authwidget/pkg/view"
)

// ActionAuthenticate is the action name of the button node.
const ActionAuthenticate = "authenticate"

var (
	// ErrHidden is returned when acting on a widget whose record has no
	// provider.
	ErrHidden = errors.New("authstatus: widget is hidden")
	// ErrProviderPending is returned when the provider fetch has not
	// completed yet.
	ErrProviderPending = errors.New("authstatus: provider not resolved yet")
	// ErrProviderUnavailable is returned when the provider fetch failed.
	ErrProviderUnavailable = errors.New("authstatus: provider unavailable")
	// ErrNoOpener is returned when no popup opener is configured.
	ErrNoOpener = errors.New("authstatus: popup opener not configured")
)

// State is the lifecycle of the provider fetch.
type State int

const (
	StatePending State = iota
	StateResolved
	StateFailed
	// StateSkipped means the widget is hidden and never fetched.
	StateSkipped
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	case StateSkipped:
		return "skipped"
	}
	return "unknown"
}

// Widget is one bound instance. Visibility and the label table are fixed at
// setup; the provider descriptor is set once when the fetch completes.
type Widget struct {
	rec         record.Record
	opts        Options
	log         *zap.Logger
	visible     bool
	labels      map[string]string
	statusClass string
	buttonClass string

	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.RWMutex
	state    State
	provider provider.Descriptor
	err      error
}

// New sets the widget up for rec: it evaluates visibility, builds the status
// label table and, for visible widgets, starts the provider fetch through
// caller. The fetch runs until it completes, ctx ends or Close is called.
func New(ctx context.Context, rec record.Record, caller record.Caller, fns ...OptionFn) *Widget {
	opts := NewOptions(fns...)
	statusClass, buttonClass := resolveClasses(opts)

	w := &Widget{
		rec:         rec,
		opts:        opts,
		log:         opts.Logger.With(zap.String("model", rec.ResModel), zap.Int64("res_id", rec.ResID)),
		visible:     rec.Truthy(opts.ProviderField),
		labels:      rec.SelectionMap(opts.StatusField),
		statusClass: statusClass,
		buttonClass: buttonClass,
		done:        make(chan struct{}),
	}

	if !w.visible {
		w.finish(StateSkipped, provider.Descriptor{}, nil)
		return w
	}
	if caller == nil {
		w.finish(StateFailed, provider.Descriptor{}, errors.New("authstatus: no remote caller"))
		return w
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	go w.fetch(fetchCtx, caller)
	return w
}

func (w *Widget) fetch(ctx context.Context, caller record.Caller) {
	defer w.cancel()

	w.log.Debug("fetching auth provider", zap.String("method", w.opts.Method))
	raw, err := caller.Call(ctx, w.rec.ResModel, w.opts.Method, []any{w.rec.ResID})
	if err != nil {
		w.log.Warn("auth provider fetch failed", zap.Error(err))
		w.finish(StateFailed, provider.Descriptor{}, err)
		return
	}

	desc, err := decodeDescriptor(raw)
	if err != nil {
		w.log.Warn("auth provider response rejected", zap.Error(err))
		w.finish(StateFailed, provider.Descriptor{}, err)
		return
	}
	w.log.Debug("auth provider resolved", zap.Int64("provider_id", desc.ID))
	w.finish(StateResolved, desc, nil)
}

func decodeDescriptor(raw json.RawMessage) (provider.Descriptor, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("false")) {
		return provider.Descriptor{}, errors.New("authstatus: empty provider response")
	}
	var desc provider.Descriptor
	if err := json.Unmarshal(trimmed, &desc); err != nil {
		return provider.Descriptor{}, fmt.Errorf("authstatus: decode provider: %w", err)
	}
	if !desc.Valid() {
		return provider.Descriptor{}, errors.New("authstatus: provider has no auth_link")
	}
	return desc, nil
}

func (w *Widget) finish(state State, desc provider.Descriptor, err error) {
	w.mu.Lock()
	if w.state != StatePending {
		w.mu.Unlock()
		return
	}
	w.state = state
	w.provider = desc
	w.err = err
	w.mu.Unlock()
	close(w.done)
}

// Visible reports whether the widget renders anything.
func (w *Widget) Visible() bool {
	return w.visible
}

// State returns the current fetch state.
func (w *Widget) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// Ready is closed once the fetch completes, fails or is skipped.
func (w *Widget) Ready() <-chan struct{} {
	return w.done
}

// Wait blocks until the fetch settles or ctx ends. It returns the fetch error
// for failed widgets and nil for resolved or hidden ones.
func (w *Widget) Wait(ctx context.Context) error {
	select {
	case <-w.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.state == StateFailed {
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, w.err)
	}
	return nil
}

// Provider returns the cached descriptor once resolved.
func (w *Widget) Provider() (provider.Descriptor, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.provider, w.state == StateResolved
}

// RenderStatus returns the translated label of the record's current status
// code, or "" when the code is not part of the selection.
func (w *Widget) RenderStatus() string {
	code := w.rec.StringValue(w.opts.StatusField)
	label, ok := w.labels[code]
	if !ok {
		return ""
	}
	return w.translate(label)
}

// AuthenticateButtonClick opens one popup at the provider auth link, sized
// for screen. Nothing opens while the provider is pending or after it failed.
func (w *Widget) AuthenticateButtonClick(screen popup.Screen) error {
	if !w.visible {
		return ErrHidden
	}

	w.mu.RLock()
	state, desc, fetchErr := w.state, w.provider, w.err
	w.mu.RUnlock()

	switch state {
	case StatePending:
		return ErrProviderPending
	case StateFailed:
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, fetchErr)
	}

	if w.opts.Opener == nil {
		return ErrNoOpener
	}
	features := popup.ForScreen(screen).String()
	if err := w.opts.Opener.Open(desc.AuthLink, "", features); err != nil {
		return fmt.Errorf("authstatus: open popup: %w", err)
	}
	w.log.Info("authentication popup opened", zap.Int64("provider_id", desc.ID))
	return nil
}

// View describes the widget: a conditional wrapping the status text and the
// authenticate button. The button stays disabled until the provider resolves.
func (w *Widget) View() view.Node {
	state := w.State()
	button := view.Button(w.buttonClass, w.translate(w.opts.ButtonLabel), ActionAuthenticate, state != StateResolved).
		WithAttr("data-state", state.String())
	if desc, ok := w.Provider(); ok {
		button = button.WithAttr("data-auth-link", desc.AuthLink)
	}
	return view.If(w.visible,
		view.Text(w.statusClass, w.RenderStatus()),
		button,
	)
}

// Close cancels an in-flight fetch. A cancelled fetch leaves the widget in
// StateFailed.
func (w *Widget) Close() {
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *Widget) translate(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	return i18n.Translate(w.opts.Translator, w.opts.Locale, text, text, w.opts.OnMissing)
}
