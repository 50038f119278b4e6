package widgets

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-authwidget/pkg/record"
	"github.com/goliatone/go-authwidget/pkg/view"
)

var (
	// ErrDuplicateWidget is returned when a key is registered twice.
	ErrDuplicateWidget = errors.New("widgets: widget already registered")
	// ErrUnknownWidget is returned for keys missing from the registry.
	ErrUnknownWidget = errors.New("widgets: widget not registered")
	// ErrUnsupportedField is returned when a widget is bound to a field type
	// it does not declare.
	ErrUnsupportedField = errors.New("widgets: field type not supported")
)

// Widget is a live widget instance bound to one record field.
type Widget interface {
	View() view.Node
	Close()
}

// Props carries what the host hands a widget when binding it into a form
// view.
type Props struct {
	Record    record.Record
	Caller    record.Caller
	FieldName string
	// Options are the field options declared on the view (e.g. CSS classes).
	Options map[string]any
	Locale  string
}

// Option returns the string form of a view option.
func (p Props) Option(name string) string {
	if p.Options == nil {
		return ""
	}
	value, ok := p.Options[name]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

// Factory instantiates a widget for props.
type Factory func(ctx context.Context, props Props) (Widget, error)

// Script describes JavaScript a widget needs on the page, emitted once per
// render.
type Script struct {
	Src    string
	Inline string
	Module bool
}

// Descriptor is what a widget registers under its key.
type Descriptor struct {
	Key            string
	DisplayName    string
	SupportedTypes []record.FieldType
	Factory        Factory
	Scripts        []Script
}

// Supports reports whether the descriptor declares fieldType.
func (d Descriptor) Supports(fieldType record.FieldType) bool {
	return slices.Contains(d.SupportedTypes, fieldType)
}

// Registry maps widget keys to descriptors. Registration is explicit; nothing
// registers itself on import.
type Registry struct {
	mu      sync.RWMutex
	widgets map[string]Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{widgets: make(map[string]Descriptor)}
}

// Register adds descriptor. A key can only be registered once.
func (r *Registry) Register(descriptor Descriptor) error {
	if r == nil {
		return fmt.Errorf("widgets: registry is nil")
	}
	key := strings.TrimSpace(descriptor.Key)
	if key == "" {
		return fmt.Errorf("widgets: widget key is required")
	}
	if descriptor.Factory == nil {
		return fmt.Errorf("widgets: factory for %q is nil", key)
	}
	if len(descriptor.SupportedTypes) == 0 {
		return fmt.Errorf("widgets: %q declares no supported field types", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.widgets[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateWidget, key)
	}
	descriptor.Key = key
	r.widgets[key] = cloneDescriptor(descriptor)
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(descriptor Descriptor) {
	if err := r.Register(descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches a copy of the descriptor registered under key.
func (r *Registry) Descriptor(key string) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.widgets[strings.TrimSpace(key)]
	if !ok {
		return Descriptor{}, false
	}
	return cloneDescriptor(descriptor), true
}

// Keys returns the registered keys, sorted.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.widgets))
	for key := range r.widgets {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Supports reports whether the widget under key may bind to fieldType.
func (r *Registry) Supports(key string, fieldType record.FieldType) bool {
	descriptor, ok := r.Descriptor(key)
	return ok && descriptor.Supports(fieldType)
}

// Instantiate builds the widget registered under key for props. When the
// record schema knows props.FieldName, its type must be supported.
func (r *Registry) Instantiate(ctx context.Context, key string, props Props) (Widget, error) {
	descriptor, ok := r.Descriptor(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWidget, key)
	}
	if props.FieldName != "" {
		if meta, known := props.Record.Field(props.FieldName); known && !descriptor.Supports(meta.Type) {
			return nil, fmt.Errorf("%w: %q cannot bind %s field %q", ErrUnsupportedField, key, meta.Type, props.FieldName)
		}
	}
	widget, err := descriptor.Factory(ctx, props)
	if err != nil {
		return nil, fmt.Errorf("widgets: instantiate %q: %w", key, err)
	}
	return widget, nil
}

// Scripts aggregates the scripts of keys, deduplicated in first seen order.
func (r *Registry) Scripts(keys []string) []Script {
	if r == nil || len(keys) == 0 {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []Script
	for _, key := range keys {
		descriptor, ok := r.widgets[strings.TrimSpace(key)]
		if !ok {
			continue
		}
		for _, script := range descriptor.Scripts {
			id := scriptKey(script)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, script)
		}
	}
	return out
}

func cloneDescriptor(src Descriptor) Descriptor {
	return Descriptor{
		Key:            src.Key,
		DisplayName:    src.DisplayName,
		SupportedTypes: slices.Clone(src.SupportedTypes),
		Factory:        src.Factory,
		Scripts:        slices.Clone(src.Scripts),
	}
}

func scriptKey(script Script) string {
	if script.Src != "" {
		return "src:" + script.Src
	}
	return "inline:" + script.Inline
}
