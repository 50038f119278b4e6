package record

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldType names the host field kinds a widget can be bound to.
type FieldType string

const (
	FieldTypeSelection FieldType = "selection"
	FieldTypeMany2One  FieldType = "many2one"
	FieldTypeChar      FieldType = "char"
	FieldTypeBoolean   FieldType = "boolean"
	FieldTypeInteger   FieldType = "integer"
)

// SelectionOption is one (code, label) pair of a selection field. Fixtures may
// spell it either as a two element list or as an object.
type SelectionOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// FieldMeta is the schema entry the host exposes for a field.
type FieldMeta struct {
	Name      string            `json:"name,omitempty" yaml:"name,omitempty"`
	Type      FieldType         `json:"type" yaml:"type"`
	String    string            `json:"string,omitempty" yaml:"string,omitempty"`
	Relation  string            `json:"relation,omitempty" yaml:"relation,omitempty"`
	Selection []SelectionOption `json:"selection,omitempty" yaml:"selection,omitempty"`
}

// Record is the host-owned business object bound to a form view. Widgets keep
// a reference for their lifetime and never mutate it.
type Record struct {
	Data     map[string]any       `json:"data" yaml:"data"`
	Fields   map[string]FieldMeta `json:"fields" yaml:"fields"`
	ResModel string               `json:"resModel" yaml:"resModel"`
	ResID    int64                `json:"resId" yaml:"resId"`
}

// Caller is the remote-procedure capability the host injects. Implementations
// return the raw JSON result of model.method(args...).
type Caller interface {
	Call(ctx context.Context, model, method string, args []any) (json.RawMessage, error)
}

// CallerFunc adapts a function to the Caller interface.
type CallerFunc func(ctx context.Context, model, method string, args []any) (json.RawMessage, error)

// Call implements Caller.
func (fn CallerFunc) Call(ctx context.Context, model, method string, args []any) (json.RawMessage, error) {
	return fn(ctx, model, method, args)
}

// Value returns the raw value stored for name.
func (r Record) Value(name string) (any, bool) {
	if r.Data == nil {
		return nil, false
	}
	value, ok := r.Data[name]
	return value, ok
}

// Truthy reports whether the value stored for name is set in the host sense.
func (r Record) Truthy(name string) bool {
	value, _ := r.Value(name)
	return Truthy(value)
}

// Field returns the schema entry for name.
func (r Record) Field(name string) (FieldMeta, bool) {
	if r.Fields == nil {
		return FieldMeta{}, false
	}
	meta, ok := r.Fields[name]
	if ok && meta.Name == "" {
		meta.Name = name
	}
	return meta, ok
}

// SelectionMap builds the code->label table for a selection field. Later
// duplicates overwrite earlier ones.
func (r Record) SelectionMap(name string) map[string]string {
	meta, ok := r.Field(name)
	if !ok || len(meta.Selection) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(meta.Selection))
	for _, option := range meta.Selection {
		out[option.Value] = option.Label
	}
	return out
}

// StringValue renders a scalar field value as a selection code. Non scalar
// values and unset fields yield "".
func (r Record) StringValue(name string) string {
	value, ok := r.Value(name)
	if !ok {
		return ""
	}
	return scalarString(value)
}

// Many2OneID extracts the id of a many2one value, accepting a bare id, an
// [id, display_name] pair or an object carrying "id".
func Many2OneID(value any) (int64, bool) {
	switch v := value.(type) {
	case []any:
		if len(v) == 0 {
			return 0, false
		}
		return Many2OneID(v[0])
	case map[string]any:
		return Many2OneID(v["id"])
	case float64:
		return int64(v), v != 0
	case int:
		return int64(v), v != 0
	case int64:
		return v, v != 0
	case json.Number:
		id, err := v.Int64()
		return id, err == nil && id != 0
	}
	return 0, false
}

// Truthy mirrors the host's notion of a set value: nil, false, zero numbers,
// empty strings, empty lists and many2one pairs without an id are unset.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case float32:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case int32:
		return v != 0
	case json.Number:
		return v.String() != "0" && v.String() != ""
	case []any:
		if len(v) == 0 {
			return false
		}
		_, ok := Many2OneID(v)
		return ok
	case map[string]any:
		if len(v) == 0 {
			return false
		}
		if id, present := v["id"]; present {
			return Truthy(id)
		}
		return true
	}
	return true
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return ""
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprint(v)
	case int, int64, int32, json.Number:
		return fmt.Sprint(v)
	}
	return ""
}

// UnmarshalJSON accepts ["code", "Label"] pairs as well as objects.
func (o *SelectionOption) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var pair []any
		if err := json.Unmarshal(data, &pair); err != nil {
			return fmt.Errorf("record: decode selection pair: %w", err)
		}
		return o.fromPair(pair)
	}
	type plain SelectionOption
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("record: decode selection option: %w", err)
	}
	*o = SelectionOption(out)
	return nil
}

// UnmarshalYAML accepts [code, Label] sequences as well as mappings.
func (o *SelectionOption) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var pair []any
		if err := node.Decode(&pair); err != nil {
			return fmt.Errorf("record: decode selection pair: %w", err)
		}
		return o.fromPair(pair)
	}
	type plain SelectionOption
	var out plain
	if err := node.Decode(&out); err != nil {
		return fmt.Errorf("record: decode selection option: %w", err)
	}
	*o = SelectionOption(out)
	return nil
}

func (o *SelectionOption) fromPair(pair []any) error {
	if len(pair) != 2 {
		return fmt.Errorf("record: selection pair must have 2 entries, got %d", len(pair))
	}
	o.Value = fmt.Sprint(pair[0])
	o.Label = fmt.Sprint(pair[1])
	return nil
}
