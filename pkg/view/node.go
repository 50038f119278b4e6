// Package view describes widget output as a tree of nodes so any rendering
// engine (HTML, terminal) can consume it.
package view

// Kind identifies the node type.
type Kind string

const (
	KindConditional Kind = "conditional"
	KindText        Kind = "text"
	KindButton      Kind = "button"
)

// Node is one element of a widget view.
type Node struct {
	Kind Kind `json:"kind"`
	// When gates a conditional node; false hides the node and its children.
	When     bool              `json:"when,omitempty"`
	Class    string            `json:"class,omitempty"`
	Text     string            `json:"text,omitempty"`
	Action   string            `json:"action,omitempty"`
	Disabled bool              `json:"disabled,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []Node            `json:"children,omitempty"`
}

// If builds a conditional node.
func If(when bool, children ...Node) Node {
	return Node{Kind: KindConditional, When: when, Children: children}
}

// Text builds a text node wrapped in an element carrying class.
func Text(class, text string) Node {
	return Node{Kind: KindText, Class: class, Text: text}
}

// Button builds an action button.
func Button(class, label, action string, disabled bool) Node {
	return Node{Kind: KindButton, Class: class, Text: label, Action: action, Disabled: disabled}
}

// WithAttr returns a copy of n with attribute key set.
func (n Node) WithAttr(key, value string) Node {
	attrs := make(map[string]string, len(n.Attrs)+1)
	for k, v := range n.Attrs {
		attrs[k] = v
	}
	attrs[key] = value
	n.Attrs = attrs
	return n
}

// Visible reports whether the node renders anything.
func (n Node) Visible() bool {
	return n.Kind != KindConditional || n.When
}

// Walk visits visible nodes depth first. Returning false from fn skips the
// node's children.
func Walk(n Node, fn func(Node) bool) {
	if !n.Visible() {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, fn)
	}
}

// Find returns the first visible node of kind.
func Find(n Node, kind Kind) (Node, bool) {
	var (
		found Node
		ok    bool
	)
	Walk(n, func(candidate Node) bool {
		if ok {
			return false
		}
		if candidate.Kind == kind {
			found, ok = candidate, true
			return false
		}
		return true
	})
	return found, ok
}
