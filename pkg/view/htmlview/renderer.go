// Package htmlview renders view node trees to HTML using pongo2 templates.
package htmlview

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-authwidget/pkg/view"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

const (
	templateText   = "text.tpl"
	templateButton = "button.tpl"
	templateWidget = "widget.tpl"
	templatePage   = "page.tpl"
)

var (
	classTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_:/.\-\[\]]+$`)
	attrNamePattern   = regexp.MustCompile(`^(data|aria)-[a-z0-9\-]+$`)
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templates fs.FS
	policy    *bluemonday.Policy
}

// WithTemplates overrides the embedded templates. The filesystem must contain
// text.tpl, button.tpl, widget.tpl and page.tpl at its root.
func WithTemplates(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithPolicy replaces the bluemonday policy applied to labels.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// Renderer turns view nodes into HTML fragments.
type Renderer struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	policy    *bluemonday.Policy
}

// New constructs a renderer backed by the embedded templates unless
// WithTemplates is supplied.
func New(options ...Option) (*Renderer, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.templates == nil {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, fmt.Errorf("htmlview: open embedded templates: %w", err)
		}
		cfg.templates = sub
	}
	if cfg.policy == nil {
		cfg.policy = bluemonday.StrictPolicy()
	}

	return &Renderer{
		set:       pongo2.NewSet("authwidget", pongo2.NewFSLoader(cfg.templates)),
		templates: make(map[string]*pongo2.Template),
		policy:    cfg.policy,
	}, nil
}

// Render returns the HTML for node. Hidden conditionals render "".
func (r *Renderer) Render(node view.Node) (string, error) {
	if r == nil || r.set == nil {
		return "", errors.New("htmlview: renderer is nil")
	}
	var builder strings.Builder
	if err := r.renderNode(&builder, node); err != nil {
		return "", err
	}
	return builder.String(), nil
}

// RenderWidget wraps the rendered node in the field widget container tagged
// with key. A node that renders nothing yields "".
func (r *Renderer) RenderWidget(key, class string, node view.Node) (string, error) {
	body, err := r.Render(node)
	if err != nil {
		return "", err
	}
	if body == "" {
		return "", nil
	}
	return r.execute(templateWidget, pongo2.Context{
		"key":   key,
		"class": SanitizeClassList(class),
		"body":  body,
	})
}

// PageField is one rendered field of a form page.
type PageField struct {
	Name  string
	Label string
	HTML  string
}

// Script is a script tag emitted at the end of a page.
type Script struct {
	Src    string
	Inline string
	Module bool
}

// Page is a standalone form document.
type Page struct {
	Title   string
	Lang    string
	Model   string
	ResID   int64
	Fields  []PageField
	Scripts []Script
}

// RenderPage renders a complete HTML document around already rendered field
// fragments. Field HTML and inline scripts are emitted verbatim.
func (r *Renderer) RenderPage(page Page) (string, error) {
	if r == nil || r.set == nil {
		return "", errors.New("htmlview: renderer is nil")
	}
	lang := strings.TrimSpace(page.Lang)
	if lang == "" {
		lang = "en"
	}
	return r.execute(templatePage, pongo2.Context{
		"title":   page.Title,
		"lang":    lang,
		"model":   page.Model,
		"res_id":  page.ResID,
		"fields":  page.Fields,
		"scripts": page.Scripts,
	})
}

func (r *Renderer) renderNode(builder *strings.Builder, node view.Node) error {
	if !node.Visible() {
		return nil
	}

	switch node.Kind {
	case view.KindConditional:
		return r.renderChildren(builder, node.Children)
	case view.KindText:
		out, err := r.execute(templateText, pongo2.Context{
			"class": SanitizeClassList(node.Class),
			"text":  r.sanitizeLabel(node.Text),
		})
		if err != nil {
			return err
		}
		builder.WriteString(out)
	case view.KindButton:
		out, err := r.execute(templateButton, pongo2.Context{
			"class":    SanitizeClassList(node.Class),
			"label":    r.sanitizeLabel(node.Text),
			"action":   node.Action,
			"disabled": node.Disabled,
			"attrs":    sortedAttrs(node.Attrs),
		})
		if err != nil {
			return err
		}
		builder.WriteString(out)
	default:
		return fmt.Errorf("htmlview: unsupported node kind %q", node.Kind)
	}
	return r.renderChildren(builder, childrenOf(node))
}

func (r *Renderer) renderChildren(builder *strings.Builder, children []view.Node) error {
	for _, child := range children {
		if err := r.renderNode(builder, child); err != nil {
			return err
		}
	}
	return nil
}

// childrenOf returns the children rendered after a leaf node; conditionals
// handle their own children.
func childrenOf(node view.Node) []view.Node {
	if node.Kind == view.KindConditional {
		return nil
	}
	return node.Children
}

func (r *Renderer) execute(name string, data pongo2.Context) (string, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return "", err
	}
	r.mu.RLock()
	out, err := tmpl.Execute(data)
	r.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("htmlview: execute %s: %w", name, err)
	}
	return strings.TrimSpace(out), nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("htmlview: load template %q: %w", name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}

// sanitizeLabel strips markup from text. The policy output is already HTML
// escaped and is emitted with |safe.
func (r *Renderer) sanitizeLabel(text string) string {
	return strings.TrimSpace(r.policy.Sanitize(text))
}

type attr struct {
	Name  string
	Value string
}

func sortedAttrs(attrs map[string]string) []attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]attr, 0, len(attrs))
	for name, value := range attrs {
		name = strings.ToLower(strings.TrimSpace(name))
		if !attrNamePattern.MatchString(name) {
			continue
		}
		out = append(out, attr{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SanitizeClassList keeps class tokens made of safe characters.
func SanitizeClassList(value string) string {
	tokens := strings.Fields(value)
	if len(tokens) == 0 {
		return ""
	}
	keep := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if classTokenPattern.MatchString(token) {
			keep = append(keep, token)
		}
	}
	return strings.Join(keep, " ")
}
