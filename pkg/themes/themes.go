// Package themes loads go-theme manifests from disk and selects the active
// theme and variant for widgets.
package themes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownTheme is returned when selecting a theme nobody loaded.
	ErrUnknownTheme = errors.New("themes: unknown theme")
	// ErrUnknownVariant is returned when a theme lacks the requested variant.
	ErrUnknownVariant = errors.New("themes: unknown variant")
)

type manifestRegistry interface {
	Register(manifest *theme.Manifest) error
}

// Catalog keeps loaded manifests and implements theme.ThemeSelector.
type Catalog struct {
	mu        sync.RWMutex
	registry  manifestRegistry
	manifests map[string]*theme.Manifest
	// DefaultTheme is used when Select receives an empty name.
	DefaultTheme string
}

var _ theme.ThemeSelector = (*Catalog)(nil)

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		registry:  theme.NewRegistry(),
		manifests: make(map[string]*theme.Manifest),
	}
}

// Register validates manifest through the go-theme registry and adds it. The
// first registered theme becomes the default.
func (c *Catalog) Register(manifest *theme.Manifest) error {
	if manifest == nil {
		return errors.New("themes: manifest is nil")
	}
	name := strings.TrimSpace(manifest.Name)
	if name == "" || strings.TrimSpace(manifest.Version) == "" {
		return errors.New("themes: manifest requires name and version")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.manifests[name]; exists {
		return fmt.Errorf("themes: theme %q already registered", name)
	}
	if err := c.registry.Register(manifest); err != nil {
		return fmt.Errorf("themes: register %q: %w", name, err)
	}
	c.manifests[name] = manifest
	if c.DefaultTheme == "" {
		c.DefaultTheme = name
	}
	return nil
}

// Names lists registered themes in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.manifests))
	for name := range c.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select implements theme.ThemeSelector. An empty name selects the default
// theme; an empty variant selects the base manifest.
func (c *Catalog) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = c.DefaultTheme
	}
	manifest, ok := c.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	variant = strings.TrimSpace(variant)
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %q in theme %q", ErrUnknownVariant, variant, name)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// LoadFile reads one JSON or YAML manifest from fsys.
func LoadFile(fsys fs.FS, path string) (*theme.Manifest, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("themes: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a manifest. YAML input is normalized to JSON first so both
// formats share the manifest's JSON field names.
func Parse(data []byte, source string) (*theme.Manifest, error) {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("themes: parse %s: %w", source, err)
		}
		normalized, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("themes: normalize %s: %w", source, err)
		}
		data = normalized
	}
	var manifest theme.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("themes: parse %s: %w", source, err)
	}
	return &manifest, nil
}

// Load registers the manifests at paths into a new catalog.
func Load(fsys fs.FS, paths ...string) (*Catalog, error) {
	catalog := NewCatalog()
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		manifest, err := LoadFile(fsys, path)
		if err != nil {
			return nil, err
		}
		if err := catalog.Register(manifest); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}
