package provider

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store holds provider configurations keyed by id. It is immutable after
// construction and safe for concurrent readers.
type Store struct {
	providers map[int64]Config
}

type catalogFile struct {
	Providers []Config `json:"providers" yaml:"providers"`
}

// NewStore builds a store from configs, rejecting duplicate or non-positive
// ids.
func NewStore(configs ...Config) (*Store, error) {
	store := &Store{providers: make(map[int64]Config, len(configs))}
	for _, cfg := range configs {
		if err := store.add(cfg, ""); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// LoadFS parses JSON/YAML files carrying a top-level "providers" list.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{providers: make(map[int64]Config)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isCatalogFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("provider: read %s: %w", path, err)
		}
		doc, err := parseCatalog(data, path)
		if err != nil {
			return err
		}
		for _, cfg := range doc.Providers {
			if err := store.add(cfg, path); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Get returns the configuration for id, enabled or not.
func (s *Store) Get(id int64) (Config, bool) {
	if s == nil {
		return Config{}, false
	}
	cfg, ok := s.providers[id]
	return cfg, ok
}

// Enabled returns the enabled providers ordered by id.
func (s *Store) Enabled() []Config {
	if s == nil {
		return nil
	}
	out := make([]Config, 0, len(s.providers))
	for _, cfg := range s.providers {
		if cfg.Enabled {
			out = append(out, cfg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) add(cfg Config, source string) error {
	if cfg.ID <= 0 {
		return fmt.Errorf("provider: %q has invalid id %d (file %s)", cfg.Name, cfg.ID, source)
	}
	if _, exists := s.providers[cfg.ID]; exists {
		return fmt.Errorf("provider: duplicate provider id %d (file %s)", cfg.ID, source)
	}
	if cfg.Flow == "" {
		cfg.Flow = FlowAccessToken
	}
	if strings.TrimSpace(cfg.ValidateResponseMapping) == "" {
		cfg.ValidateResponseMapping = DefaultValidateResponseMapping
	}
	s.providers[cfg.ID] = cfg
	return nil
}

func parseCatalog(data []byte, source string) (catalogFile, error) {
	var doc catalogFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return catalogFile{}, fmt.Errorf("provider: parse %s: invalid JSON or YAML", source)
}

func isCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
