package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a model/id pair is unknown to the store.
var ErrNotFound = errors.New("record: not found")

// Store keeps record fixtures grouped by model. It backs the reference host
// and the provider resolver; it is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	models map[string]*modelEntry
}

type modelEntry struct {
	fields  map[string]FieldMeta
	records map[int64]map[string]any
}

type storeFile struct {
	Models map[string]modelFile `json:"models" yaml:"models"`
}

type modelFile struct {
	Fields  map[string]FieldMeta `json:"fields" yaml:"fields"`
	Records []recordFile         `json:"records" yaml:"records"`
}

type recordFile struct {
	ID   int64          `json:"id" yaml:"id"`
	Data map[string]any `json:"data" yaml:"data"`
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{models: make(map[string]*modelEntry)}
}

// LoadFS parses every JSON/YAML file carrying a top-level "models" key. Files
// without it are ignored so record fixtures can share a directory with other
// catalogs.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := NewStore()
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isFixtureFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("record: read %s: %w", path, err)
		}
		doc, err := parseStoreFile(data, path)
		if err != nil {
			return err
		}
		for model, raw := range doc.Models {
			if err := store.define(model, raw, path); err != nil {
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

// DefineModel registers (or extends) the schema of a model.
func (s *Store) DefineModel(model string, fields map[string]FieldMeta) error {
	return s.define(model, modelFile{Fields: fields}, "")
}

// Put stores data for model/id, replacing any previous values.
func (s *Store) Put(model string, id int64, data map[string]any) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return fmt.Errorf("record: model is required")
	}
	if id <= 0 {
		return fmt.Errorf("record: id must be positive, got %d", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.entry(model)
	entry.records[id] = cloneData(data)
	return nil
}

// Get returns the record for model/id with a copy of its data and schema.
func (s *Store) Get(model string, id int64) (Record, error) {
	if s == nil {
		return Record{}, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.models[strings.TrimSpace(model)]
	if !ok {
		return Record{}, fmt.Errorf("%w: model %q", ErrNotFound, model)
	}
	data, ok := entry.records[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s(%d)", ErrNotFound, model, id)
	}
	fields := make(map[string]FieldMeta, len(entry.fields))
	for name, meta := range entry.fields {
		fields[name] = meta
	}
	return Record{
		Data:     cloneData(data),
		Fields:   fields,
		ResModel: model,
		ResID:    id,
	}, nil
}

// IDs returns the sorted record ids stored for model.
func (s *Store) IDs(model string) []int64 {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.models[model]
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(entry.records))
	for id := range entry.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Models returns the sorted model names known to the store.
func (s *Store) Models() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.models))
	for name := range s.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) define(model string, raw modelFile, source string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		if source != "" {
			return fmt.Errorf("record: file %s defines an empty model name", source)
		}
		return fmt.Errorf("record: model is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entry(model)
	for name, meta := range raw.Fields {
		if meta.Name == "" {
			meta.Name = name
		}
		entry.fields[name] = meta
	}
	for _, rec := range raw.Records {
		if rec.ID <= 0 {
			return fmt.Errorf("record: file %s: %s record id must be positive", source, model)
		}
		if _, exists := entry.records[rec.ID]; exists {
			return fmt.Errorf("record: duplicate record %s(%d) (file %s)", model, rec.ID, source)
		}
		entry.records[rec.ID] = cloneData(rec.Data)
	}
	return nil
}

func (s *Store) entry(model string) *modelEntry {
	entry, ok := s.models[model]
	if !ok {
		entry = &modelEntry{
			fields:  make(map[string]FieldMeta),
			records: make(map[int64]map[string]any),
		}
		s.models[model] = entry
	}
	return entry
}

func parseStoreFile(data []byte, source string) (storeFile, error) {
	var doc storeFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return storeFile{}, fmt.Errorf("record: parse %s: invalid JSON or YAML", source)
}

func isFixtureFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func cloneData(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
