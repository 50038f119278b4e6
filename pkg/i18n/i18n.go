// Package i18n translates widget labels. Keys are the source strings, the way
// the host translates selection labels and button captions.
package i18n

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingTranslator is passed to MissingHandler when no translator is
	// configured.
	ErrMissingTranslator = errors.New("i18n: translator not configured")
	// ErrMissingTranslation is returned when a key has no message for a locale.
	ErrMissingTranslation = errors.New("i18n: missing translation")
)

// Translator resolves a message for locale/key.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingHandler decides what to render when a translation is unavailable.
type MissingHandler func(locale, key, fallback string, err error) string

// Translate resolves key through t, falling back to fallback (or the key)
// when the translator is absent or fails.
func Translate(t Translator, locale, key, fallback string, onMissing MissingHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, fallback, ErrMissingTranslator)
		}
		return defaultMessage(key, fallback)
	}

	msg, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(msg) != "" {
		return msg
	}
	if onMissing != nil {
		return onMissing(locale, key, fallback, err)
	}
	return defaultMessage(key, fallback)
}

func defaultMessage(key, fallback string) string {
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

// MapTranslator serves messages from an in-memory catalog keyed by locale
// then key. Printf style args are applied when present.
type MapTranslator struct {
	mu       sync.RWMutex
	messages map[string]map[string]string
}

// NewMapTranslator copies catalog into a new translator.
func NewMapTranslator(catalog map[string]map[string]string) *MapTranslator {
	t := &MapTranslator{messages: make(map[string]map[string]string)}
	for locale, messages := range catalog {
		t.Add(locale, messages)
	}
	return t
}

// Add merges messages into locale.
func (t *MapTranslator) Add(locale string, messages map[string]string) {
	locale = normalizeLocale(locale)
	if locale == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.messages[locale] == nil {
		t.messages[locale] = make(map[string]string, len(messages))
	}
	for key, msg := range messages {
		t.messages[locale][key] = msg
	}
}

// Translate implements Translator. A regional locale ("fr_FR") falls back to
// its language ("fr").
func (t *MapTranslator) Translate(locale, key string, args ...any) (string, error) {
	if t == nil {
		return "", ErrMissingTranslator
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, candidate := range localeChain(locale) {
		if msg, ok := t.messages[candidate][key]; ok {
			if len(args) > 0 {
				return fmt.Sprintf(msg, args...), nil
			}
			return msg, nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrMissingTranslation, locale, key)
}

type catalogFile struct {
	Translations map[string]map[string]string `json:"translations" yaml:"translations"`
}

// LoadFS reads JSON/YAML files with a top-level "translations" map.
func LoadFS(fsys fs.FS) (*MapTranslator, error) {
	t := NewMapTranslator(nil)
	if fsys == nil {
		return t, nil
	}
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".yaml", ".yml":
		default:
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", path, err)
		}
		var doc catalogFile
		if len(strings.TrimSpace(string(data))) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
				return fmt.Errorf("i18n: parse %s: invalid JSON or YAML", path)
			}
		}
		for locale, messages := range doc.Translations {
			t.Add(locale, messages)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func normalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(locale)), "-", "_")
}

func localeChain(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return nil
	}
	if lang, _, ok := strings.Cut(locale, "_"); ok && lang != "" {
		return []string{locale, lang}
	}
	return []string{locale}
}
