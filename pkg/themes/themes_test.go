package themes

import (
	"errors"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"
)

func TestLoad_JSONAndYAML(t *testing.T) {
	files := fstest.MapFS{
		"acme.json": &fstest.MapFile{Data: []byte(`{
			"name": "acme",
			"version": "1.0.0",
			"tokens": {"authstatus.status.class": "badge"},
			"variants": {"dark": {"tokens": {"authstatus.status.class": "badge badge-dark"}}}
		}`)},
		"plain.yaml": &fstest.MapFile{Data: []byte("name: plain\nversion: 0.1.0\ntokens:\n  authstatus.button.class: btn\n")},
	}

	catalog, err := Load(files, "acme.json", "plain.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if names := catalog.Names(); len(names) != 2 || names[0] != "acme" || names[1] != "plain" {
		t.Fatalf("unexpected names %#v", names)
	}

	sel, err := catalog.Select("", "dark")
	if err != nil {
		t.Fatalf("select default: %v", err)
	}
	if sel.Theme != "acme" || sel.Variant != "dark" {
		t.Fatalf("unexpected selection %#v", sel)
	}
	if got := sel.Manifest.Variants["dark"].Tokens["authstatus.status.class"]; got != "badge badge-dark" {
		t.Fatalf("variant tokens not decoded: %q", got)
	}

	sel, err = catalog.Select("plain", "")
	if err != nil {
		t.Fatalf("select plain: %v", err)
	}
	if sel.Manifest.Tokens["authstatus.button.class"] != "btn" {
		t.Fatalf("yaml tokens not decoded: %#v", sel.Manifest.Tokens)
	}
}

func TestSelect_Errors(t *testing.T) {
	catalog := NewCatalog()
	if err := catalog.Register(&theme.Manifest{Name: "acme", Version: "1.0.0", Tokens: map[string]string{"a": "b"}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := catalog.Register(&theme.Manifest{Name: "acme", Version: "1.0.1"}); err == nil {
		t.Fatalf("expected duplicate theme error")
	}
	if err := catalog.Register(&theme.Manifest{Name: "nameless"}); err == nil {
		t.Fatalf("expected missing version error")
	}
	if _, err := catalog.Select("missing", ""); !errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme, got %v", err)
	}
	if _, err := catalog.Select("acme", "neon"); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(fstest.MapFS{}, "nope.json"); err == nil {
		t.Fatalf("expected read error")
	}
}
