package record

import (
	"encoding/json"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestTruthy(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "nil", value: nil, want: false},
		{name: "false", value: false, want: false},
		{name: "true", value: true, want: true},
		{name: "empty string", value: "", want: false},
		{name: "string", value: "x", want: true},
		{name: "zero float", value: float64(0), want: false},
		{name: "id float", value: float64(3), want: true},
		{name: "zero int", value: 0, want: false},
		{name: "empty pair", value: []any{}, want: false},
		{name: "pair without id", value: []any{float64(0), ""}, want: false},
		{name: "pair", value: []any{float64(2), "Keycloak"}, want: true},
		{name: "object id", value: map[string]any{"id": float64(2)}, want: true},
		{name: "object without id", value: map[string]any{"id": false}, want: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Truthy(tc.value); got != tc.want {
				t.Fatalf("Truthy(%#v) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestSelectionOption_DecodesPairsAndObjects(t *testing.T) {
	var meta FieldMeta
	payload := `{"type":"selection","selection":[["authenticated","Authenticated"],{"value":"expired","label":"Expired"}]}`
	if err := json.Unmarshal([]byte(payload), &meta); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	want := []SelectionOption{
		{Value: "authenticated", Label: "Authenticated"},
		{Value: "expired", Label: "Expired"},
	}
	if diff := cmp.Diff(want, meta.Selection); diff != "" {
		t.Fatalf("json selection mismatch (-want +got):\n%s", diff)
	}

	var fromYAML FieldMeta
	doc := "type: selection\nselection:\n  - [authenticated, Authenticated]\n  - value: expired\n    label: Expired\n"
	if err := yaml.Unmarshal([]byte(doc), &fromYAML); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	if diff := cmp.Diff(want, fromYAML.Selection); diff != "" {
		t.Fatalf("yaml selection mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectionOption_RejectsMalformedPair(t *testing.T) {
	var option SelectionOption
	if err := json.Unmarshal([]byte(`["only"]`), &option); err == nil {
		t.Fatalf("expected error for single entry pair")
	}
}

func TestRecord_SelectionMapAndStringValue(t *testing.T) {
	rec := Record{
		Data: map[string]any{"authentication_status": "authenticated", "count": float64(4)},
		Fields: map[string]FieldMeta{
			"authentication_status": {
				Type: FieldTypeSelection,
				Selection: []SelectionOption{
					{Value: "not_authenticated", Label: "Not Authenticated"},
					{Value: "authenticated", Label: "Authenticated"},
				},
			},
		},
	}

	table := rec.SelectionMap("authentication_status")
	if table["authenticated"] != "Authenticated" || len(table) != 2 {
		t.Fatalf("unexpected selection table: %#v", table)
	}
	if got := rec.SelectionMap("missing"); len(got) != 0 {
		t.Fatalf("expected empty table for unknown field, got %#v", got)
	}
	if got := rec.StringValue("authentication_status"); got != "authenticated" {
		t.Fatalf("unexpected string value %q", got)
	}
	if got := rec.StringValue("count"); got != "4" {
		t.Fatalf("unexpected numeric string value %q", got)
	}
	if meta, ok := rec.Field("authentication_status"); !ok || meta.Name != "authentication_status" {
		t.Fatalf("expected field name to default to key, got %#v", meta)
	}
}

func TestMany2OneID(t *testing.T) {
	if id, ok := Many2OneID([]any{float64(5), "Provider"}); !ok || id != 5 {
		t.Fatalf("pair: got %d %v", id, ok)
	}
	if id, ok := Many2OneID(7); !ok || id != 7 {
		t.Fatalf("bare int: got %d %v", id, ok)
	}
	if _, ok := Many2OneID(false); ok {
		t.Fatalf("false should not resolve an id")
	}
}

func TestLoadFS_ParsesJSONAndYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"records/reg_ids.yaml": &fstest.MapFile{Data: []byte(`
models:
  g2p.reg.id:
    fields:
      authentication_status:
        type: selection
        selection:
          - [not_authenticated, Not Authenticated]
          - [authenticated, Authenticated]
      auth_oauth_provider_id:
        type: many2one
        relation: auth.oauth.provider
    records:
      - id: 1
        data:
          authentication_status: authenticated
          auth_oauth_provider_id: [2, Keycloak]
`)},
		"records/extra.json": &fstest.MapFile{Data: []byte(`{"models":{"g2p.reg.id":{"records":[{"id":2,"data":{"auth_oauth_provider_id":false}}]}}}`)},
		"providers.json":     &fstest.MapFile{Data: []byte(`{"providers":[]}`)},
		"README.md":          &fstest.MapFile{Data: []byte("ignored")},
	}

	store, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 2}, store.IDs("g2p.reg.id")); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	rec, err := store.Get("g2p.reg.id", 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.ResModel != "g2p.reg.id" || rec.ResID != 1 {
		t.Fatalf("unexpected identity %s(%d)", rec.ResModel, rec.ResID)
	}
	if !rec.Truthy("auth_oauth_provider_id") {
		t.Fatalf("expected provider field to be set")
	}
	if got := rec.SelectionMap("authentication_status")["authenticated"]; got != "Authenticated" {
		t.Fatalf("unexpected label %q", got)
	}

	other, err := store.Get("g2p.reg.id", 2)
	if err != nil {
		t.Fatalf("get second: %v", err)
	}
	if other.Truthy("auth_oauth_provider_id") {
		t.Fatalf("expected provider field unset on second record")
	}
}

func TestLoadFS_RejectsDuplicateRecords(t *testing.T) {
	fsys := fstest.MapFS{
		"a.json": &fstest.MapFile{Data: []byte(`{"models":{"m":{"records":[{"id":1,"data":{}}]}}}`)},
		"b.json": &fstest.MapFile{Data: []byte(`{"models":{"m":{"records":[{"id":1,"data":{}}]}}}`)},
	}
	if _, err := LoadFS(fsys); err == nil {
		t.Fatalf("expected duplicate record error")
	}
}

func TestStore_GetUnknown(t *testing.T) {
	store := NewStore()
	if _, err := store.Get("m", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Put("m", 1, map[string]any{"x": "y"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Get("m", 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
	if err := store.Put("m", 0, nil); err == nil {
		t.Fatalf("expected error for non-positive id")
	}
}
