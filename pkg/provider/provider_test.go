package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-authwidget/pkg/record"
)

func fixedNonce() (string, error) { return "nonce-123", nil }

func mustParseLink(t *testing.T, link string) (*url.URL, url.Values) {
	t.Helper()
	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link %q: %v", link, err)
	}
	return parsed, parsed.Query()
}

func TestLinkBuilder_AccessTokenFlow(t *testing.T) {
	builder := LinkBuilder{BaseURL: "https://registry.example/"}
	link, err := builder.Build(Config{
		Name:         "keycloak",
		ClientID:     "registry",
		AuthEndpoint: "https://idp.example/auth",
		Scope:        "openid profile",
	}, map[string]any{"d": "registry", "p": 2, "reg_id": 9})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	parsed, query := mustParseLink(t, link)
	if parsed.Scheme != "https" || parsed.Host != "idp.example" || parsed.Path != "/auth" {
		t.Fatalf("unexpected endpoint in %q", link)
	}
	want := map[string]string{
		"response_type": "token",
		"client_id":     "registry",
		"redirect_uri":  "https://registry.example/auth_oauth/g2p_registry_id/authenticate",
		"scope":         "openid profile",
		"state":         `{"d":"registry","p":2,"reg_id":9}`,
	}
	got := map[string]string{}
	for key := range query {
		got[key] = query.Get(key)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestLinkBuilder_OIDCFlows(t *testing.T) {
	cases := []struct {
		flow         Flow
		responseType string
	}{
		{flow: FlowIDToken, responseType: "id_token token"},
		{flow: FlowIDTokenCode, responseType: "code"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.flow), func(t *testing.T) {
			t.Parallel()
			builder := LinkBuilder{BaseURL: "https://registry.example", Nonce: fixedNonce}
			link, err := builder.Build(Config{
				Flow:         tc.flow,
				ClientID:     "registry",
				AuthEndpoint: "https://idp.example/authorize",
				Scope:        "openid",
				CodeVerifier: "verifier-value",
			}, map[string]any{"p": 1})
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			_, query := mustParseLink(t, link)
			if got := query.Get("response_type"); got != tc.responseType {
				t.Fatalf("response_type: want %q, got %q", tc.responseType, got)
			}
			if query.Get("nonce") != "nonce-123" {
				t.Fatalf("nonce not propagated: %q", query.Get("nonce"))
			}
			if query.Get("code_challenge") != CodeChallenge("verifier-value") {
				t.Fatalf("unexpected code challenge %q", query.Get("code_challenge"))
			}
			if query.Get("code_challenge_method") != "S256" {
				t.Fatalf("unexpected challenge method %q", query.Get("code_challenge_method"))
			}
		})
	}
}

func TestLinkBuilder_ExtraParamsOverride(t *testing.T) {
	builder := LinkBuilder{BaseURL: "https://registry.example", RedirectPath: "callback"}
	link, err := builder.Build(Config{
		ClientID:             "registry",
		AuthEndpoint:         "https://idp.example/auth?tenant=a",
		ExtraAuthorizeParams: `{"prompt":"login","max_age":0,"scope":"openid email"}`,
	}, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	_, query := mustParseLink(t, link)
	if query.Get("tenant") != "a" {
		t.Fatalf("existing query lost: %q", link)
	}
	if query.Get("prompt") != "login" || query.Get("max_age") != "0" {
		t.Fatalf("extra params missing: %v", query)
	}
	if query.Get("scope") != "openid email" {
		t.Fatalf("extra params should override defaults, got scope %q", query.Get("scope"))
	}
	if query.Get("redirect_uri") != "https://registry.example/callback" {
		t.Fatalf("unexpected redirect %q", query.Get("redirect_uri"))
	}
}

func TestLinkBuilder_Errors(t *testing.T) {
	builder := LinkBuilder{}
	if _, err := builder.Build(Config{Name: "x"}, nil); err == nil {
		t.Fatalf("expected error without auth endpoint")
	}
	if _, err := builder.Build(Config{AuthEndpoint: "https://idp", ExtraAuthorizeParams: "{"}, nil); err == nil {
		t.Fatalf("expected error for malformed extra params")
	}
}

func TestCodeChallenge_IsUnpaddedBase64URL(t *testing.T) {
	challenge := CodeChallenge("abc")
	if len(challenge) != 43 {
		t.Fatalf("expected 43 chars, got %d (%q)", len(challenge), challenge)
	}
	if strings.ContainsAny(challenge, "=+/") {
		t.Fatalf("challenge is not raw base64url: %q", challenge)
	}
	if challenge != CodeChallenge("abc") {
		t.Fatalf("challenge must be deterministic")
	}
}

func TestMapValidationResponse(t *testing.T) {
	got := MapValidationResponse(DefaultValidateResponseMapping+"  bogus", map[string]any{
		"name":         "Ada Lovelace",
		"email":        "ada@example.org",
		"phone_number": "+100",
	})
	want := map[string]any{
		"name":      "Ada Lovelace",
		"email":     "ada@example.org",
		"phone":     "+100",
		"birthdate": "",
		"gender":    "",
		"address":   "",
		"picture":   "",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFS_Providers(t *testing.T) {
	fsys := fstest.MapFS{
		"providers.yaml": &fstest.MapFile{Data: []byte(`
providers:
  - id: 2
    name: Keycloak
    enabled: true
    client_id: registry
    auth_endpoint: https://idp.example/auth
    scope: openid
  - id: 3
    name: Disabled
    enabled: false
    auth_endpoint: https://other.example/auth
`)},
	}
	store, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg, ok := store.Get(2)
	if !ok || cfg.Flow != FlowAccessToken || cfg.ValidateResponseMapping != DefaultValidateResponseMapping {
		t.Fatalf("defaults not applied: %#v", cfg)
	}
	if enabled := store.Enabled(); len(enabled) != 1 || enabled[0].ID != 2 {
		t.Fatalf("unexpected enabled providers: %#v", enabled)
	}

	if _, err := NewStore(Config{ID: 1}, Config{ID: 1}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	providers, err := NewStore(
		Config{ID: 2, Name: "Keycloak", Enabled: true, ClientID: "registry", AuthEndpoint: "https://idp.example/auth", Scope: "openid"},
		Config{ID: 3, Name: "Off", Enabled: false, AuthEndpoint: "https://off.example/auth"},
	)
	if err != nil {
		t.Fatalf("providers: %v", err)
	}
	records := record.NewStore()
	for id, value := range map[int64]any{
		1: []any{float64(2), "Keycloak"},
		2: false,
		3: []any{float64(3), "Off"},
	} {
		if err := records.Put("g2p.reg.id", id, map[string]any{DefaultProviderField: value}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	return &Resolver{
		Providers: providers,
		Records:   records,
		Links:     LinkBuilder{BaseURL: "https://registry.example"},
		DBName:    "registry",
	}
}

func TestResolver_GetAuthOAuthProvider(t *testing.T) {
	resolver := newResolver(t)

	desc, err := resolver.GetAuthOAuthProvider(context.Background(), "g2p.reg.id", 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if desc.ID != 2 || desc.Name != "Keycloak" || !desc.Valid() {
		t.Fatalf("unexpected descriptor: %#v", desc)
	}
	_, query := mustParseLink(t, desc.AuthLink)
	var state map[string]any
	if err := json.Unmarshal([]byte(query.Get("state")), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"d": "registry", "p": float64(2), "reg_id": float64(1)}, state); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}

	payload, err := json.Marshal(desc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(payload), `"auth_link":`) {
		t.Fatalf("descriptor must expose auth_link, got %s", payload)
	}
}

func TestResolver_Errors(t *testing.T) {
	resolver := newResolver(t)
	ctx := context.Background()

	cases := []struct {
		name string
		id   int64
		want error
	}{
		{name: "no provider", id: 2, want: ErrNoProvider},
		{name: "disabled provider", id: 3, want: ErrProviderNotFound},
		{name: "missing record", id: 99, want: ErrRecordNotFound},
	}
	for _, tc := range cases {
		if _, err := resolver.GetAuthOAuthProvider(ctx, "g2p.reg.id", tc.id); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := resolver.GetAuthOAuthProvider(cancelled, "g2p.reg.id", 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
