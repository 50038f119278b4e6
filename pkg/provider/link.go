package provider

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// DefaultRedirectPath is the route that completes a registry id
// authentication started from the widget popup.
const DefaultRedirectPath = "/auth_oauth/g2p_registry_id/authenticate"

// LinkBuilder assembles provider authorization links.
type LinkBuilder struct {
	// BaseURL is the public root of the host application, e.g.
	// "https://registry.example".
	BaseURL string
	// RedirectPath is appended to BaseURL to form redirect_uri.
	RedirectPath string
	// Nonce generates the OIDC nonce. Defaults to 32 random bytes, base64url.
	Nonce func() (string, error)
}

// RedirectURI returns the absolute redirect target.
func (b LinkBuilder) RedirectURI() string {
	path := strings.TrimSpace(b.RedirectPath)
	if path == "" {
		path = DefaultRedirectPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(strings.TrimSpace(b.BaseURL), "/") + path
}

// Build returns auth_endpoint?query for cfg. state is encoded as compact JSON.
func (b LinkBuilder) Build(cfg Config, state map[string]any) (string, error) {
	endpoint := strings.TrimSpace(cfg.AuthEndpoint)
	if endpoint == "" {
		return "", fmt.Errorf("provider: %q has no auth endpoint", cfg.Name)
	}

	encodedState, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("provider: encode state: %w", err)
	}

	params := url.Values{}
	params.Set("response_type", "token")
	params.Set("client_id", cfg.ClientID)
	params.Set("redirect_uri", b.RedirectURI())
	params.Set("scope", cfg.Scope)
	params.Set("state", string(encodedState))

	if cfg.Flow.OIDC() {
		responseType := "id_token token"
		if cfg.Flow == FlowIDTokenCode {
			responseType = "code"
		}
		nonce, err := b.nonce()
		if err != nil {
			return "", fmt.Errorf("provider: generate nonce: %w", err)
		}
		params.Set("response_type", responseType)
		params.Set("nonce", nonce)
		params.Set("code_challenge", CodeChallenge(cfg.CodeVerifier))
		params.Set("code_challenge_method", "S256")
	}

	extra, err := extraParams(cfg.ExtraAuthorizeParams)
	if err != nil {
		return "", fmt.Errorf("provider: %q extra authorize params: %w", cfg.Name, err)
	}
	for key, value := range extra {
		params.Set(key, value)
	}

	separator := "?"
	if strings.Contains(endpoint, "?") {
		separator = "&"
	}
	return endpoint + separator + params.Encode(), nil
}

// CodeChallenge derives the S256 PKCE challenge for verifier.
func CodeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func (b LinkBuilder) nonce() (string, error) {
	if b.Nonce != nil {
		return b.Nonce()
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func extraParams(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(decoded))
	for key, value := range decoded {
		switch v := value.(type) {
		case string:
			out[key] = v
		case nil:
			out[key] = ""
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			out[key] = string(encoded)
		}
	}
	return out, nil
}
