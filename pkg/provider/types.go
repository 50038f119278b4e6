package provider

import (
	"errors"
	"strings"
)

// Flow selects how the identity provider returns credentials.
type Flow string

const (
	FlowAccessToken Flow = "access_token"
	FlowIDToken     Flow = "id_token"
	FlowIDTokenCode Flow = "id_token_code"
)

// OIDC reports whether the flow is one of the OpenID Connect variants.
func (f Flow) OIDC() bool {
	return f == FlowIDToken || f == FlowIDTokenCode
}

var (
	// ErrProviderNotFound is returned for unknown or disabled providers.
	ErrProviderNotFound = errors.New("provider: not found")
	// ErrNoProvider is returned when a record is not linked to any provider.
	ErrNoProvider = errors.New("provider: record has no provider")
	// ErrRecordNotFound is returned when the bound record does not exist.
	ErrRecordNotFound = errors.New("provider: record not found")
)

// Config is the stored configuration of an OAuth identity provider.
type Config struct {
	ID                   int64  `json:"id" yaml:"id"`
	Name                 string `json:"name" yaml:"name"`
	Enabled              bool   `json:"enabled" yaml:"enabled"`
	Flow                 Flow   `json:"flow" yaml:"flow"`
	ClientID             string `json:"client_id" yaml:"client_id"`
	AuthEndpoint         string `json:"auth_endpoint" yaml:"auth_endpoint"`
	ValidationEndpoint   string `json:"validation_endpoint,omitempty" yaml:"validation_endpoint,omitempty"`
	Scope                string `json:"scope" yaml:"scope"`
	CodeVerifier         string `json:"code_verifier,omitempty" yaml:"code_verifier,omitempty"`
	ExtraAuthorizeParams string `json:"extra_authorize_params,omitempty" yaml:"extra_authorize_params,omitempty"`

	// ValidateResponseMapping maps validation response keys onto partner
	// fields as space separated "from:to" pairs.
	ValidateResponseMapping string `json:"partner_creation_validate_response_mapping,omitempty" yaml:"partner_creation_validate_response_mapping,omitempty"`
}

// Descriptor is what the widget receives from get_auth_oauth_provider.
type Descriptor struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Flow         Flow   `json:"flow,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	AuthEndpoint string `json:"auth_endpoint,omitempty"`
	Scope        string `json:"scope,omitempty"`
	AuthLink     string `json:"auth_link"`
}

// Valid reports whether the descriptor carries a usable auth link.
func (d Descriptor) Valid() bool {
	return strings.TrimSpace(d.AuthLink) != ""
}

// DefaultValidateResponseMapping is applied when a provider leaves the mapping
// empty.
const DefaultValidateResponseMapping = "name:name email:email phone_number:phone birthdate:birthdate gender:gender address:address picture:picture"

// MapValidationResponse projects a validation (userinfo) response onto partner
// fields. Missing source keys map to "".
func MapValidationResponse(mapping string, response map[string]any) map[string]any {
	out := make(map[string]any)
	for _, pair := range strings.Split(mapping, " ") {
		if pair == "" {
			continue
		}
		from, to, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		from = strings.TrimSpace(from)
		to = strings.TrimSpace(to)
		if to == "" {
			continue
		}
		value, present := response[from]
		if !present {
			value = ""
		}
		out[to] = value
	}
	return out
}
