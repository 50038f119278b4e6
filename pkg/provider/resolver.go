package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-authwidget/pkg/record"
)

// MethodGetAuthOAuthProvider is the remote method name the widget calls.
const MethodGetAuthOAuthProvider = "get_auth_oauth_provider"

// DefaultProviderField is the record field linking a record to its provider.
const DefaultProviderField = "auth_oauth_provider_id"

// RecordSource looks up host records. *record.Store satisfies it.
type RecordSource interface {
	Get(model string, id int64) (record.Record, error)
}

// Resolver implements get_auth_oauth_provider: it finds the provider linked
// to a record and returns its descriptor with a ready to open auth link.
type Resolver struct {
	Providers     *Store
	Records       RecordSource
	Links         LinkBuilder
	DBName        string
	ProviderField string
}

// GetAuthOAuthProvider resolves the descriptor for model/id.
func (r *Resolver) GetAuthOAuthProvider(ctx context.Context, model string, id int64) (Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return Descriptor{}, err
	}
	if r == nil || r.Records == nil {
		return Descriptor{}, fmt.Errorf("provider: resolver has no record source")
	}

	rec, err := r.Records.Get(model, id)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return Descriptor{}, fmt.Errorf("%w: %s(%d)", ErrRecordNotFound, model, id)
		}
		return Descriptor{}, fmt.Errorf("provider: load %s(%d): %w", model, id, err)
	}

	field := strings.TrimSpace(r.ProviderField)
	if field == "" {
		field = DefaultProviderField
	}
	value, _ := rec.Value(field)
	providerID, ok := record.Many2OneID(value)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s(%d)", ErrNoProvider, model, id)
	}

	cfg, ok := r.Providers.Get(providerID)
	if !ok || !cfg.Enabled {
		return Descriptor{}, fmt.Errorf("%w: id %d", ErrProviderNotFound, providerID)
	}

	state := map[string]any{
		"d":      r.DBName,
		"p":      cfg.ID,
		"reg_id": id,
	}
	link, err := r.Links.Build(cfg, state)
	if err != nil {
		return Descriptor{}, err
	}

	return Descriptor{
		ID:           cfg.ID,
		Name:         cfg.Name,
		Flow:         cfg.Flow,
		ClientID:     cfg.ClientID,
		AuthEndpoint: cfg.AuthEndpoint,
		Scope:        cfg.Scope,
		AuthLink:     link,
	}, nil
}
