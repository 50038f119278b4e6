// Package authwidget wires the authentication status widget into a host: the
// widget registry, the get_auth_oauth_provider remote method, fixture
// loading, and HTML form pages.
package authwidget

import (
	"context"
	"fmt"

	"github.com/goliatone/go-authwidget/pkg/authstatus"
	"github.com/goliatone/go-authwidget/pkg/provider"
	"github.com/goliatone/go-authwidget/pkg/rpc"
	"github.com/goliatone/go-authwidget/pkg/widgets"
)

// NewRegistry returns a registry with the authentication status widget
// registered. base options apply to every widget instance.
func NewRegistry(base ...authstatus.OptionFn) (*widgets.Registry, error) {
	reg := widgets.NewRegistry()
	if err := authstatus.Register(reg, base...); err != nil {
		return nil, fmt.Errorf("authwidget: register %s: %w", authstatus.Key, err)
	}
	return reg, nil
}

// RegisterProviderMethod serves get_auth_oauth_provider for model through
// resolver.
func RegisterProviderMethod(d *rpc.Dispatcher, model string, resolver *provider.Resolver) error {
	if d == nil {
		return fmt.Errorf("authwidget: missing dispatcher")
	}
	if resolver == nil {
		return fmt.Errorf("authwidget: missing resolver")
	}
	return d.Register(model, provider.MethodGetAuthOAuthProvider, func(ctx context.Context, args []any) (any, error) {
		id, err := rpc.IDArg(args, 0)
		if err != nil {
			return nil, err
		}
		return resolver.GetAuthOAuthProvider(ctx, model, id)
	})
}
