package rpc

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the call route under basePath.
func MountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.RoutePath)
}

// DocumentMountPath returns the OpenAPI document route under basePath.
func DocumentMountPath(basePath string, fns ...OptionFn) string {
	opts := NewOptions(fns...)
	return mountPath(basePath, opts.DocumentPath)
}

// RegisterRoutes registers the call handler, and the OpenAPI document unless
// disabled, under basePath on mux. It returns the call route pattern.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) (string, error) {
	opts := NewOptions(fns...)
	return RegisterRoutesWithOptions(mux, basePath, opts)
}

// RegisterRoutesWithOptions registers the handlers using a pre-built Options
// value.
func RegisterRoutesWithOptions(mux Mux, basePath string, opts Options) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("rpc: missing mux")
	}
	opts = NewOptions(func(o *Options) { *o = opts })
	pattern := mountPath(basePath, opts.RoutePath)
	docPattern := mountPath(basePath, opts.DocumentPath)
	if opts.ServeDocument && docPattern == pattern {
		return "", fmt.Errorf("rpc: document path collides with call route %s", pattern)
	}
	mux.Handle(pattern, HandlerWithOptions(opts))
	if opts.ServeDocument {
		mux.Handle(docPattern, DocumentHandlerWithOptions(basePath, opts))
	}
	return pattern, nil
}

func mountPath(basePath, routePath string) string {
	routePath = strings.TrimSpace(routePath)
	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}
	base := normalizeBase(basePath)
	if base == "" {
		return routePath
	}
	return base + routePath
}
