package rpc

import (
	"net/http"

	"go.uber.org/zap"
)

const (
	DefaultRoutePath    = "/web/dataset/call_kw"
	DefaultDocumentPath = "/openapi.json"
	DefaultMaxBodyBytes = 1 << 20
)

// GuardFunc authorizes a request before it is decoded.
type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath    string
	DocumentPath string
	// ServeDocument mounts the OpenAPI document next to the call route.
	ServeDocument bool
	MaxBodyBytes  int64
	Guard         GuardFunc
	Logger        *zap.Logger

	Dispatcher *Dispatcher
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:     DefaultRoutePath,
		DocumentPath:  DefaultDocumentPath,
		ServeDocument: true,
		MaxBodyBytes:  DefaultMaxBodyBytes,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = DefaultRoutePath
	}
	if opts.DocumentPath == "" {
		opts.DocumentPath = DefaultDocumentPath
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = NewDispatcher()
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithDocumentPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DocumentPath = path
	}
}

// WithoutDocument skips mounting the OpenAPI document.
func WithoutDocument() OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ServeDocument = false
	}
}

func WithMaxBodyBytes(limit int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = limit
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithDispatcher(dispatcher *Dispatcher) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Dispatcher = dispatcher
	}
}
