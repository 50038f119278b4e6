package rpc

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var documentSource []byte

const routePlaceholder = "/__call_route__"

// MethodsExtension lists the registered model methods in the document.
const MethodsExtension = "x-rpc-methods"

// Document describes the call endpoint mounted under basePath.
func Document(ctx context.Context, basePath string, fns ...OptionFn) (*openapi3.T, error) {
	return DocumentWithOptions(ctx, basePath, NewOptions(fns...))
}

// DocumentWithOptions builds the OpenAPI document from a pre-built Options
// value. The call path follows opts.RoutePath and basePath becomes the server
// URL.
func DocumentWithOptions(ctx context.Context, basePath string, opts Options) (*openapi3.T, error) {
	opts = NewOptions(func(o *Options) { *o = opts })

	data := bytes.ReplaceAll(documentSource, []byte(routePlaceholder), []byte(mountPath("", opts.RoutePath)))
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("rpc: load openapi document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("rpc: validate openapi document: %w", err)
	}

	if base := normalizeBase(basePath); base != "" {
		doc.Servers = openapi3.Servers{{URL: base}}
	}
	if methods := opts.Dispatcher.Methods(); len(methods) > 0 {
		if doc.Extensions == nil {
			doc.Extensions = map[string]any{}
		}
		doc.Extensions[MethodsExtension] = methods
	}
	return doc, nil
}

// DocumentHandler serves the OpenAPI document as JSON.
func DocumentHandler(basePath string, fns ...OptionFn) http.Handler {
	return DocumentHandlerWithOptions(basePath, NewOptions(fns...))
}

func DocumentHandlerWithOptions(basePath string, opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		doc, err := DocumentWithOptions(r.Context(), basePath, opts)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		payload, err := json.Marshal(doc)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(payload)
	})
}

func normalizeBase(basePath string) string {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" || basePath == "/" {
		return ""
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return strings.TrimRight(basePath, "/")
}
