package authwidget

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-authwidget/pkg/authstatus"
	"github.com/goliatone/go-authwidget/pkg/logger"
	"github.com/goliatone/go-authwidget/pkg/provider"
	"github.com/goliatone/go-authwidget/pkg/record"
	"github.com/goliatone/go-authwidget/pkg/rpc"
	"github.com/goliatone/go-authwidget/pkg/view/htmlview"
	"github.com/goliatone/go-authwidget/pkg/widgets"
)

// PageRoutePath is the form page route, relative to the base path.
const PageRoutePath = "/records/{model}/{id}"

// FieldView binds a record field to a widget on the form page.
type FieldView struct {
	Field   string
	Widget  string
	Options map[string]any
}

// DefaultFieldViews renders the status field with the authentication status
// widget.
func DefaultFieldViews() []FieldView {
	return []FieldView{{Field: authstatus.DefaultStatusField, Widget: authstatus.Key}}
}

type HostOptions struct {
	Links         provider.LinkBuilder
	DBName        string
	ProviderField string
	Locale        string
	Views         []FieldView
	// Caller overrides the in-process dispatcher, e.g. with an rpc.Client.
	Caller        record.Caller
	WidgetOptions []authstatus.OptionFn
	RPCOptions    []rpc.OptionFn
	Renderer      *htmlview.Renderer
	Logger        *zap.Logger
	// WaitTimeout bounds how long a page render waits for the provider.
	WaitTimeout   time.Duration
}

type HostOptionFn func(*HostOptions)

func WithLinkBuilder(links provider.LinkBuilder) HostOptionFn {
	return func(o *HostOptions) { o.Links = links }
}

func WithDBName(name string) HostOptionFn {
	return func(o *HostOptions) { o.DBName = name }
}

func WithProviderField(name string) HostOptionFn {
	return func(o *HostOptions) { o.ProviderField = name }
}

func WithLocale(locale string) HostOptionFn {
	return func(o *HostOptions) { o.Locale = locale }
}

func WithFieldViews(views ...FieldView) HostOptionFn {
	return func(o *HostOptions) { o.Views = append([]FieldView(nil), views...) }
}

func WithCaller(caller record.Caller) HostOptionFn {
	return func(o *HostOptions) { o.Caller = caller }
}

func WithWidgetOptions(fns ...authstatus.OptionFn) HostOptionFn {
	return func(o *HostOptions) { o.WidgetOptions = append(o.WidgetOptions, fns...) }
}

func WithRPCOptions(fns ...rpc.OptionFn) HostOptionFn {
	return func(o *HostOptions) { o.RPCOptions = append(o.RPCOptions, fns...) }
}

func WithRenderer(renderer *htmlview.Renderer) HostOptionFn {
	return func(o *HostOptions) { o.Renderer = renderer }
}

func WithLogger(logger *zap.Logger) HostOptionFn {
	return func(o *HostOptions) { o.Logger = logger }
}

func WithWaitTimeout(timeout time.Duration) HostOptionFn {
	return func(o *HostOptions) { o.WaitTimeout = timeout }
}

// Host serves fixture records with the widget: it owns the registry, the
// dispatcher answering get_auth_oauth_provider and the HTML renderer.
type Host struct {
	opts       HostOptions
	fixtures   Fixtures
	registry   *widgets.Registry
	dispatcher *rpc.Dispatcher
	caller     record.Caller
	renderer   *htmlview.Renderer
	log        *zap.Logger
}

// NewHost builds a host over fixtures. get_auth_oauth_provider is registered
// for every fixture model.
func NewHost(fixtures Fixtures, fns ...HostOptionFn) (*Host, error) {
	opts := HostOptions{
		Views:       DefaultFieldViews(),
		WaitTimeout: 5 * time.Second,
	}
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}
	opts.Logger = logger.OrNop(opts.Logger)
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 5 * time.Second
	}
	if fixtures.Records == nil {
		fixtures.Records = record.NewStore()
	}
	if fixtures.Providers == nil {
		store, err := provider.NewStore()
		if err != nil {
			return nil, err
		}
		fixtures.Providers = store
	}

	base := []authstatus.OptionFn{authstatus.WithLogger(opts.Logger)}
	if fixtures.Translations != nil {
		base = append(base, authstatus.WithTranslator(fixtures.Translations, opts.Locale))
	}
	if opts.ProviderField != "" {
		base = append(base, authstatus.WithProviderField(opts.ProviderField))
	}
	base = append(base, opts.WidgetOptions...)
	registry, err := NewRegistry(base...)
	if err != nil {
		return nil, err
	}

	dispatcher := rpc.NewDispatcher()
	resolver := &provider.Resolver{
		Providers:     fixtures.Providers,
		Records:       fixtures.Records,
		Links:         opts.Links,
		DBName:        opts.DBName,
		ProviderField: opts.ProviderField,
	}
	for _, model := range fixtures.Records.Models() {
		if err := RegisterProviderMethod(dispatcher, model, resolver); err != nil {
			return nil, err
		}
	}

	renderer := opts.Renderer
	if renderer == nil {
		renderer, err = htmlview.New()
		if err != nil {
			return nil, err
		}
	}

	caller := opts.Caller
	if caller == nil {
		caller = dispatcher
	}

	return &Host{
		opts:       opts,
		fixtures:   fixtures,
		registry:   registry,
		dispatcher: dispatcher,
		caller:     caller,
		renderer:   renderer,
		log:        opts.Logger,
	}, nil
}

// Registry returns the widget registry.
func (h *Host) Registry() *widgets.Registry { return h.registry }

// Dispatcher returns the method table served over RPC.
func (h *Host) Dispatcher() *rpc.Dispatcher { return h.dispatcher }

// Caller returns the caller widgets use for remote calls.
func (h *Host) Caller() record.Caller { return h.caller }

// Record loads a fixture record.
func (h *Host) Record(model string, id int64) (record.Record, error) {
	return h.fixtures.Records.Get(model, id)
}

// Instantiate binds the view's widget to rec.
func (h *Host) Instantiate(ctx context.Context, rec record.Record, fv FieldView) (widgets.Widget, error) {
	return h.registry.Instantiate(ctx, fv.Widget, widgets.Props{
		Record:    rec,
		Caller:    h.caller,
		FieldName: fv.Field,
		Options:   fv.Options,
		Locale:    h.opts.Locale,
	})
}

type waiter interface {
	Wait(ctx context.Context) error
}

// RenderField renders one field widget for rec. Widgets that fetch remote
// data are given until the wait timeout to settle; a failed fetch still
// renders, with the action disabled.
func (h *Host) RenderField(ctx context.Context, rec record.Record, fv FieldView) (string, error) {
	widget, err := h.Instantiate(ctx, rec, fv)
	if err != nil {
		return "", err
	}
	defer widget.Close()

	if w, ok := widget.(waiter); ok {
		waitCtx, cancel := context.WithTimeout(ctx, h.opts.WaitTimeout)
		err := w.Wait(waitCtx)
		cancel()
		if err != nil {
			h.log.Warn("widget not settled before render",
				zap.String("widget", fv.Widget),
				zap.String("model", rec.ResModel),
				zap.Int64("res_id", rec.ResID),
				zap.Error(err))
		}
	}
	return h.renderer.RenderWidget(fv.Widget, "", widget.View())
}

// RenderPage renders the form page of model/id with every configured field
// view.
func (h *Host) RenderPage(ctx context.Context, model string, id int64) (string, error) {
	rec, err := h.Record(model, id)
	if err != nil {
		return "", err
	}

	page := htmlview.Page{
		Title: fmt.Sprintf("%s,%d", model, id),
		Lang:  langOf(h.opts.Locale),
		Model: model,
		ResID: id,
	}
	keys := make([]string, 0, len(h.opts.Views))
	for _, fv := range h.opts.Views {
		fragment, err := h.RenderField(ctx, rec, fv)
		if err != nil {
			return "", err
		}
		if fragment == "" {
			continue
		}
		label := fv.Field
		if meta, ok := rec.Field(fv.Field); ok && meta.String != "" {
			label = meta.String
		}
		page.Fields = append(page.Fields, htmlview.PageField{Name: fv.Field, Label: label, HTML: fragment})
		keys = append(keys, fv.Widget)
	}
	for _, script := range h.registry.Scripts(keys) {
		page.Scripts = append(page.Scripts, htmlview.Script{Src: script.Src, Inline: script.Inline, Module: script.Module})
	}
	return h.renderer.RenderPage(page)
}

// PageHandler serves GET requests for PageRoutePath.
func (h *Host) PageHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		model := r.PathValue("model")
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if model == "" || err != nil || id <= 0 {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		html, err := h.RenderPage(r.Context(), model, id)
		if err != nil {
			code := http.StatusInternalServerError
			if errors.Is(err, record.ErrNotFound) {
				code = http.StatusNotFound
			} else {
				h.log.Error("render page failed", zap.String("model", model), zap.Int64("res_id", id), zap.Error(err))
			}
			http.Error(w, http.StatusText(code), code)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(html))
	})
}

// RegisterRoutes mounts the RPC endpoint, its OpenAPI document and the form
// page under basePath. It returns the call route pattern.
func (h *Host) RegisterRoutes(mux rpc.Mux, basePath string) (string, error) {
	rpcOpts := append([]rpc.OptionFn{rpc.WithDispatcher(h.dispatcher), rpc.WithLogger(h.log)}, h.opts.RPCOptions...)
	pattern, err := rpc.RegisterRoutes(mux, basePath, rpcOpts...)
	if err != nil {
		return "", err
	}
	pagePath := strings.TrimRight(strings.TrimSpace(basePath), "/") + PageRoutePath
	if !strings.HasPrefix(pagePath, "/") {
		pagePath = "/" + pagePath
	}
	mux.Handle("GET "+pagePath, h.PageHandler())
	return pattern, nil
}

func langOf(locale string) string {
	lang, _, _ := strings.Cut(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"), "-")
	return strings.ToLower(lang)
}
