package authstatus

import (
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-authwidget/pkg/i18n"
	"github.com/goliatone/go-authwidget/pkg/popup"
	"github.com/goliatone/go-authwidget/pkg/provider"
)

const (
	DefaultStatusField = "authentication_status"
	DefaultButtonLabel = "Authenticate"

	// Theme tokens consulted when the view declares no classes.
	TokenStatusClass = "authstatus.status.class"
	TokenButtonClass = "authstatus.button.class"
)

// Options configures a widget instance.
type Options struct {
	ProviderField string
	StatusField   string
	Method        string
	StatusClass   string
	ButtonClass   string
	ButtonLabel   string
	Locale        string
	Translator    i18n.Translator
	OnMissing     i18n.MissingHandler
	Opener        popup.Opener
	Logger        *zap.Logger

	ThemeSelector theme.ThemeSelector
	ThemeName     string
	ThemeVariant  string
}

// OptionFn mutates Options.
type OptionFn func(*Options)

// DefaultOptions returns the field names and method used by the registry id
// form.
func DefaultOptions() Options {
	return Options{
		ProviderField: provider.DefaultProviderField,
		StatusField:   DefaultStatusField,
		Method:        provider.MethodGetAuthOAuthProvider,
		ButtonLabel:   DefaultButtonLabel,
	}
}

// NewOptions applies fns over the defaults and restores defaults for fields
// left empty.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	defaults := DefaultOptions()
	if opts.ProviderField == "" {
		opts.ProviderField = defaults.ProviderField
	}
	if opts.StatusField == "" {
		opts.StatusField = defaults.StatusField
	}
	if opts.Method == "" {
		opts.Method = defaults.Method
	}
	if opts.ButtonLabel == "" {
		opts.ButtonLabel = defaults.ButtonLabel
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func WithProviderField(name string) OptionFn {
	return func(o *Options) { o.ProviderField = name }
}

func WithStatusField(name string) OptionFn {
	return func(o *Options) { o.StatusField = name }
}

func WithMethod(method string) OptionFn {
	return func(o *Options) { o.Method = method }
}

func WithStatusClass(class string) OptionFn {
	return func(o *Options) { o.StatusClass = class }
}

func WithButtonClass(class string) OptionFn {
	return func(o *Options) { o.ButtonClass = class }
}

func WithButtonLabel(label string) OptionFn {
	return func(o *Options) { o.ButtonLabel = label }
}

// WithTranslator sets the translator and locale used for labels.
func WithTranslator(t i18n.Translator, locale string) OptionFn {
	return func(o *Options) {
		o.Translator = t
		if locale != "" {
			o.Locale = locale
		}
	}
}

func WithLocale(locale string) OptionFn {
	return func(o *Options) {
		if locale != "" {
			o.Locale = locale
		}
	}
}

func WithMissingTranslation(handler i18n.MissingHandler) OptionFn {
	return func(o *Options) { o.OnMissing = handler }
}

func WithOpener(opener popup.Opener) OptionFn {
	return func(o *Options) { o.Opener = opener }
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) { o.Logger = logger }
}

// WithTheme resolves default classes from the named theme and variant.
func WithTheme(selector theme.ThemeSelector, name, variant string) OptionFn {
	return func(o *Options) {
		o.ThemeSelector = selector
		o.ThemeName = name
		o.ThemeVariant = variant
	}
}
