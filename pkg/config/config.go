// Package config loads the reference host configuration from AUTHWIDGET_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/goliatone/go-authwidget/pkg/logger"
	"github.com/goliatone/go-authwidget/pkg/provider"
)

// Config describes the reference host.
type Config struct {
	Addr        string `env:"AUTHWIDGET_ADDR" envDefault:":8080"`
	BasePath    string `env:"AUTHWIDGET_BASE_PATH" envDefault:"/"`
	FixturesDir string `env:"AUTHWIDGET_FIXTURES_DIR" envDefault:"testdata/fixtures"`
	// PublicURL is the externally visible origin used in redirect URIs.
	PublicURL     string `env:"AUTHWIDGET_PUBLIC_URL" envDefault:"http://localhost:8080"`
	RedirectPath  string `env:"AUTHWIDGET_REDIRECT_PATH"`
	DBName        string `env:"AUTHWIDGET_DB_NAME" envDefault:"odoo"`
	ProviderField string `env:"AUTHWIDGET_PROVIDER_FIELD"`
	Locale        string `env:"AUTHWIDGET_LOCALE" envDefault:"en_US"`
	LogLevel      string `env:"AUTHWIDGET_LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"AUTHWIDGET_LOG_FORMAT" envDefault:"console"`
	ThemeName     string `env:"AUTHWIDGET_THEME"`
	ThemeVariant  string `env:"AUTHWIDGET_THEME_VARIANT"`
	// ThemeManifests lists go-theme manifest files registered at startup.
	ThemeManifests []string `env:"AUTHWIDGET_THEME_MANIFESTS" envSeparator:","`
	MaxBodyBytes   int64    `env:"AUTHWIDGET_MAX_BODY_BYTES" envDefault:"1048576"`
}

// Load reads the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads values from environ instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot default.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("config: AUTHWIDGET_ADDR is empty"))
	}
	if u, err := url.Parse(c.PublicURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("config: AUTHWIDGET_PUBLIC_URL %q is not an absolute URL", c.PublicURL))
	}
	switch logger.Format(c.LogFormat) {
	case logger.FormatJSON, logger.FormatConsole:
	default:
		errs = append(errs, fmt.Errorf("config: unknown log format %q", c.LogFormat))
	}
	if c.MaxBodyBytes < 0 {
		errs = append(errs, errors.New("config: AUTHWIDGET_MAX_BODY_BYTES must not be negative"))
	}
	return errors.Join(errs...)
}

// LinkBuilder returns the auth link builder for the configured origin.
func (c Config) LinkBuilder() provider.LinkBuilder {
	return provider.LinkBuilder{
		BaseURL:      strings.TrimRight(c.PublicURL, "/"),
		RedirectPath: c.RedirectPath,
	}
}
