package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	authwidget "github.com/goliatone/go-authwidget"
	"github.com/goliatone/go-authwidget/pkg/authstatus"
	"github.com/goliatone/go-authwidget/pkg/config"
	"github.com/goliatone/go-authwidget/pkg/logger"
	"github.com/goliatone/go-authwidget/pkg/popup"
	"github.com/goliatone/go-authwidget/pkg/renderers/tui"
	"github.com/goliatone/go-authwidget/pkg/rpc"
	"github.com/goliatone/go-authwidget/pkg/themes"
)

const usage = `usage: authwidget <command> [flags]

commands:
  render   render the form page of a fixture record (or drive it in the terminal with -tui)
  serve    serve the call endpoint, its OpenAPI document and record form pages
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, logger.Format(cfg.LogFormat))
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "render":
		err = runRender(ctx, cfg, log, os.Args[2:])
	case "serve":
		err = runServe(ctx, cfg, log, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		os.Exit(1)
	}
}

func runRender(ctx context.Context, cfg config.Config, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	model := fs.String("model", "g2p.reg.id", "record model")
	id := fs.Int64("id", 1, "record id")
	fixtures := fs.String("fixtures", cfg.FixturesDir, "fixtures directory (records/, providers/, translations/)")
	locale := fs.String("locale", cfg.Locale, "locale used for labels")
	output := fs.String("output", "", "output file (stdout if empty)")
	useTUI := fs.Bool("tui", false, "drive the widget in the terminal instead of printing HTML")
	screen := fs.String("screen", "", "screen size WIDTHxHEIGHT used by -tui (prompted if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	host, err := newHost(cfg, log, *fixtures, *locale,
		authwidget.WithWidgetOptions(authstatus.WithOpener(popup.NewWriterOpener(os.Stdout))))
	if err != nil {
		return err
	}

	if !*useTUI {
		html, err := host.RenderPage(ctx, *model, *id)
		if err != nil {
			return err
		}
		if *output == "" {
			fmt.Println(html)
			return nil
		}
		if err := os.WriteFile(*output, []byte(html+"\n"), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Form written to %s\n", *output)
		return nil
	}

	rec, err := host.Record(*model, *id)
	if err != nil {
		return err
	}
	widget, err := host.Instantiate(ctx, rec, authwidget.DefaultFieldViews()[0])
	if err != nil {
		return err
	}
	defer widget.Close()
	target, ok := widget.(tui.Widget)
	if !ok {
		return fmt.Errorf("widget %T cannot run in the terminal", widget)
	}

	opts := []tui.Option{tui.WithLogger(log), tui.WithTheme(tui.Theme{ErrorPrefix: "error: "})}
	if *screen != "" {
		parsed, err := tui.ParseScreen(*screen)
		if err != nil {
			return err
		}
		opts = append(opts, tui.WithScreen(parsed))
	}
	session, err := tui.New(opts...)
	if err != nil {
		return err
	}
	outcome, err := session.Run(ctx, target)
	if err != nil {
		return err
	}
	log.Debug("terminal session finished", zap.String("outcome", string(outcome)))
	return nil
}

func runServe(ctx context.Context, cfg config.Config, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Addr, "listen address")
	basePath := fs.String("base", cfg.BasePath, "base path for every route")
	fixtures := fs.String("fixtures", cfg.FixturesDir, "fixtures directory (records/, providers/, translations/)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	host, err := newHost(cfg, log, *fixtures, cfg.Locale,
		authwidget.WithRPCOptions(rpc.WithMaxBodyBytes(cfg.MaxBodyBytes)))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	pattern, err := host.RegisterRoutes(mux, *basePath)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", *addr),
			zap.String("call", pattern),
			zap.String("openapi", rpc.DocumentMountPath(*basePath)),
			zap.Strings("methods", host.Dispatcher().Methods()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func newHost(cfg config.Config, log *zap.Logger, fixturesDir, locale string, extra ...authwidget.HostOptionFn) (*authwidget.Host, error) {
	fixtures, err := authwidget.LoadFixtures(os.DirFS(fixturesDir))
	if err != nil {
		return nil, err
	}

	opts := []authwidget.HostOptionFn{
		authwidget.WithLogger(log),
		authwidget.WithLinkBuilder(cfg.LinkBuilder()),
		authwidget.WithDBName(cfg.DBName),
		authwidget.WithProviderField(cfg.ProviderField),
		authwidget.WithLocale(locale),
	}
	if len(cfg.ThemeManifests) > 0 {
		catalog, err := loadThemes(cfg.ThemeManifests)
		if err != nil {
			return nil, err
		}
		opts = append(opts, authwidget.WithWidgetOptions(authstatus.WithTheme(catalog, cfg.ThemeName, cfg.ThemeVariant)))
	}
	return authwidget.NewHost(fixtures, append(opts, extra...)...)
}

func loadThemes(paths []string) (*themes.Catalog, error) {
	catalog := themes.NewCatalog()
	for _, path := range paths {
		manifest, err := themes.LoadFile(os.DirFS(filepath.Dir(path)), filepath.Base(path))
		if err != nil {
			return nil, err
		}
		if err := catalog.Register(manifest); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}
