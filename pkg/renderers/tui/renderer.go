// Package tui hosts the authentication status widget in a terminal session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-authwidget/pkg/authstatus"
	"github.com/goliatone/go-authwidget/pkg/popup"
	"github.com/goliatone/go-authwidget/pkg/provider"
)

// Widget is the part of the authentication status widget a session drives.
type Widget interface {
	Visible() bool
	RenderStatus() string
	Wait(ctx context.Context) error
	Provider() (provider.Descriptor, bool)
	AuthenticateButtonClick(screen popup.Screen) error
}

var _ Widget = (*authstatus.Widget)(nil)

// Outcome reports how a session ended.
type Outcome string

const (
	OutcomeHidden   Outcome = "hidden"
	OutcomeDeclined Outcome = "declined"
	OutcomeOpened   Outcome = "opened"
)

const (
	defaultWaitTimeout = 10 * time.Second
	defaultScreen      = "1920x1080"
)

// Renderer runs a terminal session for one widget: it prints the status,
// waits for the provider, asks for confirmation and clicks the button.
type Renderer struct {
	driver      PromptDriver
	screen      popup.Screen
	waitTimeout time.Duration
	statusLabel string
	buttonLabel string
	theme       Theme
	log         *zap.Logger
}

// New constructs a TUI renderer backed by survey prompts unless a driver is
// supplied.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		waitTimeout: defaultWaitTimeout,
		statusLabel: authstatus.DisplayName,
		buttonLabel: authstatus.DefaultButtonLabel,
		log:         zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		driver, err := newSurveyDriver()
		if err != nil {
			return nil, err
		}
		r.driver = driver
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// Run drives one session.
func (r *Renderer) Run(ctx context.Context, w Widget) (Outcome, error) {
	if ctx == nil {
		return "", errors.New("tui: context is required")
	}
	if w == nil {
		return "", errors.New("tui: widget is nil")
	}
	if !w.Visible() {
		r.log.Debug("widget hidden")
		return OutcomeHidden, r.driver.Info(ctx, r.theme.InfoPrefix+"No authentication provider is linked to this record.")
	}

	status := w.RenderStatus()
	if status == "" {
		status = "-"
	}
	if err := r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.InfoPrefix, r.statusLabel, status)); err != nil {
		return "", err
	}

	waitCtx, cancel := context.WithTimeout(ctx, r.waitTimeout)
	err := w.Wait(waitCtx)
	cancel()
	if err != nil {
		r.log.Warn("provider not available", zap.Error(err))
		_ = r.driver.Info(ctx, r.theme.ErrorPrefix+"The authentication provider is not available.")
		return "", fmt.Errorf("tui: wait for provider: %w", err)
	}

	desc, _ := w.Provider()
	name := desc.Name
	if name == "" {
		name = "the provider"
	}
	ok, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("%s with %s?", r.buttonLabel, name),
		Default: true,
		Help:    desc.AuthLink,
	})
	if err != nil {
		return "", err
	}
	if !ok {
		return OutcomeDeclined, nil
	}

	screen, err := r.resolveScreen(ctx)
	if err != nil {
		return "", err
	}
	if err := w.AuthenticateButtonClick(screen); err != nil {
		return "", err
	}
	r.log.Info("authentication popup requested", zap.String("provider", desc.Name))
	return OutcomeOpened, nil
}

func (r *Renderer) resolveScreen(ctx context.Context) (popup.Screen, error) {
	if r.screen.Width > 0 && r.screen.Height > 0 {
		return r.screen, nil
	}
	raw, err := r.driver.Input(ctx, InputConfig{
		Message: "Screen size",
		Default: defaultScreen,
		Help:    "WIDTHxHEIGHT in pixels, used to size the popup",
		Validator: func(value string) error {
			_, err := ParseScreen(value)
			return err
		},
	})
	if err != nil {
		return popup.Screen{}, err
	}
	return ParseScreen(raw)
}

// ParseScreen reads a "WIDTHxHEIGHT" screen size.
func ParseScreen(value string) (popup.Screen, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(value)), "x")
	if !ok {
		return popup.Screen{}, ErrInvalidScreen
	}
	width, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil || width <= 0 {
		return popup.Screen{}, ErrInvalidScreen
	}
	height, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil || height <= 0 {
		return popup.Screen{}, ErrInvalidScreen
	}
	return popup.Screen{Width: width, Height: height}, nil
}
