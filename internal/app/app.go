package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/five82/triagedesk/internal/config"
	"github.com/five82/triagedesk/internal/logging"
	"github.com/five82/triagedesk/internal/prefs"
	"github.com/five82/triagedesk/internal/session"
	"github.com/five82/triagedesk/internal/triage"
	"github.com/five82/triagedesk/internal/ui"
)

// Options configure the triagedesk application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/triagedesk/prefs.toml
	APIURL     string // overrides the configured backend address
}

// env is everything the TUI and the check mode share.
type env struct {
	cfg    config.Config
	client *triage.Client
	closer io.Closer
}

// setup loads the configuration, starts file logging and builds the backend
// client.
func setup(opts Options) (*env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if api := strings.TrimSpace(opts.APIURL); api != "" {
		cfg.APIURL = api
	}

	closer, err := logging.Init(logging.Options{Path: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	client, err := triage.NewClient(cfg.APIURL, triage.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("init triage client: %w", err)
	}

	log.Info().
		Str("api", client.BaseURL()).
		Str("log_level", cfg.LogLevel).
		Dur("request_timeout", cfg.RequestTimeout).
		Msg("triagedesk starting")

	return &env{cfg: cfg, client: client, closer: closer}, nil
}

// Run boots the triagedesk TUI until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	defer e.closer.Close()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		log.Warn().Err(err).Msg("preferences unavailable, using defaults")
	}

	ctrl := session.New(e.client, session.Options{Greeting: e.cfg.Greeting})
	log.Info().Str("user_id", ctrl.Snapshot().UserID).Msg("session created")

	uiOpts := ui.Options{
		Context:            ctx,
		Session:            ctrl,
		Startup:            ctrl.Initialize(),
		ThemeName:          userPrefs.Theme,
		PrefsPath:          opts.PrefsPath,
		LogPath:            e.cfg.LogFile,
		APIURL:             e.client.BaseURL(),
		ConsoleFallbackURL: e.cfg.ConsoleFallbackURL,
	}
	if err := ui.Run(uiOpts); err != nil {
		log.Error().Err(err).Msg("ui exited with error")
		return err
	}
	log.Info().Msg("triagedesk stopped")
	return nil
}

// RunCheck probes the backend, writes the report to w and reports whether the
// backend is usable.
func RunCheck(ctx context.Context, opts Options, w io.Writer) (bool, error) {
	e, err := setup(opts)
	if err != nil {
		return false, err
	}
	defer e.closer.Close()

	report := Check(ctx, e.client, e.client.BaseURL())
	if _, err := report.WriteTo(w); err != nil {
		return false, fmt.Errorf("write report: %w", err)
	}
	return report.Healthy(), nil
}
