package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/grammarviz/internal/config"
	"github.com/unkn0wn-root/grammarviz/internal/gateway"
	"github.com/unkn0wn-root/grammarviz/internal/logging"
	"github.com/unkn0wn-root/grammarviz/internal/session"
	"github.com/unkn0wn-root/grammarviz/internal/stepcache"
	"github.com/unkn0wn-root/grammarviz/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

// app holds the services every command needs.
type app struct {
	settings config.Settings
	handle   config.SettingsHandle
	log      *zap.Logger
	client   *gateway.Client
	tracer   telemetry.Tracer
}

type appOptions struct {
	// logs go to stderr when no log file is configured
	stderrLogs bool
	getenv     func(string) string
}

func newApp(cmd *cobra.Command, opts *globalOptions, ao appOptions) (*app, error) {
	stderr := cmd.ErrOrStderr()
	settings, handle, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(stderr, "settings: %v (using defaults)\n", err)
		settings = config.DefaultSettings()
	}
	settings, err = opts.override(cmd.Flags(), settings)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Config{
		File:   settings.LogFile,
		Level:  settings.LogLevel,
		Debug:  opts.debug,
		Stderr: ao.stderrLogs && settings.LogFile == "" && opts.debug,
	})
	if err != nil {
		return nil, err
	}

	client, err := newClient(settings)
	if err != nil {
		logging.Sync(log)
		return nil, err
	}
	client.SetLogger(log.Named("gateway"))

	tcfg, err := telemetry.ConfigFromEnv(ao.getenv)
	if err != nil {
		log.Warn("ignoring malformed telemetry settings", zap.Error(err))
	}
	tcfg.Version = version
	tracer, err := telemetry.New(tcfg)
	if err != nil {
		log.Warn("telemetry disabled", zap.Error(err))
		tracer = telemetry.Noop()
	}
	client.SetTracer(tracer)

	log.Info("starting",
		zap.String("version", version),
		zap.String("endpoint", client.Endpoint()),
		zap.String("settings", handle.Path),
	)
	return &app{
		settings: settings,
		handle:   handle,
		log:      log,
		client:   client,
		tracer:   tracer,
	}, nil
}

func newClient(s config.Settings) (*gateway.Client, error) {
	base := s.BaseURL
	if base == "" {
		resolved, err := gateway.ResolveBaseURL(s.Host)
		if err != nil {
			return nil, err
		}
		base = resolved
	}
	return gateway.NewClient(gateway.Options{
		BaseURL:            base,
		Timeout:            s.Timeout.Std(),
		InsecureSkipVerify: s.Insecure,
		ProxyURL:           s.Proxy,
		HTTP2:              s.HTTP2,
	})
}

// controller builds a session. interval overrides the configured step
// interval when non-negative.
func (a *app) controller(interval time.Duration) *session.Controller {
	if interval < 0 {
		interval = a.settings.StepInterval.Std()
	}
	return session.New(a.client,
		session.WithStepInterval(interval),
		session.WithLogger(a.log.Named("session")),
		session.WithStepCache(stepcache.NewSteps(stepcache.WithLimit(a.settings.CacheLimit))),
		session.WithInitialType(a.settings.AnalysisType()),
	)
}

func (a *app) saveSettings(s config.Settings) error {
	return config.SaveSettings(s, a.handle)
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.log.Warn("telemetry shutdown", zap.Error(err))
	}
	logging.Sync(a.log)
}

func readGrammar(in io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read grammar from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read grammar: %w", err)
	}
	return string(data), nil
}
