package cli

import (

	"github.com/rileyhilliard/procdash/internal/backend"
	"github.com/rileyhilliard/procdash/internal/config"
	"github.com/rileyhilliard/procdash/internal/errors"
	"github.com/rileyhilliard/procdash/internal/logger"
	"github.com/rileyhilliard/procdash/internal/ui"
	"github.com/rileyhilliard/procdash/pkg/sshutil"
)

// env is what a command needs after startup: the merged config, its source
// path (empty when running on defaults) and a file logger.
type env struct {
	cfg     *config.Config
	cfgPath string
	log     logger.Logger
	closers []func() error
}

// loadEnv loads and validates the config with flag overrides applied, sets
// the color profile and opens the log file.
func loadEnv(component string, flags *BackendFlags) (*env, error) {
	cfg, path, err := config.LoadOrDefault(Config())
	if err != nil {
		return nil, err
	}
	if flags != nil {
		if err := flags.Apply(cfg); err != nil {
			return nil, err
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	if !noColor {
		ui.ConfigureColors(cfg.UI.Color, stdoutIsTerminal())
	}

	e := &env{cfg: cfg, cfgPath: path}
	if err := e.openLog(component); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *env) openLog(component string) error {
	path := logFile
	if path == "" {
		path = e.cfg.Log.File
	}
	if path == "" {
		path = logger.DefaultPath()
	}

	log, closeFn, err := logger.NewFile(path, component, debugLog || e.cfg.Log.Debug)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't open the log file",
			"Pass --log-file with a writable path")
	}
	logger.SetDefault(log)
	e.log = log
	e.closers = append(e.closers, closeFn)
	return nil
}

// backend returns an HTTP client for the configured backend, tunneled
// through SSH when backend.ssh is set. It is closed with the env.
func (e *env) backend() (*backend.HTTPClient, error) {
	b := e.cfg.Backend
	opts := []backend.ClientOption{backend.WithTimeout(b.Timeout)}
	if b.SSH != "" {
		tunnel := sshutil.NewTunnel(b.SSH, sshutil.Options{
			Insecure: b.SSHInsecure,
			Warn:     func(msg string) { e.log.Warn("ssh: %s", msg) },
		})
		opts = append(opts, backend.WithTunnel(tunnel))
		e.log.Info("tunneling %s through %s", b.URL, b.SSH)
	}

	client, err := backend.NewHTTPClient(b.URL, opts...)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, client.Close)
	return client, nil
}

// label names the backend for headers.
func (e *env) label() string {
	if e.cfg.Backend.SSH != "" {
		return e.cfg.Backend.URL + " via " + e.cfg.Backend.SSH
	}
	return e.cfg.Backend.URL
}

// Close releases everything the env opened, newest first.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
	e.closers = nil
}
