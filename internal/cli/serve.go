package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rileyhilliard/procdash/internal/backend"
	"github.com/rileyhilliard/procdash/internal/errors"
	"github.com/spf13/cobra"
)

// ServeOptions holds the flags of the serve command.
type ServeOptions struct {
	Backend BackendFlags
	Listen  string
	Demo    bool
}

var serveOpts ServeOptions

const shutdownGrace = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the backend API locally (demo or relay)",
	Long: `Serve the backend HTTP API on a local address.

With --demo, an in-memory backend with a few synthetic processes is served,
which is handy for trying the dashboard. Without it, requests are relayed to
the configured backend, e.g. to share an SSH-tunneled backend with other
local tools.

Examples:
  procdash serve --demo
  procdash serve --demo --listen 127.0.0.1:9000
  procdash serve --ssh lab --url http://127.0.0.1:8787 --listen 127.0.0.1:18787`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCommand(cmd.Context(), cmd.OutOrStdout(), serveOpts, nil)
	},
}

func init() {
	AddBackendFlags(serveCmd, &serveOpts.Backend)
	serveCmd.Flags().StringVar(&serveOpts.Listen, "listen", "127.0.0.1:8787", "address to listen on")
	serveCmd.Flags().BoolVar(&serveOpts.Demo, "demo", false, "serve an in-memory demo backend")
}

// serveCommand serves until ctx is done. ready, when set, receives the bound
// address once the listener is up.
func serveCommand(ctx context.Context, stdout io.Writer, opts ServeOptions, ready chan<- string) error {
	e, err := loadEnv("serve", &opts.Backend)
	if err != nil {
		return err
	}
	defer e.Close()

	var b backend.Backend
	source := "demo backend"
	if opts.Demo {
		b = backend.NewDemo(GetVersion())
	} else {
		client, err := e.backend()
		if err != nil {
			return err
		}
		b = client
		source = e.label()
	}

	ln, err := net.Listen("tcp", opts.Listen)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't listen on "+opts.Listen,
			"Pick a free address with --listen.")
	}

	srv := &http.Server{
		Handler:           backend.NewHandler(b, e.log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	addr := ln.Addr().String()
	e.log.Info("serving %s on %s", source, addr)
	fmt.Fprintf(stdout, "Serving %s on http://%s (Ctrl+C to stop)\n", source, addr)
	if ready != nil {
		ready <- addr
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return errors.WrapWithCode(err, errors.ErrBackend, "Server stopped", "")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		e.log.Warn("shutdown: %v", err)
	}
	e.log.Info("server stopped")
	return nil
}
