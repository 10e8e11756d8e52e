package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toyz/dynapi/internal/logging"
	"github.com/toyz/dynapi/pkg/dynapi/adapters"
	"github.com/toyz/dynapi/pkg/dynapi/registry"
	"github.com/toyz/dynapi/pkg/dynapi/routing"
)

func newServeCommand(opts *options) *cobra.Command {
	var addr, adapter string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the manifest types over HTTP",
		Long: `Materialize the manifest, register every type as a component and mount
the routed ones on the configured web adapter. Calls are answered by a
preview dispatcher that returns each method's bound json payload.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			if addr != "" {
				e.cfg.Server.Addr = addr
			}
			if adapter != "" {
				e.cfg.Server.Adapter = adapter
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, routes, err := e.server(ctx)
			if err != nil {
				return err
			}
			e.diag.Success("Mounted %d routes on %s, listening on %s", routes, srv.Name(), e.cfg.Server.Addr)
			return e.run(ctx, srv)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overriding server.addr")
	cmd.Flags().StringVar(&adapter, "adapter", "", "web adapter: echo, gin or fiber")
	return cmd
}

// server materializes and registers the manifest types and mounts every
// component that has routes. It returns the server and the route count.
func (e *env) server(ctx context.Context) (adapters.Server, int, error) {
	m, handles, err := e.materialize(ctx)
	if err != nil {
		return nil, 0, err
	}

	reg := registry.New(e.logger)
	if err := m.Register(reg, handles, newPreviewDispatcher(e.logger)); err != nil {
		return nil, 0, err
	}
	if err := reg.Preinstantiate(); err != nil {
		return nil, 0, err
	}

	srv, err := adapters.New(e.cfg.Server.Adapter, adapters.WithLogger(e.logger))
	if err != nil {
		return nil, 0, err
	}

	e.diag.Section("Routes")
	e.diag.Indent()
	defer e.diag.Unindent()

	total := 0
	for _, name := range reg.Names() {
		def, _ := reg.Definition(name)
		routes, err := routing.Routes(def.Handle)
		if err != nil {
			return nil, 0, err
		}
		if len(routes) == 0 {
			e.diag.Verbose("%s has no routes", name)
			continue
		}

		inst, err := reg.Get(name)
		if err != nil {
			return nil, 0, err
		}
		mounted, err := srv.Mount(inst)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to mount %s: %w", name, err)
		}
		for _, r := range mounted {
			e.diag.List("%s", r)
		}
		total += len(mounted)
	}
	return srv, total, nil
}

// run starts srv and blocks until it fails or ctx is done, then shuts it
// down within the configured timeout
func (e *env) run(ctx context.Context, srv adapters.Server) error {
	start := time.Now()
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(e.cfg.Server.Addr)
	}()
	e.logger.Info("server started",
		zap.String("adapter", srv.Name()),
		zap.String("addr", e.cfg.Server.Addr))

	select {
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	e.logger.Info("server stopped", logging.Elapsed(start))
	return nil
}
