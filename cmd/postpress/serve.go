package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newServeCommand(state *cliState) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog publishing HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				state.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, state, nil)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// runServe serves until ctx is done, then drains requests and pending
// notifications. ready, when set, receives the bound address.
func runServe(ctx context.Context, state *cliState, ready chan<- string) error {
	module, err := moduleBuilder(state.cfg, state.opts)
	if err != nil {
		return err
	}
	handler, err := module.Module.Handler()
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", state.cfg.Server.Addr)
	if err != nil {
		return err
	}
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	module.Logger.Info("server.started", "addr", listener.Addr().String(), "root", state.cfg.Storage.Root)
	if ready != nil {
		ready <- listener.Addr().String()
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = module.Module.Close(context.Background())
			return err
		}
	case <-ctx.Done():
	}

	timeout := state.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	module.Logger.Info("server.stopping")
	err = errors.Join(server.Shutdown(shutdownCtx), module.Module.Close(shutdownCtx))
	module.Logger.Info("server.stopped")
	return err
}
