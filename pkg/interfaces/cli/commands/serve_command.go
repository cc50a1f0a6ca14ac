package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/bomengine/pkg/config"
	thttp "github.com/vsinha/bomengine/pkg/interfaces/http"
	"github.com/vsinha/bomengine/pkg/logger"
)

type serveFlags struct {
	addr            string
	readTimeout     time.Duration
	requestTimeout  time.Duration
	shutdownTimeout time.Duration
}

func (f *serveFlags) defaults(cmd *cobra.Command) {
	env := config.C()
	if env == nil {
		return
	}
	if !cmd.Flags().Changed("addr") {
		f.addr = env.Server.Address()
	}
	if !cmd.Flags().Changed("read-timeout") {
		f.readTimeout = env.Server.ReadTimeout()
	}
	if !cmd.Flags().Changed("request-timeout") {
		f.requestTimeout = env.Server.RequestTimeout()
	}
	if !cmd.Flags().Changed("shutdown-timeout") {
		f.shutdownTimeout = env.Server.ShutdownTimeout()
	}
}

func newServeCommand(r *rootCommand) *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the BOM engine over HTTP",
		Long: `Serve exposes explosion, scaling, by-product and yield operations as a JSON
API under /api/v1/boms. The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags.defaults(cmd)
			return r.withSource(cmd, func(ctx context.Context, src *dataSource) error {
				server := &http.Server{
					Addr:              flags.addr,
					Handler:           thttp.NewRouter(src.service, flags.requestTimeout),
					ReadHeaderTimeout: flags.readTimeout,
				}
				return runServer(ctx, server, flags.shutdownTimeout)
			})
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "localhost:8080", "Listen address")
	cmd.Flags().DurationVar(&flags.readTimeout, "read-timeout", 5*time.Second, "Request header read timeout")
	cmd.Flags().DurationVar(&flags.requestTimeout, "request-timeout", 30*time.Second, "Per-request engine timeout")
	cmd.Flags().DurationVar(&flags.shutdownTimeout, "shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	return cmd
}

// runServer serves until ctx is cancelled, then drains in-flight requests
func runServer(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) error {
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		logger.Info(egCtx, "🚀 bom engine listening", logger.String("address", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		return gracefulShutdown(server, shutdownTimeout)
	})

	return eg.Wait()
}

//nolint:contextcheck
func gracefulShutdown(server *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(
		context.Background(), // do not inherit cancellation from ctx
		timeout,
	)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error(ctx, "❌ Error during server shutdown", logger.ErrorF(err))
		return err
	}
	logger.Info(ctx, "✅ Server stopped")
	return nil
}
