package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 20 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := opts.container(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			cfg := c.Config()
			servers := []*http.Server{{Addr: cfg.HTTP.Addr, Handler: c.Router()}}
			if cfg.Metrics.Enabled && cfg.Metrics.Addr != "" {
				mux := http.NewServeMux()
				mux.Handle(cfg.Metrics.Path, c.Metrics().Handler())
				servers = append(servers, &http.Server{Addr: cfg.Metrics.Addr, Handler: mux})
			}
			return serve(ctx, servers...)
		},
	}
}

// serve runs every server until ctx is cancelled or one of them fails,
// then shuts all of them down.
func serve(ctx context.Context, servers ...*http.Server) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, srv := range servers {
		g.Go(func() error {
			log.Printf("serve: listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen on %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Printf("serve: shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
