package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"StockLens/internal/scheduler"
	"StockLens/internal/server"
)

var serveCMD = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and the scheduled listing refresh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfgPath)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a.warmListing(ctx)

		sched := scheduler.New(ctx, a.directory, a.cfg.Listing.Timeout*2, a.log)
		if err := sched.Register(a.cfg.Listing.RefreshCron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		srv := server.New(server.Config{
			Addr:      a.cfg.Addr(),
			Log:       a.log,
			Dashboard: a.service,
			Listing:   a.directory,
			UserName:  a.cfg.UserName,
		})

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()
		a.log.Info().Str("next_listing_refresh", sched.Next().Format(time.RFC3339)).Msg("StockLens is running")

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		a.log.Info().Msg("shutdown signal received, stopping...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
