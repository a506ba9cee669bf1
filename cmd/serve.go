package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitelabel/annotator/internal/api"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local annotation API",
		Long: `Start the HTTP API used by the annotation dashboard.

The server binds to 127.0.0.1 by default and serves one annotator.

Example:
  annotator serve
  annotator serve --port 9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if host == "" {
				host = a.cfg.Server.Host
			}
			if port == 0 {
				port = a.cfg.Server.Port
			}
			if a.cfg.Log.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			srv := &http.Server{
				Addr:              fmt.Sprintf("%s:%d", host, port),
				Handler:           api.NewRouter(a.services, a.cfg, a.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(stop)

			serverErr := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			a.logger.Info("Server started",
				zap.String("addr", srv.Addr),
				zap.String("video_dir", a.cfg.Paths.VideoDir),
				zap.Int("videos", a.services.Catalog.Len()),
			)

			var runErr error
			select {
			case <-stop:
				a.logger.Info("Shutting down server")
			case err := <-serverErr:
				runErr = fmt.Errorf("server error: %w", err)
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				a.logger.Error("Server forced to shutdown", zap.Error(err))
				return err
			}

			a.logger.Info("Server stopped")
			return runErr
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "server host (overrides server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "server port (overrides server.port)")
	return cmd
}
