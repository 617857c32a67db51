package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpapi "github.com/messiay/protein-refinary/internal/interfaces/http"
)

func newServeCmd(rt *runtimeContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the evolution service with its JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := buildPipeline(ctx, rt.cfg, rt.log)
			if err != nil {
				return err
			}
			defer p.close()

			handler := httpapi.NewHandler(p.manager, p.history, p.preparer, rt.log)
			server := httpapi.NewServer(rt.cfg.Server, httpapi.NewRouter(handler, p.registry), rt.log)

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.Server.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}
