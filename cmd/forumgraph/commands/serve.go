package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"forumgraph/internal/api"
	"forumgraph/internal/graph"
	"forumgraph/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only query API over the loaded graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := logger.Get()

		driver, err := connectGraph(ctx)
		if err != nil {
			return err
		}
		defer driver.Close(context.Background())

		router := api.NewRouter(graph.NewReader(driver), log, cfg.IsProduction())

		log.Info("API server started", zap.String("port", cfg.Port))
		return api.Serve(ctx, ":"+cfg.Port, router)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
