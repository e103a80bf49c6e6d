package commands

import (
	"context"

	"github.com/spf13/cobra"

	"forumgraph/internal/graph"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every node and relationship from the graph",
	Long: `Detach-deletes the whole graph. Required before re-importing when
source rows were removed, since the loader never prunes stale edges.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		driver, err := connectGraph(ctx)
		if err != nil {
			return err
		}
		defer driver.Close(ctx)

		return graph.NewLoader(driver, cfg.ChunkSize).Clear(ctx)
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
