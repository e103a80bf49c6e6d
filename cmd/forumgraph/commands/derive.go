package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"forumgraph/internal/graph"
	"forumgraph/pkg/config"
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Recompute derived graphs over already-loaded data",
	Long: `Recomputes corpus labels, code display names, interaction graphs and
code co-occurrence edges from the loaded graph, without touching the
source databases. Each derivation step is independent; failures are
logged and the remaining steps still run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		manifest, err := config.LoadManifest(cfg.SourcesFile)
		if err != nil {
			return err
		}

		driver, err := connectGraph(ctx)
		if err != nil {
			return err
		}
		defer driver.Close(ctx)

		platforms := make([]string, 0, len(manifest.Sources))
		for _, src := range manifest.Sources {
			platforms = append(platforms, src.Name)
		}

		errs := graph.NewDeriver(driver).Run(ctx, platforms, cfg.CorpusPrefix, cfg.CodeNameLocale)
		if len(errs) > 0 {
			return fmt.Errorf("%d derivation steps failed", len(errs))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deriveCmd)
}
