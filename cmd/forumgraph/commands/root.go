package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/spf13/cobra"

	"forumgraph/pkg/config"
	"forumgraph/pkg/errors"
	"forumgraph/pkg/logger"
)

var (
	// Global flags
	sourcesFile   string
	checkpointDir string

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "forumgraph",
	Short: "forumgraph - forum data to property graph import pipeline",
	Long: `forumgraph extracts forum data (users, groups, topics, posts, likes,
quotes, replies, tags and ethnographic annotation codes) from PostgreSQL
backups, normalizes and redacts it, and loads it into Neo4j as a typed
property graph. Derived interaction and code co-occurrence networks are
computed on top of the loaded graph.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Init(os.Getenv("ENV")); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if sourcesFile != "" {
			cfg.SourcesFile = sourcesFile
		}
		if checkpointDir != "" {
			cfg.CheckpointDir = checkpointDir
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sourcesFile, "sources", "", "Path to the source manifest (default sources.toml)")
	rootCmd.PersistentFlags().StringVar(&checkpointDir, "checkpoint-dir", "", "Directory for JSON chunk checkpoints (disabled when empty)")
}

// connectGraph opens and verifies the Neo4j driver.
func connectGraph(ctx context.Context) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		return nil, errors.NewGraphConnectionFailed(cfg.Neo4jURI, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, errors.NewGraphConnectionFailed(cfg.Neo4jURI, err)
	}
	return driver, nil
}
