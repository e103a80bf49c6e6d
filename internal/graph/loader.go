package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"forumgraph/internal/chunk"
	"forumgraph/internal/model"
	"forumgraph/pkg/errors"
	"forumgraph/pkg/logger"
)

// Loader upserts a normalized dataset into Neo4j. Nodes are idempotent
// under reload; each chunk runs in its own write transaction and a failed
// chunk is logged, recorded and skipped so the rest of the run proceeds.
type Loader struct {
	driver    neo4j.DriverWithContext
	chunkSize int
	logger    *zap.Logger
}

// NewLoader creates a loader writing batches of chunkSize records.
func NewLoader(driver neo4j.DriverWithContext, chunkSize int) *Loader {
	return &Loader{
		driver:    driver,
		chunkSize: chunkSize,
		logger:    logger.Get(),
	}
}

// EnsureIndexes creates the per-type key indexes. Must run before any bulk
// load; index creation is idempotent.
func (l *Loader) EnsureIndexes(ctx context.Context) error {
	session := l.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, stmt := range indexStatements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return errors.NewIndexCreationFailed(stmt, err)
		}
	}
	l.logger.Info("Graph indexes ensured", zap.Int("indexes", len(indexStatements)))
	return nil
}

// Clear removes every node and relationship. Never called implicitly.
func (l *Loader) Clear(ctx context.Context) error {
	session := l.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	if _, err := session.Run(ctx, clearGraph, nil); err != nil {
		return errors.NewBatchLoadFailed("all", "clear", 0, err)
	}
	l.logger.Info("Graph cleared")
	return nil
}

// entityLoad couples one entity type's batch rows with the statements that
// upsert its nodes and connect its edges.
type entityLoad struct {
	name       string
	rows       []map[string]any
	statements []string
}

// LoadDataset loads one platform's entities in dependency order: every
// step only connects to nodes created by earlier steps.
func (l *Loader) LoadDataset(ctx context.Context, ds *model.Dataset, report *Report) {
	platform := ds.Site.Name

	if err := l.createPlatform(ctx, ds.Site); err != nil {
		// Without the platform node nothing else can connect; record every
		// entity type as skipped rather than writing orphans.
		l.logger.Error("Platform node creation failed, skipping dataset",
			zap.String("platform", platform),
			zap.Error(err),
		)
		report.Add(platform, "platform", 1, 1, err)
		return
	}
	report.Add(platform, "platform", 1, 1, nil)

	loads := []entityLoad{
		{"groups", groupParams(ds), []string{upsertGroups}},
		{"users", userParams(ds), []string{upsertUsers, linkGlobalUsers}},
		{"tags", tagParams(ds), []string{upsertTags}},
		{"categories", categoryParams(ds), []string{upsertCategories, linkCategoryParents, linkCategoryAccess}},
		{"topics", topicParams(ds), []string{upsertTopics, linkTopicCreators, linkTopicCategories, linkTopicTags}},
		{"posts", postParams(ds), []string{upsertPosts, linkPostCreators, linkPostTopics}},
		{"replies", replyParams(ds), []string{createReplies}},
		{"quotes", quoteParams(ds), []string{createQuotes}},
		{"likes", likeParams(ds), []string{createLikes}},
		{"languages", languageParams(ds), []string{upsertLanguages}},
		{"codes", codeParams(ds), []string{upsertCodes, linkCodeCreators, linkCodeParents}},
		{"code_names", codeNameParams(ds), []string{upsertCodeNames}},
		{"annotations", annotationParams(ds), []string{upsertAnnotations, linkAnnotationCodes, linkAnnotationPosts, linkAnnotationCreators}},
	}

	for _, load := range loads {
		l.loadEntity(ctx, report, platform, load)
	}
}

func (l *Loader) createPlatform(ctx context.Context, site model.Site) error {
	session := l.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, upsertPlatform, map[string]any{
			"name": site.Name,
			"url":  site.URL,
		})
	})
	return err
}

// loadEntity writes one entity type chunk by chunk, in chunk order. Each
// chunk is one transaction; a failure skips only that chunk.
func (l *Loader) loadEntity(ctx context.Context, report *Report, platform string, load entityLoad) {
	batches := chunk.Split(load.rows, l.chunkSize)

	for i, batch := range batches {
		chunkNo := i + 1
		err := l.writeBatch(ctx, platform, load.statements, batch)
		if err != nil {
			wrapped := errors.NewBatchLoadFailed(platform, load.name, chunkNo, err)
			l.logger.Error("Batch load failed, skipping chunk",
				zap.String("platform", platform),
				zap.String("entity", load.name),
				zap.Int("chunk", chunkNo),
				zap.Error(err),
			)
			report.Add(platform, load.name, chunkNo, len(batch), wrapped)
			continue
		}
		report.Add(platform, load.name, chunkNo, len(batch), nil)
		l.logger.Debug("Batch loaded",
			zap.String("platform", platform),
			zap.String("entity", load.name),
			zap.Int("chunk", chunkNo),
			zap.Int("records", len(batch)),
		)
	}

	l.logger.Info("Entity loaded",
		zap.String("platform", platform),
		zap.String("entity", load.name),
		zap.Int("records", len(load.rows)),
		zap.Int("chunks", len(batches)),
	)
}

func (l *Loader) writeBatch(ctx context.Context, platform string, statements []string, batch []map[string]any) error {
	session := l.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		params := map[string]any{
			"batch":    batch,
			"platform": platform,
		}
		for _, stmt := range statements {
			result, err := tx.Run(ctx, stmt, params)
			if err != nil {
				return nil, err
			}
			if _, err := result.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}
