package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"forumgraph/pkg/errors"
	"forumgraph/pkg/logger"
)

// Deriver computes aggregate relationships from already-loaded graph
// structure. No row source is consulted; everything is pushed down to the
// store as single aggregation queries.
type Deriver struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewDeriver creates a deriver over the given graph connection.
func NewDeriver(driver neo4j.DriverWithContext) *Deriver {
	return &Deriver{driver: driver, logger: logger.Get()}
}

// Cypher for derived edges. Unordered pairs are canonicalized by element
// id so each pair is computed and stored exactly once.

const deriveTalkedTo = `
MATCH (u1:user {platform: $platform})-[:CREATED]->(:post)-[r:IS_REPLY_TO]-(:post)<-[:CREATED]-(u2:user {platform: $platform})
WHERE elementId(u1) < elementId(u2)
WITH u1, u2, count(r) AS interactions
MERGE (u1)-[rel:TALKED_TO]->(u2)
SET rel.count = interactions`

const deriveQuoted = `
MATCH (u1:user {platform: $platform})-[:CREATED]->(:post)-[r:CONTAINS_QUOTE_FROM]-(:post)<-[:CREATED]-(u2:user {platform: $platform})
WHERE elementId(u1) < elementId(u2)
WITH u1, u2, count(r) AS interactions
MERGE (u1)-[rel:QUOTED]->(u2)
SET rel.count = interactions`

const deriveTalkedOrQuoted = `
MATCH (u1:user {platform: $platform})-[:CREATED]->(:post)-[r:IS_REPLY_TO|CONTAINS_QUOTE_FROM]-(:post)<-[:CREATED]-(u2:user {platform: $platform})
WHERE elementId(u1) < elementId(u2)
WITH u1, u2, count(r) AS interactions
MERGE (u1)-[rel:TALKED_OR_QUOTED]->(u2)
SET rel.count = interactions`

const deriveGlobalTalkedTo = `
MATCH (g1:globaluser)<-[:IS_GLOBAL_USER]-(:user)-[:CREATED]->(:post)-[r:IS_REPLY_TO]-(:post)<-[:CREATED]-(:user)-[:IS_GLOBAL_USER]->(g2:globaluser)
WHERE elementId(g1) < elementId(g2)
WITH g1, g2, count(r) AS interactions
MERGE (g1)-[rel:TALKED_TO]->(g2)
SET rel.count = interactions`

const deriveGlobalQuoted = `
MATCH (g1:globaluser)<-[:IS_GLOBAL_USER]-(:user)-[:CREATED]->(:post)-[r:CONTAINS_QUOTE_FROM]-(:post)<-[:CREATED]-(:user)-[:IS_GLOBAL_USER]->(g2:globaluser)
WHERE elementId(g1) < elementId(g2)
WITH g1, g2, count(r) AS interactions
MERGE (g1)-[rel:QUOTED]->(g2)
SET rel.count = interactions`

const deriveGlobalTalkedOrQuoted = `
MATCH (g1:globaluser)<-[:IS_GLOBAL_USER]-(:user)-[:CREATED]->(:post)-[r:IS_REPLY_TO|CONTAINS_QUOTE_FROM]-(:post)<-[:CREATED]-(:user)-[:IS_GLOBAL_USER]->(g2:globaluser)
WHERE elementId(g1) < elementId(g2)
WITH g1, g2, count(r) AS interactions
MERGE (g1)-[rel:TALKED_OR_QUOTED]->(g2)
SET rel.count = interactions`

const markCorpusTags = `
MATCH (t:tag {platform: $platform})
WHERE t.name STARTS WITH $prefix
SET t:corpus`

const linkCorpusCodes = `
MATCH (corpus:corpus {platform: $platform})<-[:TAGGED_WITH]-(:topic)<-[:IN_TOPIC]-(p:post)
MATCH (p)<-[:ANNOTATES]-(:annotation)-[:REFERS_TO]->(c:code)
MERGE (c)-[:IN_CORPUS]->(corpus)`

const resolveCodeNames = `
MATCH (c:code {platform: $platform})-[:HAS_CODENAME]->(cn:codename)-[:IN_LANGUAGE]->(:language {platform: $platform, locale: $locale})
SET c.name = cn.name`

const deriveCooccurrence = `
MATCH (corpus:corpus {platform: $platform})<-[:TAGGED_WITH]-(:topic)<-[:IN_TOPIC]-(p:post)
MATCH (p)<-[:ANNOTATES]-(:annotation)-[:REFERS_TO]->(c1:code)
MATCH (p)<-[:ANNOTATES]-(:annotation)-[:REFERS_TO]->(c2:code)
WHERE elementId(c1) < elementId(c2)
WITH corpus, c1, c2, count(DISTINCT p) AS cooccurs
MERGE (c1)-[r:COOCCURS {corpus: corpus.name}]->(c2)
SET r.count = cooccurs`

// Run computes every derived graph. Platform-scoped steps run per
// platform, then the cross-platform interaction graphs. Steps are
// independent: a failure is logged and returned but never blocks the
// remaining steps.
func (d *Deriver) Run(ctx context.Context, platforms []string, corpusPrefix, locale string) []error {
	var errs []error

	for _, platform := range platforms {
		steps := []struct {
			name   string
			query  string
			params map[string]any
		}{
			{"mark_corpus_tags", markCorpusTags, map[string]any{"platform": platform, "prefix": corpusPrefix}},
			{"link_corpus_codes", linkCorpusCodes, map[string]any{"platform": platform}},
			{"resolve_code_names", resolveCodeNames, map[string]any{"platform": platform, "locale": locale}},
			{"talked_to", deriveTalkedTo, map[string]any{"platform": platform}},
			{"quoted", deriveQuoted, map[string]any{"platform": platform}},
			{"talked_or_quoted", deriveTalkedOrQuoted, map[string]any{"platform": platform}},
			{"code_cooccurrence", deriveCooccurrence, map[string]any{"platform": platform}},
		}
		for _, step := range steps {
			if err := d.runStep(ctx, step.name, platform, step.query, step.params); err != nil {
				errs = append(errs, err)
			}
		}
	}

	globalSteps := []struct {
		name  string
		query string
	}{
		{"global_talked_to", deriveGlobalTalkedTo},
		{"global_quoted", deriveGlobalQuoted},
		{"global_talked_or_quoted", deriveGlobalTalkedOrQuoted},
	}
	for _, step := range globalSteps {
		if err := d.runStep(ctx, step.name, "all", step.query, nil); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

func (d *Deriver) runStep(ctx context.Context, step, platform, query string, params map[string]any) error {
	session := d.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		wrapped := errors.NewDerivationFailed(step, platform, err)
		d.logger.Error("Derivation step failed, skipping",
			zap.String("step", step),
			zap.String("platform", platform),
			zap.Error(err),
		)
		return wrapped
	}

	d.logger.Info("Derivation step complete",
		zap.String("step", step),
		zap.String("platform", platform),
	)
	return nil
}
