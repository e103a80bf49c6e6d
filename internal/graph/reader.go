package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Reader answers the read-side queries served by the HTTP API. All queries
// are parameterized pattern matches over the loaded and derived graph.
type Reader struct {
	driver neo4j.DriverWithContext
}

// NewReader creates a reader over the given graph connection.
func NewReader(driver neo4j.DriverWithContext) *Reader {
	return &Reader{driver: driver}
}

// Platform is one imported source.
type Platform struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CorpusTag is a tag marked as a corpus.
type CorpusTag struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	TopicCount int64  `json:"topic_count"`
}

// CodeRef names a code in a result row.
type CodeRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Cooccurrence is one weighted code pair within a corpus.
type Cooccurrence struct {
	Code1 CodeRef `json:"code1"`
	Code2 CodeRef `json:"code2"`
	Count int64   `json:"count"`
}

// UserRef names a user in a result row.
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Interaction is one weighted user pair within a corpus.
type Interaction struct {
	User1 UserRef `json:"user1"`
	User2 UserRef `json:"user2"`
	Count int64   `json:"count"`
}

const queryPlatforms = `
MATCH (p:platform)
RETURN p.name AS name, p.url AS url
ORDER BY name`

const queryCorpora = `
MATCH (t:corpus {platform: $platform})
RETURN t.discourse_id AS id, t.name AS name, t.topic_count AS topic_count
ORDER BY name`

const queryCooccurrence = `
MATCH (tag:tag {name: $tag, platform: $platform})<-[:TAGGED_WITH]-(:topic)<-[:IN_TOPIC]-(p:post)
MATCH (p)<-[:ANNOTATES]-(:annotation)-[:REFERS_TO]->(c1:code)
MATCH (p)<-[:ANNOTATES]-(:annotation)-[:REFERS_TO]->(c2:code)
WHERE elementId(c1) < elementId(c2)
RETURN c1.discourse_id AS code1_id, c1.name AS code1_name,
       c2.discourse_id AS code2_id, c2.name AS code2_name,
       count(DISTINCT p) AS cooccurs
ORDER BY cooccurs DESC`

const queryInteractions = `
MATCH (tag:tag {name: $tag, platform: $platform})<-[:TAGGED_WITH]-(:topic)<-[:IN_TOPIC]-(p:post)
MATCH (u1:user)-[:CREATED]->(p)-[r:IS_REPLY_TO|CONTAINS_QUOTE_FROM]-()<-[:CREATED]-(u2:user)
RETURN u1.discourse_id AS user1_id, u1.username AS user1_name,
       u2.discourse_id AS user2_id, u2.username AS user2_name,
       count(DISTINCT r) AS interactions
ORDER BY interactions DESC`

// Platforms lists every imported platform.
func (r *Reader) Platforms(ctx context.Context) ([]Platform, error) {
	records, err := r.read(ctx, queryPlatforms, nil)
	if err != nil {
		return nil, err
	}
	out := make([]Platform, 0, len(records))
	for _, rec := range records {
		out = append(out, Platform{
			Name: getStringFromRecord(rec, "name"),
			URL:  getStringFromRecord(rec, "url"),
		})
	}
	return out, nil
}

// Corpora lists the corpus tags of one platform.
func (r *Reader) Corpora(ctx context.Context, platform string) ([]CorpusTag, error) {
	records, err := r.read(ctx, queryCorpora, map[string]any{"platform": platform})
	if err != nil {
		return nil, err
	}
	out := make([]CorpusTag, 0, len(records))
	for _, rec := range records {
		out = append(out, CorpusTag{
			ID:         getInt64FromRecord(rec, "id"),
			Name:       getStringFromRecord(rec, "name"),
			TopicCount: getInt64FromRecord(rec, "topic_count"),
		})
	}
	return out, nil
}

// CooccurringCodes returns the weighted code pairs annotated together on
// posts within one corpus tag.
func (r *Reader) CooccurringCodes(ctx context.Context, platform, tag string) ([]Cooccurrence, error) {
	records, err := r.read(ctx, queryCooccurrence, map[string]any{"platform": platform, "tag": tag})
	if err != nil {
		return nil, err
	}
	out := make([]Cooccurrence, 0, len(records))
	for _, rec := range records {
		out = append(out, Cooccurrence{
			Code1: CodeRef{
				ID:   getInt64FromRecord(rec, "code1_id"),
				Name: getStringFromRecord(rec, "code1_name"),
			},
			Code2: CodeRef{
				ID:   getInt64FromRecord(rec, "code2_id"),
				Name: getStringFromRecord(rec, "code2_name"),
			},
			Count: getInt64FromRecord(rec, "cooccurs"),
		})
	}
	return out, nil
}

// InteractionGraph returns the weighted user pairs who replied to or
// quoted each other within one corpus tag.
func (r *Reader) InteractionGraph(ctx context.Context, platform, tag string) ([]Interaction, error) {
	records, err := r.read(ctx, queryInteractions, map[string]any{"platform": platform, "tag": tag})
	if err != nil {
		return nil, err
	}
	out := make([]Interaction, 0, len(records))
	for _, rec := range records {
		out = append(out, Interaction{
			User1: UserRef{
				ID:       getInt64FromRecord(rec, "user1_id"),
				Username: getStringFromRecord(rec, "user1_name"),
			},
			User2: UserRef{
				ID:       getInt64FromRecord(rec, "user2_id"),
				Username: getStringFromRecord(rec, "user2_name"),
			},
			Count: getInt64FromRecord(rec, "interactions"),
		})
	}
	return out, nil
}

func (r *Reader) read(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return result.Collect(ctx)
}
