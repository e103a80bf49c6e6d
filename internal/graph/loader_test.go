package graph

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"forumgraph/internal/model"
)

// These tests require a running Neo4j instance at bolt://localhost:7687
// with the default neo4j/password credentials.

func createTestDriver() (neo4j.DriverWithContext, error) {
	uri := "bolt://localhost:7687"
	user := "neo4j"
	password := "password"

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}

	return driver, nil
}

// testDataset builds a two-user platform with one topic, two posts, a
// reply, a quote and a like. The platform name is unique per run so tests
// can clean up after themselves.
func testDataset(platform string) *model.Dataset {
	now := time.Now()
	ds := model.NewDataset(model.Site{Name: platform, URL: "https://" + platform + ".example.org"})

	ds.Users[1] = &model.User{ID: 1, Username: "alice", Email: "alice@" + platform + ".test", Groups: []int64{}}
	ds.Users[2] = &model.User{ID: 2, Username: "bob", Email: "bob@" + platform + ".test", Groups: []int64{}}

	catID := int64(5)
	ds.Categories[5] = &model.Category{ID: 5, Name: "general", PermittedGroups: []int64{}, CreatedAt: now, UpdatedAt: now}
	ds.Topics[20] = &model.Topic{ID: 20, Title: "Welcome", UserID: 1, CategoryID: &catID, Tags: []int64{}, CreatedAt: now, UpdatedAt: now}

	ds.Posts[200] = &model.Post{ID: 200, UserID: 1, TopicID: 20, PostNumber: 1, Raw: "hello", WordCount: 1, CreatedAt: now, UpdatedAt: now, IsReplyTo: []int64{}, QuotesPosts: []int64{}, IsLikedBy: []int64{2}}
	ds.Posts[201] = &model.Post{ID: 201, UserID: 2, TopicID: 20, PostNumber: 2, Raw: "hi back", WordCount: 2, CreatedAt: now, UpdatedAt: now, IsReplyTo: []int64{200}, QuotesPosts: []int64{200}, IsLikedBy: []int64{}}

	ds.Replies = []model.Reply{{ID: 0, PostID: 201, ReplyToPostID: 200}}
	ds.Quotes = []model.Quote{{ID: 0, PostID: 201, QuotedPostID: 200}}
	ds.Likes = []model.Like{{ID: 0, PostID: 200, UserID: 2}}

	return ds
}

func cleanupPlatform(t *testing.T, driver neo4j.DriverWithContext, platform string) {
	t.Helper()
	ctx := context.Background()
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)
	_, _ = session.Run(ctx, "MATCH (n {platform: $platform}) DETACH DELETE n", map[string]any{"platform": platform})
	_, _ = session.Run(ctx, "MATCH (p:platform {name: $platform}) DETACH DELETE p", map[string]any{"platform": platform})
	_, _ = session.Run(ctx, "MATCH (g:globaluser) WHERE g.email ENDS WITH $suffix DETACH DELETE g", map[string]any{"suffix": "@" + platform + ".test"})
}

func countQuery(ctx context.Context, driver neo4j.DriverWithContext, query string, params map[string]any) (int64, error) {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return 0, err
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, err
	}
	count, _ := record.Values[0].(int64)
	return count, nil
}

func TestLoader_LoadDataset(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	platform := "test-import-" + time.Now().Format("20060102150405")
	defer cleanupPlatform(t, driver, platform)

	loader := NewLoader(driver, 100)
	if err := loader.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	report := NewReport("test-run")
	loader.LoadDataset(ctx, testDataset(platform), report)

	if failures := report.Failures(); len(failures) > 0 {
		t.Fatalf("LoadDataset had %d failed batches, first: %v", len(failures), failures[0].Error)
	}

	checks := []struct {
		name  string
		query string
		want  int64
	}{
		{"users", "MATCH (u:user {platform: $platform}) RETURN count(u)", 2},
		{"posts", "MATCH (p:post {platform: $platform}) RETURN count(p)", 2},
		{"created", "MATCH (:user {platform: $platform})-[r:CREATED]->(:post) RETURN count(r)", 2},
		{"in_topic", "MATCH (:post {platform: $platform})-[r:IN_TOPIC]->(:topic) RETURN count(r)", 2},
		{"is_reply_to", "MATCH (:post {platform: $platform})-[r:IS_REPLY_TO]->(:post) RETURN count(r)", 1},
		{"contains_quote_from", "MATCH (:post {platform: $platform})-[r:CONTAINS_QUOTE_FROM]->(:post) RETURN count(r)", 1},
		{"likes", "MATCH (:user {platform: $platform})-[r:LIKES]->(:post) RETURN count(r)", 1},
		{"in_category", "MATCH (:topic {platform: $platform})-[r:IN_CATEGORY]->(:category) RETURN count(r)", 1},
		{"globalusers", "MATCH (g:globaluser)<-[:IS_GLOBAL_USER]-(:user {platform: $platform}) RETURN count(g)", 2},
	}
	for _, c := range checks {
		got, err := countQuery(ctx, driver, c.query, map[string]any{"platform": platform})
		if err != nil {
			t.Fatalf("count query %s failed: %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s: expected %d, got %d", c.name, c.want, got)
		}
	}
}

func TestLoader_Idempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	platform := "test-idem-" + time.Now().Format("20060102150405")
	defer cleanupPlatform(t, driver, platform)

	loader := NewLoader(driver, 100)
	if err := loader.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	// Load the same dataset twice; nothing may be duplicated.
	for i := 0; i < 2; i++ {
		report := NewReport(fmt.Sprintf("test-run-%d", i))
		loader.LoadDataset(ctx, testDataset(platform), report)
		if failures := report.Failures(); len(failures) > 0 {
			t.Fatalf("load %d had %d failed batches", i, len(failures))
		}
	}

	got, err := countQuery(ctx, driver,
		"MATCH (p:post {platform: $platform}) RETURN count(p)",
		map[string]any{"platform": platform})
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if got != 2 {
		t.Errorf("expected 2 posts after reload, got %d", got)
	}

	got, err = countQuery(ctx, driver,
		"MATCH (:post {platform: $platform})-[r:IS_REPLY_TO]->(:post) RETURN count(r)",
		map[string]any{"platform": platform})
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if got != 1 {
		t.Errorf("expected 1 reply edge after reload, got %d", got)
	}
}

func TestLoader_GlobalUserSharedEmail(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	stamp := time.Now().Format("20060102150405")
	platformA := "test-global-a-" + stamp
	platformB := "test-global-b-" + stamp
	email := "shared-" + stamp + "@global.test"
	defer func() {
		cleanupPlatform(t, driver, platformA)
		cleanupPlatform(t, driver, platformB)
		session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)
		_, _ = session.Run(ctx, "MATCH (g:globaluser {email: $email}) DETACH DELETE g", map[string]any{"email": email})
	}()

	loader := NewLoader(driver, 100)
	if err := loader.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	// The same email on two platforms must resolve to one global identity.
	for _, platform := range []string{platformA, platformB} {
		ds := model.NewDataset(model.Site{Name: platform, URL: "https://" + platform + ".example.org"})
		ds.Users[1] = &model.User{ID: 1, Username: "alice", Email: email, Groups: []int64{}}
		report := NewReport("test-run")
		loader.LoadDataset(ctx, ds, report)
		if failures := report.Failures(); len(failures) > 0 {
			t.Fatalf("load on %s had %d failed batches", platform, len(failures))
		}
	}

	checks := []struct {
		name  string
		query string
		want  int64
	}{
		{"globaluser nodes", "MATCH (g:globaluser {email: $email}) RETURN count(g)", 1},
		{"identity edges", "MATCH (:globaluser {email: $email})<-[r:IS_GLOBAL_USER]-(:user) RETURN count(r)", 2},
		{"account edges", "MATCH (:globaluser {email: $email})-[r:HAS_ACCOUNT_ON]->(:platform) RETURN count(r)", 2},
	}
	for _, c := range checks {
		got, err := countQuery(ctx, driver, c.query, map[string]any{"email": email})
		if err != nil {
			t.Fatalf("count query %s failed: %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s: expected %d, got %d", c.name, c.want, got)
		}
	}
}

func TestDeriver_InteractionGraph(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	platform := "test-derive-" + time.Now().Format("20060102150405")
	defer cleanupPlatform(t, driver, platform)

	loader := NewLoader(driver, 100)
	if err := loader.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}
	report := NewReport("test-run")
	loader.LoadDataset(ctx, testDataset(platform), report)
	if failures := report.Failures(); len(failures) > 0 {
		t.Fatalf("LoadDataset had %d failed batches", len(failures))
	}

	if errs := NewDeriver(driver).Run(ctx, []string{platform}, "ethno-", "en"); len(errs) > 0 {
		t.Fatalf("derivation had %d failed steps, first: %v", len(errs), errs[0])
	}

	// One reply and one quote between alice and bob.
	got, err := countQuery(ctx, driver,
		"MATCH (:user {platform: $platform})-[r:TALKED_TO]-(:user) RETURN count(DISTINCT r)",
		map[string]any{"platform": platform})
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if got != 1 {
		t.Errorf("expected 1 TALKED_TO edge, got %d", got)
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)
	result, err := session.Run(ctx,
		"MATCH (:user {platform: $platform})-[r:TALKED_OR_QUOTED]-(:user) RETURN DISTINCT r.count",
		map[string]any{"platform": platform})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		t.Fatalf("expected one TALKED_OR_QUOTED edge: %v", err)
	}
	if count, _ := record.Values[0].(int64); count != 2 {
		t.Errorf("expected TALKED_OR_QUOTED count 2, got %d", count)
	}
}
