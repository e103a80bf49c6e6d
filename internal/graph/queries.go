package graph

// Cypher for bulk loading. Every statement is parameterized: batches go in
// through $batch, the platform discriminator through $platform. Nodes are
// MERGEd on their (discourse_id, platform) key so reloads cannot duplicate
// them; relationships are MERGEd between already-loaded endpoints, so a
// failed endpoint match drops the edge rather than failing the chunk.

const upsertPlatform = `
MERGE (p:platform {name: $name})
SET p.url = $url`

const upsertGroups = `
UNWIND $batch AS row
MERGE (g:group {discourse_id: row.id, platform: $platform})
SET g.name = row.name,
    g.visibility_level = row.visibility_level
WITH g
MATCH (p:platform {name: $platform})
MERGE (g)-[:ON_PLATFORM]->(p)`

const upsertUsers = `
UNWIND $batch AS row
MERGE (u:user {discourse_id: row.id, platform: $platform})
SET u.username = row.username,
    u.email = row.email,
    u.consent = row.consent,
    u.consent_updated = row.consent_updated,
    u.groups = row.groups
WITH u, row
MATCH (p:platform {name: $platform})
MERGE (u)-[:ON_PLATFORM]->(p)
WITH u, row
UNWIND row.groups AS gid
MATCH (g:group {discourse_id: gid, platform: $platform})
MERGE (u)-[:IN_GROUP]->(g)`

// Sentinel and system accounts never get a cross-platform identity.
const linkGlobalUsers = `
UNWIND $batch AS row
WITH row
WHERE row.id >= 0 AND row.email <> ''
MATCH (u:user {discourse_id: row.id, platform: $platform})
MERGE (gu:globaluser {email: row.email})
ON CREATE SET gu.username = row.username
MERGE (u)-[:IS_GLOBAL_USER]->(gu)
WITH gu
MATCH (p:platform {name: $platform})
MERGE (gu)-[:HAS_ACCOUNT_ON]->(p)`

const upsertTags = `
UNWIND $batch AS row
MERGE (t:tag {discourse_id: row.id, platform: $platform})
SET t.name = row.name,
    t.topic_count = row.topic_count,
    t.created_at = row.created_at,
    t.updated_at = row.updated_at
WITH t
MATCH (p:platform {name: $platform})
MERGE (t)-[:ON_PLATFORM]->(p)`

const upsertCategories = `
UNWIND $batch AS row
MERGE (c:category {discourse_id: row.id, platform: $platform})
SET c.name = row.name,
    c.read_restricted = row.read_restricted,
    c.parent_category_id = row.parent_category_id,
    c.permissions = row.permitted_groups,
    c.created_at = row.created_at,
    c.updated_at = row.updated_at
WITH c
MATCH (p:platform {name: $platform})
MERGE (c)-[:ON_PLATFORM]->(p)`

const linkCategoryParents = `
UNWIND $batch AS row
WITH row
WHERE row.parent_category_id IS NOT NULL
MATCH (child:category {discourse_id: row.id, platform: $platform})
MATCH (parent:category {discourse_id: row.parent_category_id, platform: $platform})
MERGE (parent)-[:PARENT_CATEGORY_OF]->(child)`

const linkCategoryAccess = `
UNWIND $batch AS row
MATCH (c:category {discourse_id: row.id, platform: $platform})
UNWIND row.permitted_groups AS gid
MATCH (g:group {discourse_id: gid, platform: $platform})
MERGE (g)-[:HAS_ACCESS]->(c)`

const upsertTopics = `
UNWIND $batch AS row
MERGE (t:topic {discourse_id: row.id, platform: $platform})
SET t.title = row.title,
    t.user_id = row.user_id,
    t.category_id = row.category_id,
    t.is_message_thread = row.is_message_thread,
    t.read_restricted = row.read_restricted,
    t.tags = row.tags,
    t.created_at = row.created_at,
    t.updated_at = row.updated_at
WITH t
MATCH (p:platform {name: $platform})
MERGE (t)-[:ON_PLATFORM]->(p)`

const linkTopicCreators = `
UNWIND $batch AS row
MATCH (t:topic {discourse_id: row.id, platform: $platform})
MATCH (u:user {discourse_id: row.user_id, platform: $platform})
MERGE (u)-[:CREATED]->(t)`

const linkTopicCategories = `
UNWIND $batch AS row
WITH row
WHERE row.category_id IS NOT NULL
MATCH (t:topic {discourse_id: row.id, platform: $platform})
MATCH (c:category {discourse_id: row.category_id, platform: $platform})
MERGE (t)-[:IN_CATEGORY]->(c)`

const linkTopicTags = `
UNWIND $batch AS row
MATCH (t:topic {discourse_id: row.id, platform: $platform})
UNWIND row.tags AS tagid
MATCH (tag:tag {discourse_id: tagid, platform: $platform})
MERGE (t)-[:TAGGED_WITH]->(tag)`

const upsertPosts = `
UNWIND $batch AS row
MERGE (p:post {discourse_id: row.id, platform: $platform})
SET p.user_id = row.user_id,
    p.topic_id = row.topic_id,
    p.post_number = row.post_number,
    p.raw = row.raw,
    p.created_at = row.created_at,
    p.updated_at = row.updated_at,
    p.deleted_at = row.deleted_at,
    p.hidden = row.hidden,
    p.word_count = row.word_count,
    p.wiki = row.wiki,
    p.reads = row.reads,
    p.score = row.score,
    p.like_count = row.like_count,
    p.reply_count = row.reply_count,
    p.quote_count = row.quote_count,
    p.is_private = row.is_private,
    p.read_restricted = row.read_restricted
WITH p
MATCH (platform:platform {name: $platform})
MERGE (p)-[:ON_PLATFORM]->(platform)`

const linkPostCreators = `
UNWIND $batch AS row
MATCH (p:post {discourse_id: row.id, platform: $platform})
MATCH (u:user {discourse_id: row.user_id, platform: $platform})
MERGE (u)-[:CREATED]->(p)`

const linkPostTopics = `
UNWIND $batch AS row
MATCH (p:post {discourse_id: row.id, platform: $platform})
MATCH (t:topic {discourse_id: row.topic_id, platform: $platform})
MERGE (p)-[:IN_TOPIC]->(t)`

const createReplies = `
UNWIND $batch AS row
MATCH (a:post {discourse_id: row.post_id, platform: $platform})
MATCH (b:post {discourse_id: row.reply_to_post_id, platform: $platform})
MERGE (a)-[:IS_REPLY_TO]->(b)`

const createQuotes = `
UNWIND $batch AS row
MATCH (a:post {discourse_id: row.post_id, platform: $platform})
MATCH (b:post {discourse_id: row.quoted_post_id, platform: $platform})
MERGE (a)-[:CONTAINS_QUOTE_FROM]->(b)`

const createLikes = `
UNWIND $batch AS row
MATCH (p:post {discourse_id: row.post_id, platform: $platform})
MATCH (u:user {discourse_id: row.user_id, platform: $platform})
MERGE (u)-[:LIKES]->(p)`

const upsertLanguages = `
UNWIND $batch AS row
MERGE (l:language {discourse_id: row.id, platform: $platform})
SET l.name = row.name,
    l.locale = row.locale
WITH l
MATCH (p:platform {name: $platform})
MERGE (l)-[:ON_PLATFORM]->(p)`

const upsertCodes = `
UNWIND $batch AS row
MERGE (c:code {discourse_id: row.id, platform: $platform})
SET c.description = row.description,
    c.creator_id = row.creator_id,
    c.ancestry = row.ancestry,
    c.annotations_count = row.annotations_count,
    c.created_at = row.created_at,
    c.updated_at = row.updated_at
WITH c
MATCH (p:platform {name: $platform})
MERGE (c)-[:ON_PLATFORM]->(p)`

const linkCodeCreators = `
UNWIND $batch AS row
MATCH (c:code {discourse_id: row.id, platform: $platform})
MATCH (u:user {discourse_id: row.creator_id, platform: $platform})
MERGE (u)-[:CREATED]->(c)`

const linkCodeParents = `
UNWIND $batch AS row
WITH row
WHERE row.parent_id IS NOT NULL
MATCH (child:code {discourse_id: row.id, platform: $platform})
MATCH (parent:code {discourse_id: row.parent_id, platform: $platform})
MERGE (child)-[:HAS_PARENT_CODE]->(parent)`

const upsertCodeNames = `
UNWIND $batch AS row
MERGE (cn:codename {discourse_id: row.id, platform: $platform})
SET cn.name = row.name,
    cn.code_id = row.code_id,
    cn.language_id = row.language_id,
    cn.created_at = row.created_at
WITH cn, row
MATCH (c:code {discourse_id: row.code_id, platform: $platform})
MERGE (c)-[:HAS_CODENAME]->(cn)
WITH cn, row
MATCH (l:language {discourse_id: row.language_id, platform: $platform})
MERGE (cn)-[:IN_LANGUAGE]->(l)`

const upsertAnnotations = `
UNWIND $batch AS row
MERGE (a:annotation {discourse_id: row.id, platform: $platform})
SET a.text = row.text,
    a.quote = row.quote,
    a.code_id = row.code_id,
    a.post_id = row.post_id,
    a.creator_id = row.creator_id,
    a.type = row.type,
    a.topic_id = row.topic_id,
    a.created_at = row.created_at,
    a.updated_at = row.updated_at
WITH a
MATCH (p:platform {name: $platform})
MERGE (a)-[:ON_PLATFORM]->(p)`

const linkAnnotationCodes = `
UNWIND $batch AS row
WITH row
WHERE row.code_id IS NOT NULL
MATCH (a:annotation {discourse_id: row.id, platform: $platform})
MATCH (c:code {discourse_id: row.code_id, platform: $platform})
MERGE (a)-[:REFERS_TO]->(c)`

const linkAnnotationPosts = `
UNWIND $batch AS row
MATCH (a:annotation {discourse_id: row.id, platform: $platform})
MATCH (p:post {discourse_id: row.post_id, platform: $platform})
MERGE (a)-[:ANNOTATES]->(p)`

const linkAnnotationCreators = `
UNWIND $batch AS row
MATCH (a:annotation {discourse_id: row.id, platform: $platform})
MATCH (u:user {discourse_id: row.creator_id, platform: $platform})
MERGE (u)-[:CREATED]->(a)`

const clearGraph = `MATCH (a) DETACH DELETE a`

// indexStatements must all run before bulk loading so MERGE and MATCH on
// the key pairs stay sub-linear.
var indexStatements = []string{
	`CREATE INDEX platform_key IF NOT EXISTS FOR (n:platform) ON (n.name)`,
	`CREATE INDEX globaluser_key IF NOT EXISTS FOR (n:globaluser) ON (n.email)`,
	`CREATE INDEX group_key IF NOT EXISTS FOR (n:group) ON (n.discourse_id, n.platform)`,
	`CREATE INDEX user_key IF NOT EXISTS FOR (n:user) ON (n.discourse_id, n.platform)`,
	`CREATE INDEX tag_key IF NOT EXISTS FOR (n:tag) ON (n.discourse_id, n.platform)`,
	`CREATE INDEX category_key IF NOT EXISTS FOR (n:category) ON (n.discourse_id, n.platform)`,
	`CREATE INDEX topic_key IF NOT EXISTS FOR (n:topic) ON (n.discourse_id, n.platform)`,
	`CREATE INDEX post_key IF NOT EXISTS FOR (n:post) ON (n.discourse_id, n.platform)`,
	`CREATE INDEX language_key IF NOT EXISTS FOR (n:language) ON (n.discourse_id, n.platform)`,
	`CREATE INDEX code_key IF NOT EXISTS FOR (n:code) ON (n.discourse_id, n.platform)`,
	`CREATE INDEX codename_key IF NOT EXISTS FOR (n:codename) ON (n.discourse_id, n.platform)`,
	`CREATE INDEX annotation_key IF NOT EXISTS FOR (n:annotation) ON (n.discourse_id, n.platform)`,
}
