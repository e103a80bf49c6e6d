package source

// The fixed query catalog against a forum backup schema. All row sets are
// fetched in full per run; no filtering or pagination is delegated to the
// source beyond what each query states.
const (
	QuerySiteURL = `
	SELECT value
	FROM backup.site_settings
	WHERE name = 'vapid_base_url'
	LIMIT 1`

	QueryUsers = `
	SELECT users.id, users.username_lower, emails.email
	FROM backup.users AS users, backup.user_emails AS emails
	WHERE users.id = emails.user_id`

	QueryConsent = `
	SELECT user_id, value, updated_at
	FROM backup.user_custom_fields
	WHERE name = $1`

	QueryGroupMembers = `
	SELECT group_id, user_id
	FROM backup.group_users`

	QueryGroups = `
	SELECT id, name, visibility_level
	FROM backup.groups`

	QueryCategories = `
	SELECT id, name, read_restricted, parent_category_id, created_at, updated_at
	FROM backup.categories`

	QueryCategoryGroups = `
	SELECT category_id, group_id
	FROM backup.category_groups`

	QueryTags = `
	SELECT id, name, topic_count, created_at, updated_at
	FROM backup.tags`

	QueryTopics = `
	SELECT id, title, created_at, updated_at, user_id, category_id
	FROM backup.topics`

	QueryAllowedUsers = `
	SELECT topic_id, user_id
	FROM backup.topic_allowed_users`

	QueryTopicTags = `
	SELECT topic_id, tag_id
	FROM backup.topic_tags`

	QueryPosts = `
	SELECT id, user_id, topic_id, post_number, raw, cooked,
	       created_at, updated_at, deleted_at, hidden,
	       word_count, wiki, reads, score, like_count, reply_count, quote_count
	FROM backup.posts`

	QueryReplies = `
	SELECT post_id, reply_post_id
	FROM backup.post_replies`

	QueryQuotes = `
	SELECT post_id, quoted_post_id
	FROM backup.quoted_posts`

	// post_action_type_id 2 is a like
	QueryLikes = `
	SELECT post_id, user_id
	FROM backup.post_actions
	WHERE post_action_type_id = 2`

	QueryLanguages = `
	SELECT id, name, locale
	FROM backup.annotator_store_languages`

	QueryCodes = `
	SELECT id, description, creator_id, created_at, updated_at, ancestry, annotations_count
	FROM backup.annotator_store_tags`

	QueryCodeNames = `
	SELECT id, name, tag_id, language_id, created_at
	FROM backup.annotator_store_tag_names`

	QueryAnnotations = `
	SELECT id, text, quote, created_at, updated_at, tag_id, post_id, creator_id, type, topic_id
	FROM backup.annotator_store_annotations`
)
