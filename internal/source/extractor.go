package source

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"forumgraph/pkg/config"
	"forumgraph/pkg/errors"
	"forumgraph/pkg/logger"
)

// Extractor fetches the full row catalog for one source database.
type Extractor struct {
	pool         *pgxpool.Pool
	platform     string
	consentField string
	logger       *zap.Logger
}

// Connect opens a connection pool to the source database and verifies it.
func Connect(ctx context.Context, src config.Source, consentField string) (*Extractor, error) {
	poolConfig, err := pgxpool.ParseConfig(src.ConnString())
	if err != nil {
		return nil, errors.NewSourceConnectionFailed(src.Name, err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.NewSourceConnectionFailed(src.Name, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.NewSourceConnectionFailed(src.Name, err)
	}

	return &Extractor{
		pool:         pool,
		platform:     src.Name,
		consentField: consentField,
		logger:       logger.Get(),
	}, nil
}

// Close releases the connection pool.
func (e *Extractor) Close() {
	e.pool.Close()
}

// Platform returns the source's platform discriminator.
func (e *Extractor) Platform() string {
	return e.platform
}

// FetchAll runs every catalog query and returns the combined row sets.
// Any query or scan failure aborts the whole extraction; no partial data
// is returned.
func (e *Extractor) FetchAll(ctx context.Context) (*RawData, error) {
	raw := &RawData{}

	url, err := e.fetchSiteURL(ctx)
	if err != nil {
		return nil, err
	}
	raw.SiteURL = url

	if raw.Users, err = fetch(ctx, e, "users", QueryUsers, scanUser); err != nil {
		return nil, err
	}
	if raw.Consents, err = fetch(ctx, e, "consent", QueryConsent, scanConsent, e.consentField); err != nil {
		return nil, err
	}
	if raw.GroupMembers, err = fetch(ctx, e, "group_members", QueryGroupMembers, scanGroupMember); err != nil {
		return nil, err
	}
	if raw.Groups, err = fetch(ctx, e, "groups", QueryGroups, scanGroup); err != nil {
		return nil, err
	}
	if raw.Categories, err = fetch(ctx, e, "categories", QueryCategories, scanCategory); err != nil {
		return nil, err
	}
	if raw.CategoryGroups, err = fetch(ctx, e, "category_groups", QueryCategoryGroups, scanCategoryGroup); err != nil {
		return nil, err
	}
	if raw.Tags, err = fetch(ctx, e, "tags", QueryTags, scanTag); err != nil {
		return nil, err
	}
	if raw.Topics, err = fetch(ctx, e, "topics", QueryTopics, scanTopic); err != nil {
		return nil, err
	}
	if raw.AllowedUsers, err = fetch(ctx, e, "topic_allowed_users", QueryAllowedUsers, scanAllowedUser); err != nil {
		return nil, err
	}
	if raw.TopicTags, err = fetch(ctx, e, "topic_tags", QueryTopicTags, scanTopicTag); err != nil {
		return nil, err
	}
	if raw.Posts, err = fetch(ctx, e, "posts", QueryPosts, scanPost); err != nil {
		return nil, err
	}
	if raw.Replies, err = fetch(ctx, e, "replies", QueryReplies, scanReply); err != nil {
		return nil, err
	}
	if raw.Quotes, err = fetch(ctx, e, "quotes", QueryQuotes, scanQuote); err != nil {
		return nil, err
	}
	if raw.Likes, err = fetch(ctx, e, "likes", QueryLikes, scanLike); err != nil {
		return nil, err
	}
	if raw.Languages, err = fetch(ctx, e, "languages", QueryLanguages, scanLanguage); err != nil {
		return nil, err
	}
	if raw.Codes, err = fetch(ctx, e, "codes", QueryCodes, scanCode); err != nil {
		return nil, err
	}
	if raw.CodeNames, err = fetch(ctx, e, "code_names", QueryCodeNames, scanCodeName); err != nil {
		return nil, err
	}
	if raw.Annotations, err = fetch(ctx, e, "annotations", QueryAnnotations, scanAnnotation); err != nil {
		return nil, err
	}

	e.logger.Info("Extraction complete",
		zap.String("platform", e.platform),
		zap.Int("users", len(raw.Users)),
		zap.Int("groups", len(raw.Groups)),
		zap.Int("categories", len(raw.Categories)),
		zap.Int("tags", len(raw.Tags)),
		zap.Int("topics", len(raw.Topics)),
		zap.Int("posts", len(raw.Posts)),
		zap.Int("replies", len(raw.Replies)),
		zap.Int("quotes", len(raw.Quotes)),
		zap.Int("likes", len(raw.Likes)),
		zap.Int("codes", len(raw.Codes)),
		zap.Int("annotations", len(raw.Annotations)),
	)

	return raw, nil
}

func (e *Extractor) fetchSiteURL(ctx context.Context) (string, error) {
	var url string
	err := e.pool.QueryRow(ctx, QuerySiteURL).Scan(&url)
	if err == pgx.ErrNoRows {
		return "", errors.NewMissingSiteURL(e.platform)
	}
	if err != nil {
		return "", errors.NewSourceQueryFailed(e.platform, "site_url", err)
	}
	return url, nil
}

// fetch runs one catalog query and scans every row with scanFn.
func fetch[T any](ctx context.Context, e *Extractor, name, sql string, scanFn func(pgx.Rows) (T, error), args ...any) ([]T, error) {
	rows, err := e.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.NewSourceQueryFailed(e.platform, name, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scanFn(rows)
		if err != nil {
			return nil, errors.NewSourceQueryFailed(e.platform, name, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewSourceQueryFailed(e.platform, name, err)
	}
	return out, nil
}

func scanUser(rows pgx.Rows) (UserRow, error) {
	var r UserRow
	err := rows.Scan(&r.ID, &r.Username, &r.Email)
	return r, err
}

func scanConsent(rows pgx.Rows) (ConsentRow, error) {
	var r ConsentRow
	err := rows.Scan(&r.UserID, &r.Value, &r.UpdatedAt)
	return r, err
}

func scanGroupMember(rows pgx.Rows) (GroupMemberRow, error) {
	var r GroupMemberRow
	err := rows.Scan(&r.GroupID, &r.UserID)
	return r, err
}

func scanGroup(rows pgx.Rows) (GroupRow, error) {
	var r GroupRow
	err := rows.Scan(&r.ID, &r.Name, &r.Visibility)
	return r, err
}

func scanCategory(rows pgx.Rows) (CategoryRow, error) {
	var r CategoryRow
	err := rows.Scan(&r.ID, &r.Name, &r.ReadRestricted, &r.ParentCategoryID, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func scanCategoryGroup(rows pgx.Rows) (CategoryGroupRow, error) {
	var r CategoryGroupRow
	err := rows.Scan(&r.CategoryID, &r.GroupID)
	return r, err
}

func scanTag(rows pgx.Rows) (TagRow, error) {
	var r TagRow
	err := rows.Scan(&r.ID, &r.Name, &r.TopicCount, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func scanTopic(rows pgx.Rows) (TopicRow, error) {
	var r TopicRow
	err := rows.Scan(&r.ID, &r.Title, &r.CreatedAt, &r.UpdatedAt, &r.UserID, &r.CategoryID)
	return r, err
}

func scanAllowedUser(rows pgx.Rows) (AllowedUserRow, error) {
	var r AllowedUserRow
	err := rows.Scan(&r.TopicID, &r.UserID)
	return r, err
}

func scanTopicTag(rows pgx.Rows) (TopicTagRow, error) {
	var r TopicTagRow
	err := rows.Scan(&r.TopicID, &r.TagID)
	return r, err
}

func scanPost(rows pgx.Rows) (PostRow, error) {
	var r PostRow
	err := rows.Scan(
		&r.ID, &r.UserID, &r.TopicID, &r.PostNumber, &r.Raw, &r.Cooked,
		&r.CreatedAt, &r.UpdatedAt, &r.DeletedAt, &r.Hidden,
		&r.WordCount, &r.Wiki, &r.Reads, &r.Score, &r.LikeCount, &r.ReplyCount, &r.QuoteCount,
	)
	return r, err
}

func scanReply(rows pgx.Rows) (ReplyRow, error) {
	var r ReplyRow
	err := rows.Scan(&r.PostID, &r.ReplyPostID)
	return r, err
}

func scanQuote(rows pgx.Rows) (QuoteRow, error) {
	var r QuoteRow
	err := rows.Scan(&r.PostID, &r.QuotedPostID)
	return r, err
}

func scanLike(rows pgx.Rows) (LikeRow, error) {
	var r LikeRow
	err := rows.Scan(&r.PostID, &r.UserID)
	return r, err
}

func scanLanguage(rows pgx.Rows) (LanguageRow, error) {
	var r LanguageRow
	err := rows.Scan(&r.ID, &r.Name, &r.Locale)
	return r, err
}

func scanCode(rows pgx.Rows) (CodeRow, error) {
	var r CodeRow
	err := rows.Scan(&r.ID, &r.Description, &r.CreatorID, &r.CreatedAt, &r.UpdatedAt, &r.Ancestry, &r.AnnotationsCount)
	return r, err
}

func scanCodeName(rows pgx.Rows) (CodeNameRow, error) {
	var r CodeNameRow
	err := rows.Scan(&r.ID, &r.Name, &r.CodeID, &r.LanguageID, &r.CreatedAt)
	return r, err
}

func scanAnnotation(rows pgx.Rows) (AnnotationRow, error) {
	var r AnnotationRow
	err := rows.Scan(&r.ID, &r.Text, &r.Quote, &r.CreatedAt, &r.UpdatedAt, &r.CodeID, &r.PostID, &r.CreatorID, &r.Type, &r.TopicID)
	return r, err
}
