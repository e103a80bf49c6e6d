package graph

import (
	"strconv"
	"strings"

	"forumgraph/internal/chunk"
	"forumgraph/internal/model"
)

// Conversions from typed entities to Cypher batch parameters. Values are
// plain driver types; nullable fields become nil so IS NOT NULL guards in
// the queries work.

func groupParams(ds *model.Dataset) []map[string]any {
	out := make([]map[string]any, 0, len(ds.Groups))
	for _, g := range chunk.SortedValues(ds.Groups) {
		out = append(out, map[string]any{
			"id":               g.ID,
			"name":             g.Name,
			"visibility_level": g.Visibility,
		})
	}
	return out
}

func userParams(ds *model.Dataset) []map[string]any {
	out := make([]map[string]any, 0, len(ds.Users))
	for _, u := range chunk.SortedValues(ds.Users) {
		out = append(out, map[string]any{
			"id":              u.ID,
			"username":        u.Username,
			"email":           u.Email,
			"consent":         u.Consent,
			"consent_updated": u.ConsentUpdated,
			"groups":          u.Groups,
		})
	}
	return out
}

func tagParams(ds *model.Dataset) []map[string]any {
	out := make([]map[string]any, 0, len(ds.Tags))
	for _, t := range chunk.SortedValues(ds.Tags) {
		out = append(out, map[string]any{
			"id":          t.ID,
			"name":        t.Name,
			"topic_count": t.TopicCount,
			"created_at":  t.CreatedAt,
			"updated_at":  t.UpdatedAt,
		})
	}
	return out
}

func categoryParams(ds *model.Dataset) []map[string]any {
	out := make([]map[string]any, 0, len(ds.Categories))
	for _, c := range chunk.SortedValues(ds.Categories) {
		out = append(out, map[string]any{
			"id":                 c.ID,
			"name":               c.Name,
			"read_restricted":    c.ReadRestricted,
			"parent_category_id": nullableID(c.ParentCategoryID),
			"permitted_groups":   c.PermittedGroups,
			"created_at":         c.CreatedAt,
			"updated_at":         c.UpdatedAt,
		})
	}
	return out
}

func topicParams(ds *model.Dataset) []map[string]any {
	out := make([]map[string]any, 0, len(ds.Topics))
	for _, t := range chunk.SortedValues(ds.Topics) {
		out = append(out, map[string]any{
			"id":                t.ID,
			"title":             t.Title,
			"user_id":           t.UserID,
			"category_id":       nullableID(t.CategoryID),
			"is_message_thread": t.IsMessageThread,
			"read_restricted":   t.ReadRestricted,
			"tags":              t.Tags,
			"created_at":        t.CreatedAt,
			"updated_at":        t.UpdatedAt,
		})
	}
	return out
}

func postParams(ds *model.Dataset) []map[string]any {
	out := make([]map[string]any, 0, len(ds.Posts))
	for _, p := range chunk.SortedValues(ds.Posts) {
		var deletedAt any
		if p.DeletedAt != nil {
			deletedAt = *p.DeletedAt
		}
		out = append(out, map[string]any{
			"id":              p.ID,
			"user_id":         p.UserID,
			"topic_id":        p.TopicID,
			"post_number":     p.PostNumber,
			"raw":             p.Raw,
			"created_at":      p.CreatedAt,
			"updated_at":      p.UpdatedAt,
			"deleted_at":      deletedAt,
			"hidden":          p.Hidden,
			"word_count":      p.WordCount,
			"wiki":            p.Wiki,
			"reads":           p.Reads,
			"score":           p.Score,
			"like_count":      p.LikeCount,
			"reply_count":     p.ReplyCount,
			"quote_count":     p.QuoteCount,
			"is_private":      p.IsPrivate,
			"read_restricted": p.ReadRestricted,
		})
	}
	return out
}

func replyParams(ds *model.Dataset) []map[string]any {
	out := make([]map[string]any, 0, len(ds.Replies))
	for _, r := range ds.Replies {
		out = append(out, map[string]any{
			"post_id":          r.PostID,
			"reply_to_post_id": r.ReplyToPostID,
		})
	}
	return out
}

func quoteParams(ds *model.Dataset) []map[string]any {
	out := make([]map[string]any, 0, len(ds.Quotes))
	for _, q := range ds.Quotes {
		out = append(out, map[string]any{
			"post_id":        q.PostID,
			"quoted_post_id": q.QuotedPostID,
		})
	}
	return out
}

func likeParams(ds *model.Dataset) []map[string]any {
	out := make([]map[string]any, 0, len(ds.Likes))
	for _, l := range ds.Likes {
		out = append(out, map[string]any{
			"post_id": l.PostID,
			"user_id": l.UserID,
		})
	}
	return out
}

func languageParams(ds *model.Dataset) []map[string]any {
	out := make([]map[string]any, 0, len(ds.Languages))
	for _, l := range chunk.SortedValues(ds.Languages) {
		out = append(out, map[string]any{
			"id":     l.ID,
			"name":   l.Name,
			"locale": l.Locale,
		})
	}
	return out
}

func codeParams(ds *model.Dataset) []map[string]any {
	out := make([]map[string]any, 0, len(ds.Codes))
	for _, c := range chunk.SortedValues(ds.Codes) {
		var ancestry any
		if c.Ancestry != nil {
			ancestry = *c.Ancestry
		}
		out = append(out, map[string]any{
			"id":                c.ID,
			"description":       c.Description,
			"creator_id":        c.CreatorID,
			"ancestry":          ancestry,
			"parent_id":         nullableID(parentCodeID(c.Ancestry)),
			"annotations_count": c.AnnotationsCount,
			"created_at":        c.CreatedAt,
			"updated_at":        c.UpdatedAt,
		})
	}
	return out
}

func codeNameParams(ds *model.Dataset) []map[string]any {
	out := make([]map[string]any, 0, len(ds.CodeNames))
	for _, cn := range chunk.SortedValues(ds.CodeNames) {
		out = append(out, map[string]any{
			"id":          cn.ID,
			"name":        cn.Name,
			"code_id":     cn.CodeID,
			"language_id": cn.LanguageID,
			"created_at":  cn.CreatedAt,
		})
	}
	return out
}

func annotationParams(ds *model.Dataset) []map[string]any {
	out := make([]map[string]any, 0, len(ds.Annotations))
	for _, a := range chunk.SortedValues(ds.Annotations) {
		out = append(out, map[string]any{
			"id":         a.ID,
			"text":       a.Text,
			"quote":      a.Quote,
			"code_id":    nullableID(a.CodeID),
			"post_id":    a.PostID,
			"creator_id": a.CreatorID,
			"type":       a.Type,
			"topic_id":   a.TopicID,
			"created_at": a.CreatedAt,
			"updated_at": a.UpdatedAt,
		})
	}
	return out
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// parentCodeID resolves a code's direct parent from its ancestry path,
// a slash-separated id list with the root first.
func parentCodeID(ancestry *string) *int64 {
	if ancestry == nil || *ancestry == "" {
		return nil
	}
	parts := strings.Split(*ancestry, "/")
	last := parts[len(parts)-1]
	id, err := strconv.ParseInt(last, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
