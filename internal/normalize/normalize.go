package normalize

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"forumgraph/internal/model"
	"forumgraph/internal/source"
	"forumgraph/internal/text"
	"forumgraph/pkg/logger"
)

// Build assembles raw row sets into a normalized dataset for one platform.
//
// Ordering matters: the user map (including the sentinel) is built before
// anything that references users, and the message-thread set before topics
// and posts, so that every downstream record sees consistent privacy flags.
// Author references that cannot be resolved fall back to the sentinel,
// never fail.
func Build(siteName string, raw *source.RawData) *model.Dataset {
	log := logger.Get()

	ds := model.NewDataset(model.Site{Name: siteName, URL: raw.SiteURL})

	// Users first, sentinel included.
	for _, row := range raw.Users {
		ds.Users[row.ID] = &model.User{
			ID:       row.ID,
			Username: row.Username,
			Email:    row.Email,
			Groups:   []int64{},
		}
	}
	ds.Users[model.SentinelUserID] = &model.User{
		ID:       model.SentinelUserID,
		Username: model.SentinelUsername,
		Email:    model.SentinelUsername,
		Groups:   []int64{},
	}

	for _, row := range raw.Consents {
		if u, ok := ds.Users[row.UserID]; ok {
			u.Consent = row.Value
			u.ConsentUpdated = row.UpdatedAt
		}
	}

	for _, row := range raw.GroupMembers {
		if u, ok := ds.Users[row.UserID]; ok {
			u.Groups = append(u.Groups, row.GroupID)
		}
	}

	for _, row := range raw.Groups {
		ds.Groups[row.ID] = &model.Group{
			ID:         row.ID,
			Name:       row.Name,
			Visibility: row.Visibility,
		}
	}

	for _, row := range raw.Categories {
		ds.Categories[row.ID] = &model.Category{
			ID:               row.ID,
			Name:             row.Name,
			ReadRestricted:   row.ReadRestricted,
			ParentCategoryID: row.ParentCategoryID,
			PermittedGroups:  []int64{},
			CreatedAt:        row.CreatedAt,
			UpdatedAt:        row.UpdatedAt,
		}
	}
	for _, row := range raw.CategoryGroups {
		if c, ok := ds.Categories[row.CategoryID]; ok {
			c.PermittedGroups = append(c.PermittedGroups, row.GroupID)
		}
	}

	for _, row := range raw.Tags {
		ds.Tags[row.ID] = &model.Tag{
			ID:         row.ID,
			Name:       row.Name,
			TopicCount: row.TopicCount,
			CreatedAt:  row.CreatedAt,
			UpdatedAt:  row.UpdatedAt,
		}
	}

	// A topic is a message thread iff it appears in the allowed-users table.
	messageThreads := make(map[int64]bool)
	for _, row := range raw.AllowedUsers {
		messageThreads[row.TopicID] = true
	}

	lostTopics := 0
	for _, row := range raw.Topics {
		private := messageThreads[row.ID]

		authorKnown := false
		if row.UserID != nil {
			_, authorKnown = ds.Users[*row.UserID]
		}
		if !authorKnown {
			lostTopics++
		}

		userID := model.SentinelUserID
		if !private && authorKnown {
			userID = *row.UserID
		}

		title := row.Title
		if private {
			title = model.PlaceholderTitle
		}

		// read_restricted is always derived: forced for message threads and
		// unresolvable categories, otherwise inherited from the category.
		var categoryID *int64
		restricted := private
		if row.CategoryID != nil {
			if cat, ok := ds.Categories[*row.CategoryID]; ok {
				categoryID = row.CategoryID
				restricted = restricted || cat.ReadRestricted
			} else {
				restricted = true
			}
		} else {
			restricted = true
		}

		ds.Topics[row.ID] = &model.Topic{
			ID:              row.ID,
			Title:           title,
			UserID:          userID,
			CategoryID:      categoryID,
			IsMessageThread: private,
			ReadRestricted:  restricted,
			Tags:            []int64{},
			CreatedAt:       row.CreatedAt,
			UpdatedAt:       row.UpdatedAt,
		}
	}

	tagsApplied := 0
	for _, row := range raw.TopicTags {
		if t, ok := ds.Topics[row.TopicID]; ok {
			t.Tags = append(t.Tags, row.TagID)
			tagsApplied++
		}
	}

	// Posts. Quote references in rendered HTML point at (topic, post_number),
	// so index posts by that pair before resolving them.
	byTopicAndNumber := make(map[string]int64, len(raw.Posts))
	privatePosts := 0
	for _, row := range raw.Posts {
		private := messageThreads[row.TopicID]
		if private {
			privatePosts++
		}
		deleted := row.DeletedAt != nil

		authorResolved := false
		if row.UserID != nil {
			_, authorResolved = ds.Users[*row.UserID]
		}

		restricted := true
		if t, ok := ds.Topics[row.TopicID]; ok {
			restricted = t.ReadRestricted
		}

		p := &model.Post{
			ID:             row.ID,
			TopicID:        row.TopicID,
			PostNumber:     row.PostNumber,
			CreatedAt:      row.CreatedAt,
			UpdatedAt:      row.UpdatedAt,
			DeletedAt:      row.DeletedAt,
			Hidden:         row.Hidden,
			Wiki:           row.Wiki,
			ReplyCount:     row.ReplyCount,
			QuoteCount:     row.QuoteCount,
			IsPrivate:      private,
			ReadRestricted: restricted,
			IsReplyTo:      []int64{},
			QuotesPosts:    []int64{},
			IsLikedBy:      []int64{},
		}

		if private || deleted || !authorResolved {
			p.UserID = model.SentinelUserID
			p.Raw = model.PlaceholderBody
		} else {
			p.UserID = *row.UserID
			p.Raw = row.Raw
			p.Reads = row.Reads
			p.Score = row.Score
			p.LikeCount = row.LikeCount
			if row.WordCount != nil {
				p.WordCount = *row.WordCount
			} else {
				p.WordCount = text.WordCount(row.Cooked)
			}
		}

		ds.Posts[row.ID] = p
		byTopicAndNumber[topicNumberKey(row.TopicID, row.PostNumber)] = row.ID
	}

	// Reply edges. The join table lists (target, replying post); a post may
	// reply to more than one other post.
	for _, row := range raw.Replies {
		replying, ok := ds.Posts[row.ReplyPostID]
		if !ok {
			continue
		}
		if _, ok := ds.Posts[row.PostID]; !ok {
			continue
		}
		replying.IsReplyTo = append(replying.IsReplyTo, row.PostID)
		ds.Replies = append(ds.Replies, model.Reply{
			ID:            int64(len(ds.Replies)),
			PostID:        row.ReplyPostID,
			ReplyToPostID: row.PostID,
		})
	}

	// Quote edges from the join table, supplemented by quote markup found
	// in the rendered HTML. Both feeds are deduplicated per post pair.
	seenQuotes := make(map[string]bool)
	addQuote := func(postID, quotedID int64) {
		if postID == quotedID {
			return
		}
		quoting, ok := ds.Posts[postID]
		if !ok {
			return
		}
		if _, ok := ds.Posts[quotedID]; !ok {
			return
		}
		key := fmt.Sprintf("%d:%d", postID, quotedID)
		if seenQuotes[key] {
			return
		}
		seenQuotes[key] = true
		quoting.QuotesPosts = append(quoting.QuotesPosts, quotedID)
		ds.Quotes = append(ds.Quotes, model.Quote{
			ID:           int64(len(ds.Quotes)),
			PostID:       postID,
			QuotedPostID: quotedID,
		})
	}

	for _, row := range raw.Quotes {
		addQuote(row.PostID, row.QuotedPostID)
	}
	for _, row := range raw.Posts {
		if !strings.Contains(row.Cooked, "aside") {
			continue
		}
		for _, ref := range text.QuoteRefs(row.Cooked) {
			if quotedID, ok := byTopicAndNumber[topicNumberKey(ref.TopicID, ref.PostNumber)]; ok {
				addQuote(row.ID, quotedID)
			}
		}
	}

	for _, row := range raw.Likes {
		p, ok := ds.Posts[row.PostID]
		if !ok {
			continue
		}
		p.IsLikedBy = append(p.IsLikedBy, row.UserID)
		ds.Likes = append(ds.Likes, model.Like{
			ID:     int64(len(ds.Likes)),
			PostID: row.PostID,
			UserID: row.UserID,
		})
	}

	languageNames := make([]string, 0, len(raw.Languages))
	for _, row := range raw.Languages {
		ds.Languages[row.ID] = &model.Language{
			ID:     row.ID,
			Name:   row.Name,
			Locale: row.Locale,
		}
		languageNames = append(languageNames, row.Name)
	}

	for _, row := range raw.Codes {
		code := &model.Code{
			ID:               row.ID,
			CreatorID:        row.CreatorID,
			Ancestry:         row.Ancestry,
			AnnotationsCount: row.AnnotationsCount,
			CreatedAt:        row.CreatedAt,
			UpdatedAt:        row.UpdatedAt,
		}
		if row.Description != nil {
			code.Description = *row.Description
		}
		ds.Codes[row.ID] = code
	}

	for _, row := range raw.CodeNames {
		ds.CodeNames[row.ID] = &model.CodeName{
			ID:         row.ID,
			Name:       row.Name,
			CodeID:     row.CodeID,
			LanguageID: row.LanguageID,
			CreatedAt:  row.CreatedAt,
		}
	}

	for _, row := range raw.Annotations {
		a := &model.Annotation{
			ID:        row.ID,
			CodeID:    row.CodeID,
			PostID:    row.PostID,
			CreatorID: row.CreatorID,
			Type:      row.Type,
			TopicID:   row.TopicID,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		}
		if row.Text != nil {
			a.Text = *row.Text
		}
		if row.Quote != nil {
			a.Quote = *row.Quote
		}
		ds.Annotations[row.ID] = a
	}

	ds.Stats = model.Stats{
		Users:               len(ds.Users),
		Groups:              len(ds.Groups),
		Categories:          len(ds.Categories),
		Tags:                len(ds.Tags),
		Topics:              len(ds.Topics),
		MessageThreads:      len(messageThreads),
		TopicsByLostAuthors: lostTopics,
		TagsApplied:         tagsApplied,
		Posts:               len(ds.Posts),
		PrivatePosts:        privatePosts,
		Languages:           strings.Join(languageNames, ", "),
		Codes:               len(ds.Codes),
		CodeNames:           len(ds.CodeNames),
		Annotations:         len(ds.Annotations),
	}

	log.Info("Normalization complete",
		zap.String("platform", siteName),
		zap.Int("users", ds.Stats.Users),
		zap.Int("topics", ds.Stats.Topics),
		zap.Int("pm_threads", ds.Stats.MessageThreads),
		zap.Int("posts", ds.Stats.Posts),
		zap.Int("private_posts", ds.Stats.PrivatePosts),
		zap.Int("lost_topics", ds.Stats.TopicsByLostAuthors),
	)

	return ds
}

func topicNumberKey(topicID, postNumber int64) string {
	return fmt.Sprintf("%d/%d", topicID, postNumber)
}
